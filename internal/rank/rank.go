// Package rank holds the fixed ranking tiers shown as badges on the dashboard.
package rank

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
)

// Tier is one of the four ranking categories.
type Tier string

const (
	TierSilver  Tier = "silver"
	TierGold    Tier = "gold"
	TierDiamond Tier = "diamond"
	TierMaster  Tier = "master"
)

// Size selects the badge scale.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

// Config describes how a tier is displayed. Points in [Min, Max) belong to the tier.
type Config struct {
	Tier      Tier   `json:"tier"`
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	ClassName string `json:"class_name"`
	Range     string `json:"range"`
	Min       int    `json:"min"`
	Max       int    `json:"max"`
}

// Contains reports whether points fall inside the tier's range.
func (c Config) Contains(points int) bool {
	return points >= c.Min && points < c.Max
}

// Ordered lowest to highest; ranges are contiguous.
var table = []Config{
	{Tier: TierSilver, Label: "Bạc", Icon: "award", ClassName: "bg-rank-silver text-white", Range: "< 1100 điểm", Min: math.MinInt, Max: 1100},
	{Tier: TierGold, Label: "Vàng", Icon: "trophy", ClassName: "bg-rank-gold text-white", Range: "1100-1299 điểm", Min: 1100, Max: 1300},
	{Tier: TierDiamond, Label: "Kim cương", Icon: "gem", ClassName: "bg-rank-diamond text-white", Range: "1300-1499 điểm", Min: 1300, Max: 1500},
	{Tier: TierMaster, Label: "Cao thủ", Icon: "crown", ClassName: "bg-rank-master text-white", Range: "1500+ điểm", Min: 1500, Max: math.MaxInt},
}

// Tiers returns the tier table, lowest first.
func Tiers() []Config {
	out := make([]Config, len(table))
	copy(out, table)
	return out
}

// Lookup returns the display config of tier.
func Lookup(tier Tier) (Config, bool) {
	for _, c := range table {
		if c.Tier == tier {
			return c, true
		}
	}
	return Config{}, false
}

// TierFor maps a point score onto its tier. The dashboard does not call it for
// live scores yet; badges there are rendered with an explicit tier.
func TierFor(points int) Tier {
	for _, c := range table {
		if c.Contains(points) {
			return c.Tier
		}
	}
	return TierMaster
}

var sizeClasses = map[Size]string{
	SizeSmall:  "text-xs px-2 py-1",
	SizeMedium: "text-sm px-3 py-1",
	SizeLarge:  "text-base px-4 py-2",
}

var iconSizes = map[Size]string{
	SizeSmall:  "h-3 w-3",
	SizeMedium: "h-4 w-4",
	SizeLarge:  "h-5 w-5",
}

var badgeTmpl = template.Must(template.New("badge").Parse(
	`<span class="badge {{.Config.ClassName}} {{.SizeClass}} flex items-center gap-1 font-semibold" title="{{.Config.Label}} - {{.Config.Range}}">` +
		`<i class="icon icon-{{.Config.Icon}} {{.IconClass}}" aria-hidden="true"></i>` +
		`{{.Config.Label}}<span class="ml-1 opacity-90">({{.Points}})</span></span>`))

// Badge renders the badge markup for tier with the given points.
// An unknown size falls back to medium.
func Badge(tier Tier, points int, size Size) (template.HTML, error) {
	cfg, ok := Lookup(tier)
	if !ok {
		return "", fmt.Errorf("unknown rank tier %q", tier)
	}
	if _, ok := sizeClasses[size]; !ok {
		size = SizeMedium
	}

	var buf bytes.Buffer
	err := badgeTmpl.Execute(&buf, struct {
		Config    Config
		SizeClass string
		IconClass string
		Points    int
	}{cfg, sizeClasses[size], iconSizes[size], points})
	if err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Example is a badge shown in the dashboard's ranking showcase.
type Example struct {
	Tier   Tier
	Points int
	Range  string
}

// Showcase lists the example badges of the ranking section.
func Showcase() []Example {
	return []Example{
		{TierSilver, 950, "Dưới 1100 điểm"},
		{TierGold, 1200, "1100-1299 điểm"},
		{TierDiamond, 1400, "1300-1499 điểm"},
		{TierMaster, 1650, "1500+ điểm"},
	}
}
