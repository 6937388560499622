// Package view holds the server-rendered pages and their static assets.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/codetrio/codetrio-web/internal/flash"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/rank"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names.
const (
	PageAuth       = "auth.html"
	PageIndex      = "index.html"
	PageLoading    = "loading.html"
	PageNotFound   = "not_found.html"
	PartialClasses = "classes.html"
)

// Auth page tabs.
const (
	TabSignIn = "signin"
	TabSignUp = "signup"
)

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"rankBadge": func(tier rank.Tier, points int, size string) (template.HTML, error) {
			return rank.Badge(tier, points, rank.Size(size))
		},
		"studentCount": func(n int) string {
			return fmt.Sprintf("%d học sinh", n)
		},
		"noDescription": func(c model.ClassSummary) string {
			return c.DescriptionOr("Không có mô tả")
		},
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Static serves the embedded assets.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// Page is the data every full page receives.
type Page struct {
	Title  string
	Toasts []flash.Toast
}

// AuthPage is the data of the sign-in / sign-up page.
type AuthPage struct {
	Page
	Tab       string
	Email     string
	FullName  string
	DemoEmail string
	DemoPass  string
}

// Dashboard is the data of the home page shell.
type Dashboard struct {
	Page
	User     model.User
	Role     model.Role
	IsAdmin  bool
	Showcase []rank.Example
}

// ClassList is the data of the classes fragment. Failed marks a fetch
// error, shown differently from an empty list.
type ClassList struct {
	IsAdmin bool
	Classes []model.ClassSummary
	Failed  bool
}
