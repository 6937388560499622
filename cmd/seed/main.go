package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/codetrio/codetrio-web/internal/config"
	"github.com/codetrio/codetrio-web/internal/database"
	"github.com/codetrio/codetrio-web/internal/logger"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/rank"
	"github.com/codetrio/codetrio-web/internal/repository"
)

type seedClass struct {
	name        string
	description string
	language    string
}

var classes = []seedClass{
	{"Python cơ bản", "Làm quen với lập trình qua Python", "python"},
	{"C++ nâng cao", "Cấu trúc dữ liệu và giải thuật với C++", "cpp"},
	{"Luyện thi học sinh giỏi", "", "cpp"},
}

var names = []string{
	"Nguyễn Văn An", "Trần Thị Bình", "Lê Hoàng Cường", "Phạm Thu Dung", "Hoàng Minh Đức",
	"Vũ Thị Giang", "Đặng Quốc Huy", "Bùi Thanh Hương", "Đỗ Gia Khánh", "Hồ Ngọc Lan",
	"Ngô Đức Mạnh", "Dương Thị Ngọc", "Lý Văn Phúc", "Mai Thị Quỳnh", "Trịnh Công Sơn",
	"Đinh Thị Tâm", "Cao Minh Tuấn", "Lâm Thị Uyên", "Tạ Quang Vinh", "Phan Thị Yến",
}

func main() {
	perClass := flag.Int("students", 10, "Students to create per class")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	classRepo := repository.NewClassRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	fmt.Println("=== Seeding classes ===")

	tiers := make(map[rank.Tier]int)
	for ci, sc := range classes {
		classID, err := classRepo.FindByName(ctx, sc.name)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			c := &model.Class{Name: sc.name, Language: sc.language}
			if sc.description != "" {
				c.Description = &sc.description
			}
			if err := classRepo.Create(ctx, c); err != nil {
				log.Fatal().Err(err).Str("class", sc.name).Msg("Failed to create class")
			}
			classID = c.ID
			fmt.Printf("Created class %q\n", sc.name)
		case err != nil:
			log.Fatal().Err(err).Str("class", sc.name).Msg("Failed to check existing class")
		default:
			fmt.Printf("Found existing class %q, adding students\n", sc.name)
		}

		students := make([]model.Student, 0, *perClass)
		for i := 0; i < *perClass; i++ {
			// Spread scores across every tier.
			points := 900 + ((ci*7+i)*83)%800
			students = append(students, model.Student{
				ClassID:  classID,
				FullName: names[(ci*5+i)%len(names)],
				Points:   points,
			})
			tiers[rank.TierFor(points)]++
		}

		n, err := studentRepo.BulkCreate(ctx, students)
		if err != nil {
			log.Fatal().Err(err).Str("class", sc.name).Msg("Failed to insert students")
		}
		fmt.Printf("  %d students added\n", n)
	}

	fmt.Println("\nRank distribution:")
	for _, t := range rank.Tiers() {
		fmt.Printf("  %-10s %-16s %d\n", t.Label, t.Range, tiers[t.Tier])
	}
}
