package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/term"

	"github.com/codetrio/codetrio-web/internal/config"
	"github.com/codetrio/codetrio-web/internal/database"
	"github.com/codetrio/codetrio-web/internal/logger"
	"github.com/codetrio/codetrio-web/internal/model"
	"github.com/codetrio/codetrio-web/internal/repository"
	"github.com/codetrio/codetrio-web/internal/supabase"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	roleRepo := repository.NewRoleRepository(pool)
	remote := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, supabase.WithTimeout(cfg.RemoteTimeout))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Admin Account ===")

	fmt.Print("Enter Full Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		os.Exit(1)
	}

	fmt.Print("Enter Password (leave empty to promote an existing account): ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		os.Exit(1)
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input

	// ─── Logic ─────────────────────────────────────────────────────────
	if password != "" {
		if len([]rune(password)) < model.MinPasswordLength {
			fmt.Printf("Error: Password must be at least %d characters\n", model.MinPasswordLength)
			os.Exit(1)
		}
		_, err := remote.SignUp(ctx, supabase.SignUpParams{
			Email:      email,
			Password:   password,
			Data:       map[string]any{"full_name": name},
			RedirectTo: cfg.SiteURL + "/",
		})
		switch {
		case err == nil:
			fmt.Println("Account registered.")
		case supabase.IsUserAlreadyRegistered(err):
			fmt.Println("Account already exists, promoting it.")
		default:
			log.Fatal().Err(err).Msg("Failed to register account")
		}
	}

	userID, err := roleRepo.FindUserIDByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		fmt.Printf("Error: no account with email %s\n", email)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up account")
	}

	if err := roleRepo.Grant(ctx, userID, model.RoleAdmin); err != nil {
		log.Fatal().Err(err).Msg("Failed to grant admin role")
	}

	fmt.Printf("\nSuccess! %s (%s) is now an admin.\n", email, userID)
}
