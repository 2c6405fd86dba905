package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/exbank-backend/internal/config"
	"github.com/stemsi/exbank-backend/internal/database"
	"github.com/stemsi/exbank-backend/internal/logger"
	"github.com/stemsi/exbank-backend/internal/model"
	"github.com/stemsi/exbank-backend/internal/repository"
	"github.com/stemsi/exbank-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	var role string
	flag.StringVar(&role, "role", "", "Account role: teacher or student")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Sessions are not touched here, so no Redis client is needed.
	authService := service.NewAuthService(cfg, nil, repository.NewAccountRepository(pool))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Account ===")

	if role == "" {
		fmt.Print("Role (teacher/student): ")
		role, _ = reader.ReadString('\n')
	}
	accountRole := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if accountRole != model.RoleTeacher && accountRole != model.RoleStudent {
		fmt.Println("Error: role must be teacher or student")
		return
	}

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	account, err := authService.CreateAccount(ctx, email, name, password, accountRole)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			fmt.Printf("Error: an account with email %s already exists\n", email)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create account")
	}

	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %d\n", account.Role, account.Name, account.Email, account.ID)
}
