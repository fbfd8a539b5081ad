package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"goalkeeper/backend/internal/api/handler"
	"goalkeeper/backend/internal/app"
	"goalkeeper/backend/internal/config"
	"goalkeeper/backend/internal/logging"
	"goalkeeper/backend/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  run                 run one slump check and print the summary
  migrate             apply database migrations
  token [hours]       mint a bearer token for /check-slumps
  checkin <user_id>   record a check-in for a user
  status <user_id>    show a user's profile
  watch               print escalation events as engines publish them`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	command := os.Args[1]

	// token needs no database.
	if command == "token" {
		hours := int(config.TriggerTokenTTL / time.Hour)
		if len(os.Args) > 2 {
			hours, err = strconv.Atoi(os.Args[2])
			if err != nil || hours <= 0 {
				fmt.Println("Invalid duration. Please provide a positive number of hours.")
				os.Exit(1)
			}
		}
		token, err := handler.GenerateTriggerToken(cfg.TriggerJWTSecret, time.Duration(hours)*time.Hour)
		if err != nil {
			log.Fatalf("Error creating token: %v", err)
		}
		fmt.Println(token)
		return
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logging.New("goalkeeper-admin", cfg.LogLevel))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer a.Close()

	switch command {
	case "run":
		if err := runOnce(ctx, a); err != nil {
			log.Fatalf("Error running slump check: %v", err)
		}
	case "migrate":
		if err := a.Migrate(ctx); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		fmt.Println("Migrations applied.")
	case "checkin":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin checkin <user_id>")
			os.Exit(1)
		}
		userID := os.Args[2]
		if err := checkIn(ctx, a.Storage, userID); err != nil {
			log.Fatalf("Error recording check-in: %v", err)
		}
		fmt.Printf("User %s checked in and is active again.\n", userID)
	case "status":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin status <user_id>")
			os.Exit(1)
		}
		if err := printStatus(ctx, a.Storage, os.Args[2]); err != nil {
			log.Fatalf("Error loading profile: %v", err)
		}
	case "watch":
		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := watch(watchCtx, a.Storage); err != nil {
			log.Fatalf("Error watching escalations: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n%s\n", command, usage)
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, a *app.App) error {
	summary, err := a.Engine.Run(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func checkIn(ctx context.Context, s storage.Storage, userID string) error {
	return s.RecordCheckIn(ctx, userID, time.Now())
}

func printStatus(ctx context.Context, s storage.Storage, userID string) error {
	profile, err := s.GetProfileByID(ctx, userID)
	if errors.Is(err, storage.ErrProfileNotFound) {
		fmt.Printf("User %s not found.\n", userID)
		return nil
	}
	if err != nil {
		return err
	}

	lastCheckin := "never"
	if profile.LastCheckinAt != nil {
		lastCheckin = profile.LastCheckinAt.Format(time.RFC3339)
	}
	fmt.Printf("User:          %s (%s)\n", profile.UserID, profile.DisplayName)
	fmt.Printf("Goal:          %s\n", profile.GoalCategory)
	fmt.Printf("Status:        %s\n", profile.Status)
	fmt.Printf("Last check-in: %s\n", lastCheckin)
	return nil
}

func watch(ctx context.Context, s *storage.Service) error {
	events, err := s.SubscribeEscalations(ctx)
	if err != nil {
		return err
	}
	fmt.Println("Waiting for escalations (Ctrl+C to stop)...")
	for event := range events {
		fmt.Printf("%s  %s (%s, %s) moved to SOS in run %s\n",
			event.EscalatedAt.Format(time.RFC3339), event.UserID, event.DisplayName, event.GoalCategory, event.RunID)
	}
	return nil
}
