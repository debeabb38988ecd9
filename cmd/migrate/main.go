package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS votes CASCADE`,
		`DROP TABLE IF EXISTS voting_codes CASCADE`,
		`DROP TABLE IF EXISTS teams CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %q: %w", query, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			team_id TEXT PRIMARY KEY,
			team_name TEXT NOT NULL,
			votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			qr_generated_by TEXT NOT NULL DEFAULT '',
			qr_generated_at TIMESTAMPTZ
		)`,

		`CREATE TABLE IF NOT EXISTS voting_codes (
			code TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			expires_at TIMESTAMPTZ,
			used_teams TEXT[] NOT NULL DEFAULT '{}',
			last_vote_at TIMESTAMPTZ,
			generated_by TEXT NOT NULL DEFAULT '',
			generated_via TEXT NOT NULL DEFAULT 'manual'
		)`,

		`CREATE TABLE IF NOT EXISTS votes (
			id UUID PRIMARY KEY,
			team_id TEXT NOT NULL,
			team_name TEXT NOT NULL,
			code TEXT NOT NULL,
			voted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_voting_codes_expires_at ON voting_codes (expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_team_id ON votes (team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_voted_at ON votes (voted_at)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_votes ON teams (votes DESC)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	teams := []struct {
		id   string
		name string
	}{
		{"team-alpha", "Alpha"},
		{"team-bravo", "Bravo"},
		{"team-charlie", "Charlie"},
	}

	for _, t := range teams {
		_, err := conn.Exec(ctx,
			`INSERT INTO teams (team_id, team_name, qr_generated_by)
			 VALUES ($1, $2, 'localhost')
			 ON CONFLICT (team_id) DO NOTHING`,
			t.id, t.name)
		if err != nil {
			return fmt.Errorf("failed to seed team %s: %w", t.id, err)
		}
	}

	_, err := conn.Exec(ctx,
		`INSERT INTO voting_codes (code, expires_at, generated_by, generated_via)
		 VALUES ('42', now() + interval '45 minutes', 'localhost', 'manual')
		 ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to seed voting code: %w", err)
	}
	return nil
}
