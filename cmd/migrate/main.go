package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"gutendex/internal/config"
	"gutendex/internal/platform/logging"
)

type CLI struct {
	Dir string `help:"Directory holding the SQL migrations." env:"MIGRATIONS_DIR" default:"db/migrations" type:"path"`

	Up     UpCmd     `cmd:"" default:"1" help:"Apply all pending migrations."`
	Down   DownCmd   `cmd:"" help:"Roll back the latest migration."`
	Status StatusCmd `cmd:"" help:"Print the status of every migration."`
	Create CreateCmd `cmd:"" help:"Create a new SQL migration file."`
}

type UpCmd struct{}

func (c *UpCmd) Run(cli *CLI, cfg *config.Config, log *slog.Logger) error {
	return withDB(cfg, func(db *sql.DB) error {
		if err := goose.Up(db, cli.Dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("migrations applied", "dir", cli.Dir)
		return nil
	})
}

type DownCmd struct{}

func (c *DownCmd) Run(cli *CLI, cfg *config.Config, log *slog.Logger) error {
	return withDB(cfg, func(db *sql.DB) error {
		if err := goose.Down(db, cli.Dir); err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		log.Info("migration rolled back", "dir", cli.Dir)
		return nil
	})
}

type StatusCmd struct{}

func (c *StatusCmd) Run(cli *CLI, cfg *config.Config) error {
	return withDB(cfg, func(db *sql.DB) error {
		return goose.Status(db, cli.Dir)
	})
}

type CreateCmd struct {
	Name string `arg:"" help:"Migration name, e.g. add_books_index."`
}

func (c *CreateCmd) Run(cli *CLI, log *slog.Logger) error {
	if err := goose.Create(nil, cli.Dir, c.Name, "sql"); err != nil {
		return fmt.Errorf("create migration: %w", err)
	}
	log.Info("migration created", "name", c.Name)
	return nil
}

func withDB(cfg *config.Config, fn func(db *sql.DB) error) error {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open database %s: %w", config.RedactDSN(cfg.DSN), err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return fn(db)
}

func main() {
	cfg := config.LoadWithoutAuth()
	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("migrate"),
		kong.Description("Run database migrations."),
		kong.UsageOnError(),
		kong.Bind(&cli, cfg, log),
	)
	if err := ctx.Run(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
