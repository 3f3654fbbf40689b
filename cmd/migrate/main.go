package main

import (
	"database/sql"
	"flag"
	"fmt"

	"sangh-connect/pkg/config"
	"sangh-connect/pkg/logger"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func main() {
	var (
		dir     = flag.String("dir", "migrations", "directory with migration files")
		command = flag.String("command", "up", "migration command (up, up-to, down, reset, status, version, create)")
		name    = flag.String("name", "", "name for new migration (used with create command)")
		version = flag.Int64("version", 0, "target version (used with up-to command)")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config: %v", err)
		panic(err)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("Failed to open database: %v", err)
		panic(err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("Failed to set dialect: %v", err)
		panic(err)
	}

	if err := run(db, *command, *dir, *name, *version); err != nil {
		log.Error("Migration command %q failed: %v", *command, err)
		panic(err)
	}
	log.Info("Migration command %q finished for %s", *command, cfg.DBName)
}

func run(db *sql.DB, command, dir, name string, version int64) error {
	switch command {
	case "create":
		if name == "" {
			return fmt.Errorf("name is required for create command")
		}
		return goose.Create(db, dir, name, "sql")
	case "up":
		return goose.Up(db, dir)
	case "up-to":
		if version <= 0 {
			return fmt.Errorf("version is required for up-to command")
		}
		return goose.UpTo(db, dir, version)
	case "down":
		return goose.Down(db, dir)
	case "reset":
		return goose.Reset(db, dir)
	case "status":
		return goose.Status(db, dir)
	case "version":
		return goose.Version(db, dir)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}
