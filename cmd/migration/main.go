package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/live-sports-hub/internal/config"
	"github.com/riskibarqy/live-sports-hub/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
)

var errUsage = errors.New("usage")

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).Named("migration")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	if cfg.DBDriver == config.DBDriverMemory {
		logger.Error("DB_DRIVER=memory has no schema to migrate")
		os.Exit(1)
	}

	m, err := sqlstore.NewMigrator(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		logger.Error("create migrator failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}

	err = run(m, os.Args[1:], os.Stdout, logger)
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Warn("close migrator failed", "source_error", srcErr, "db_error", dbErr)
	}

	switch {
	case errors.Is(err, errUsage):
		printUsage()
		os.Exit(2)
	case err != nil:
		logger.Error("migration failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(m migrator, args []string, stdout io.Writer, logger *logging.Logger) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := strings.ToLower(strings.TrimSpace(args[0])), args[1:]
	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up(), logger); err != nil {
			return err
		}
		logger.Info("migrations applied")
	case "down":
		steps, err := parseSteps(rest)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
			return err
		}
		logger.Info("migrations rolled back", "steps", steps)
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Fprintln(stdout, "version: none")
			fmt.Fprintln(stdout, "dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Fprintf(stdout, "version: %d\n", version)
		fmt.Fprintf(stdout, "dirty: %t\n", dirty)
	case "force":
		if len(rest) == 0 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := parseVersion(rest[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		logger.Info("migration version forced", "version", version)
	case "goto", "migrate":
		if len(rest) == 0 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := parseTarget(rest[0])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
			return err
		}
		logger.Info("migrated", "version", target)
	default:
		return errUsage
	}
	return nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", name)
	fmt.Fprintln(os.Stderr, "DB_DRIVER and DB_URL select the database (default: local SQLite file).")
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", name)
	fmt.Fprintf(os.Stderr, "  %s down 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s version\n", name)
	fmt.Fprintf(os.Stderr, "  %s force 1\n", name)
	fmt.Fprintf(os.Stderr, "  %s goto 1\n", name)
}
