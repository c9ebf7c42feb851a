package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	storagePathFlag   = "storage-path"
	migrationPathFlag = "migrations-path"
	downFlag          = "down"

	storageEnvName = "IMGCHECK_SQL_DB"
)

type flags struct {
	storagePath    string
	migrationsPath string
	down           bool
}

func main() {
	f := getFlagsValues(os.Args[1:])
	if err := validateFlags(f); err != nil {
		slog.Error("too few args", "err", err)
		fallDown()
	}
	makeMigrations(f)
}

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger() *MigrationLogger {
	return &MigrationLogger{
		logger:  slog.Default(),
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func getFlagsValues(args []string) flags {
	fs := pflag.NewFlagSet("migrator", pflag.ExitOnError)
	storagePath := fs.StringP(storagePathFlag, "s", os.Getenv(storageEnvName), "postgres DSN")
	migrationsPath := fs.StringP(migrationPathFlag, "m", "migrations", "migrations directory")
	down := fs.Bool(downFlag, false, "revert all migrations")
	_ = fs.Parse(args)
	return flags{*storagePath, *migrationsPath, *down}
}

func validateFlags(f flags) error {
	var errs []error

	if f.storagePath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", storagePathFlag))
	}

	if f.migrationsPath == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationPathFlag))
	}

	return errors.Join(errs...)
}

// databaseURL points the pgx/v5 migrate driver at the DSN.
func databaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	if strings.HasPrefix(dsn, "pgx5://") {
		return dsn
	}
	return "pgx5://" + dsn
}

func makeMigrations(f flags) {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", f.migrationsPath),
		databaseURL(f.storagePath),
	)
	if err != nil {
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}

	m.Log = NewMigrationLogger()

	apply, action := m.Up, "applied"
	if f.down {
		apply, action = m.Down, "reverted"
	}

	if err := apply(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return
		}
		slog.Error("failed to migrate", "err", err)
		fallDown()
	}
	m.Log.Printf("migrations %s", action)
}

func fallDown() {
	os.Exit(2)
}
