package migrator

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// обертка над golang-migrate для схемы уведомлений.

// Migrator основная структура.
type Migrator struct {
	migrate *migrate.Migrate
}

// NewMigrator создает мигратор по каталогу migrationsDir.
func NewMigrator(db *sql.DB, migrationsDir string) (*Migrator, error) {
	if err := checkDir(migrationsDir); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(normalizePath(migrationsDir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m}, nil
}

// NewEmbeddedMigrator создает мигратор по встроенной файловой системе.
func NewEmbeddedMigrator(db *sql.DB, migrations fs.FS) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}

	source, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m}, nil
}

func checkDir(migrationsDir string) error {
	if migrationsDir == "" {
		return errors.New("migrations directory is empty")
	}

	info, err := os.Stat(migrationsDir)
	if err != nil {
		return fmt.Errorf("cannot access migrations path %q: %w", migrationsDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("migrations path %q is not a directory", migrationsDir)
	}
	return nil
}

// normalizePath добавляет схему file://, которую ждет golang-migrate.
func normalizePath(path string) string {
	const scheme = "file://"
	if strings.HasPrefix(path, scheme) {
		return path
	}
	return scheme + path
}

// Up накатывает все непримененные миграции.
func (m *Migrator) Up() error {
	err := m.migrate.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Down откатывает все примененные миграции.
func (m *Migrator) Down() error {
	err := m.migrate.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Version возвращает текущую версию схемы. 0, если миграций не было.
func (m *Migrator) Version() (uint, error) {
	ver, dirty, err := m.migrate.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, err
	}
	if dirty {
		return ver, fmt.Errorf("database is dirty at version %d (migration failed midway)", ver)
	}
	return ver, nil
}

// Close освобождает источник и соединение драйвера.
func (m *Migrator) Close() error {
	if m.migrate == nil {
		return nil
	}
	serr, derr := m.migrate.Close()
	return errors.Join(serr, derr)
}
