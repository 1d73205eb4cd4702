// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationDirection はマイグレーションの適用方向。
type MigrationDirection string

const (
	// MigrateUp は未適用のマイグレーションをすべて適用する。
	MigrateUp MigrationDirection = "up"
	// MigrateDown は直近のマイグレーションを1つだけ取り消す。
	MigrateDown MigrationDirection = "down"
)

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// databaseURLはPostgreSQLの接続URLを指定する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations は指定方向にマイグレーションを実行し、実行後のスキーマバージョンを返す。
// 変更がない場合もエラーにはしない。全て取り消した場合のバージョンは0。
func RunMigrations(databaseURL string, direction MigrationDirection) (uint, error) {
	if direction != MigrateUp && direction != MigrateDown {
		return 0, fmt.Errorf("unknown migration direction: %q", direction)
	}

	m, err := NewMigrator(databaseURL)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if direction == MigrateUp {
		err = m.Up()
	} else {
		err = m.Steps(-1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations (%s): %w", direction, err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// ParseMigrationDirection は引数からマイグレーションの方向を解析する。
// 引数が空の場合はMigrateUpを返す。
func ParseMigrationDirection(args []string) (MigrationDirection, error) {
	if len(args) == 0 {
		return MigrateUp, nil
	}
	switch d := MigrationDirection(args[0]); d {
	case MigrateUp, MigrateDown:
		return d, nil
	default:
		return "", fmt.Errorf("unknown migration direction: %q", args[0])
	}
}
