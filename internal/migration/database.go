package migration

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/go-sql-driver/mysql"

	"mcptest/internal/config"
)

var validDatabaseName = regexp.MustCompile(`^[A-Za-z0-9_$]{1,64}$`)

// DatabaseManager prepares the MySQL database used by the report store
type DatabaseManager struct {
	config *config.Config
}

// NewDatabaseManager creates a new DatabaseManager
func NewDatabaseManager(cfg *config.Config) *DatabaseManager {
	return &DatabaseManager{config: cfg}
}

// EnsureDatabase connects to the server named by the DSN and creates the
// DSN's database if it does not exist yet. It reports whether it was created.
func (dm *DatabaseManager) EnsureDatabase(ctx context.Context) (bool, error) {
	dsn, err := mysql.ParseDSN(dm.config.DatabaseDSN)
	if err != nil {
		return false, fmt.Errorf("invalid database DSN: %w", err)
	}
	dbName := dsn.DBName
	if dbName == "" {
		return false, fmt.Errorf("database DSN has no database name")
	}

	// Connect to MySQL server (without specifying database)
	dsn.DBName = ""
	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return false, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return false, fmt.Errorf("failed to ping database server: %w", err)
	}

	exists, err := dm.databaseExists(ctx, db, dbName)
	if err != nil {
		return false, fmt.Errorf("failed to check database %s: %w", dbName, err)
	}
	if exists {
		return false, nil
	}
	if err := dm.createDatabase(ctx, db, dbName); err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	return true, nil
}

func (dm *DatabaseManager) databaseExists(ctx context.Context, db *sql.DB, dbName string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, dbName).Scan(&exists)
	return exists, err
}

func (dm *DatabaseManager) createDatabase(ctx context.Context, db *sql.DB, dbName string) error {
	// Identifiers cannot be bound as parameters.
	if !validDatabaseName.MatchString(dbName) {
		return fmt.Errorf("invalid database name: %s", dbName)
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", dbName))
	return err
}
