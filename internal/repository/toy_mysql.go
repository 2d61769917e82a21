package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes live in the table DDL.
// Filtered columns use a binary collation: the server default ignores case
// and accents, and seller and category filters are exact matches.
var mysqlDialect = dialect{
	name:        "mysql",
	placeholder: questionMark,
	nullsOrder:  noNullsOrder,
	fold:        lowerFold,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS toys (
			id CHAR(24) PRIMARY KEY,
			photo_url TEXT,
			toy_name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin,
			seller_name VARCHAR(255),
			seller_email VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin,
			sub_category VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin,
			price DOUBLE,
			ratings DOUBLE,
			available_quantity BIGINT,
			details_description TEXT,
			INDEX idx_toys_sub_category (sub_category),
			INDEX idx_toys_seller_email (seller_email)
		) DEFAULT CHARSET = utf8mb4`,
	},
}

// NewMySQLToyRepository creates a MySQL toy store.
// dsn format: "user:password@tcp(host:port)/dbname"
func NewMySQLToyRepository(dsn string) (*SQLToyRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	repo, err := newSQLToyRepository(ctx, db, mysqlDialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("component", "mysql").Msg("toy repository initialized")
	return repo, nil
}
