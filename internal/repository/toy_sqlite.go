package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// SQLite's LOWER and LIKE fold ASCII only. casefold folds with the same
// rules the search operand is folded with.
const sqliteFoldFunc = "casefold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteFoldFunc, 1, casefold)
}

func casefold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: questionMark,
	nullsOrder:  noNullsOrder,
	fold:        func(column string) string { return sqliteFoldFunc + "(" + column + ")" },
	schema: []string{
		`CREATE TABLE IF NOT EXISTS toys (
			id TEXT PRIMARY KEY,
			photo_url TEXT,
			toy_name TEXT,
			seller_name TEXT,
			seller_email TEXT,
			sub_category TEXT,
			price REAL,
			ratings REAL,
			available_quantity INTEGER,
			details_description TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_toys_sub_category ON toys(sub_category)`,
		`CREATE INDEX IF NOT EXISTS idx_toys_seller_email ON toys(seller_email)`,
	},
}

// NewSQLiteToyRepository opens (or creates) a SQLite toy store.
// dbPath is the path to the database file (e.g., "./data/toys.db").
func NewSQLiteToyRepository(dbPath string) (*SQLToyRepository, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo, err := newSQLToyRepository(ctx, db, sqliteDialect)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("component", "sqlite").Msgf("initialized with database: %s", dbPath)
	return repo, nil
}
