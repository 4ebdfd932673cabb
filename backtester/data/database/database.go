package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	// sql drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/log"
)

// Supported drivers
const (
	SQLite3  = "sqlite3"
	Postgres = "postgres"
)

var (
	errUnsupportedDriver = errors.New("unsupported database driver")
	errNoDSN             = errors.New("no database dsn provided")
	errNilDatabase       = errors.New("database is nil")
)

// Store reads and writes the prices(instrument, ts, price) table
type Store struct {
	db     *sql.DB
	driver string
	table  string
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, driver, dsn, table string) (*Store, error) {
	if driver != SQLite3 && driver != Postgres {
		return nil, fmt.Errorf("%w: %q", errUnsupportedDriver, driver)
	}
	if dsn == "" {
		return nil, errNoDSN
	}
	if err := data.ValidateTableName(table); err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == SQLite3 {
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, driver: driver, table: table}, nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return errNilDatabase
	}
	return s.db.Close()
}

// CreateTable creates the price table when it does not exist
func (s *Store) CreateTable(ctx context.Context) error {
	priceType := "REAL"
	if s.driver == Postgres {
		priceType = "DOUBLE PRECISION"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	instrument TEXT NOT NULL,
	ts BIGINT NOT NULL,
	price %s NOT NULL,
	PRIMARY KEY (instrument, ts)
)`, s.table, priceType))
	return err
}

// Insert writes every observation of the series in one transaction
func (s *Store) Insert(ctx context.Context, series ...*data.Series) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (instrument, ts, price) VALUES (%s, %s, %s)",
		s.table, s.placeholder(1), s.placeholder(2), s.placeholder(3)))
	if err != nil {
		return errors.Join(err, tx.Rollback())
	}
	for i := range series {
		for j := range series[i].Prices {
			if _, err = stmt.ExecContext(ctx, series[i].Instrument, series[i].Times[j].Unix(), series[i].Prices[j]); err != nil {
				return errors.Join(err, stmt.Close(), tx.Rollback())
			}
		}
	}
	if err = stmt.Close(); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// Load reads the price history of the requested instruments, or every
// instrument when none are requested
func (s *Store) Load(ctx context.Context, instruments []string) ([]*data.Series, error) {
	query, args := s.selectQuery(instruments)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	b := data.NewBuilder()
	var (
		instrument string
		ts         int64
		price      float64
	)
	for rows.Next() {
		if err = rows.Scan(&instrument, &ts, &price); err != nil {
			return nil, err
		}
		b.Add(instrument, time.Unix(ts, 0), price)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	series, err := b.Series()
	if err != nil {
		return nil, err
	}
	log.Infof(common.Data, "Loaded %d instruments from %s table %s", len(series), s.driver, s.table)
	return data.Select(series, instruments)
}

func (s *Store) selectQuery(instruments []string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT instrument, ts, price FROM ")
	sb.WriteString(s.table)
	args := make([]any, len(instruments))
	if len(instruments) > 0 {
		sb.WriteString(" WHERE instrument IN (")
		for i := range instruments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(s.placeholder(i + 1))
			args[i] = instruments[i]
		}
		sb.WriteString(")")
	}
	sb.WriteString(" ORDER BY instrument, ts")
	return sb.String(), args
}

func (s *Store) placeholder(n int) string {
	if s.driver == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
