package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
)

func testSeries(t *testing.T, instrument string, start float64) *data.Series {
	t.Helper()
	times := make([]time.Time, 5)
	prices := make([]float64, 5)
	for i := range times {
		times[i] = time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC)
		prices[i] = start + float64(i)
	}
	s, err := data.NewSeries(instrument, times, prices)
	require.NoError(t, err)
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), "mysql", "dsn", "prices")
	assert.ErrorIs(t, err, errUnsupportedDriver)
	_, err = Open(context.Background(), SQLite3, "", "prices")
	assert.ErrorIs(t, err, errNoDSN)
	_, err = Open(context.Background(), SQLite3, filepath.Join(t.TempDir(), "prices.db"), "prices; DROP TABLE prices")
	assert.ErrorIs(t, err, data.ErrInvalidTableName)

	var s *Store
	assert.ErrorIs(t, s.Close(), errNilDatabase)
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := Open(ctx, SQLite3, filepath.Join(t.TempDir(), "prices.db"), "prices")
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	require.NoError(t, s.CreateTable(ctx))
	require.NoError(t, s.Insert(ctx, testSeries(t, "BBB", 50), testSeries(t, "AAA", 100), testSeries(t, "CCC", 10)))

	all, err := s.Load(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AAA", all[0].Instrument)
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, all[0].Prices)
	assert.True(t, all[0].Times[4].Equal(time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)))

	some, err := s.Load(ctx, []string{"CCC", "AAA"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "CCC", some[0].Instrument)

	_, err = s.Load(ctx, []string{"DDD"})
	assert.Error(t, err)

	assert.Error(t, s.Insert(ctx, testSeries(t, "AAA", 1)), "duplicate key must fail")
	again, err := s.Load(ctx, []string{"AAA"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, again[0].Prices[0], "failed insert is rolled back")
}

func TestSelectQuery(t *testing.T) {
	t.Parallel()
	s := &Store{driver: Postgres, table: "prices"}
	q, args := s.selectQuery([]string{"AAA", "BBB"})
	assert.Equal(t, "SELECT instrument, ts, price FROM prices WHERE instrument IN ($1, $2) ORDER BY instrument, ts", q)
	assert.Equal(t, []any{"AAA", "BBB"}, args)

	s.driver = SQLite3
	q, args = s.selectQuery(nil)
	assert.Equal(t, "SELECT instrument, ts, price FROM prices ORDER BY instrument, ts", q)
	assert.Empty(t, args)
}
