package clickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
)

type fakeRow struct {
	instrument string
	ts         int64
	price      float64
}

type fakeRows struct {
	rows    []fakeRow
	pos     int
	scanErr error
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.rows)
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	r := f.rows[f.pos-1]
	*dest[0].(*string) = r.instrument
	*dest[1].(*int64) = r.ts
	*dest[2].(*float64) = r.price
	return nil
}

func (f *fakeRows) Err() error { return nil }

func TestOpen(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), "", "prices")
	assert.ErrorIs(t, err, errNoDSN)
	// rejected before any connection is attempted
	_, err = Open(context.Background(), "clickhouse://127.0.0.1:1/db", "prices FORMAT JSON")
	assert.ErrorIs(t, err, data.ErrInvalidTableName)
}

func TestSelectQuery(t *testing.T) {
	t.Parallel()
	q, args := selectQuery("prices", []string{"AAA", "BBB", "CCC"})
	assert.Equal(t, "SELECT instrument, ts, price FROM prices WHERE instrument IN (?, ?, ?) ORDER BY instrument, ts", q)
	assert.Equal(t, []any{"AAA", "BBB", "CCC"}, args)

	q, args = selectQuery("prices", nil)
	assert.Equal(t, "SELECT instrument, ts, price FROM prices ORDER BY instrument, ts", q)
	assert.Empty(t, args)
}

func TestScanSeries(t *testing.T) {
	t.Parallel()
	series, err := scanSeries(&fakeRows{rows: []fakeRow{
		{"AAA", 1, 10}, {"AAA", 2, 11}, {"BBB", 1, 5}, {"BBB", 2, 6},
	}})
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{10, 11}, series[0].Prices)
	assert.Equal(t, "BBB", series[1].Instrument)

	scanErr := errors.New("bad column type")
	_, err = scanSeries(&fakeRows{rows: []fakeRow{{"AAA", 1, 1}}, scanErr: scanErr})
	assert.ErrorIs(t, err, scanErr)
}
