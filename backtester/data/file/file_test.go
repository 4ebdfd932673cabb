package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

const wideCSV = `timestamp,AAA,BBB
2024-01-01T00:00:00Z,100,50
2024-01-01T01:00:00Z,101,
1704070800,102,51.5
`

func TestLoadCSV(t *testing.T) {
	t.Parallel()
	series, err := LoadCSV(strings.NewReader(wideCSV))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "AAA", series[0].Instrument)
	assert.Equal(t, []float64{100, 101, 102}, series[0].Prices)
	assert.Equal(t, []float64{50, 51.5}, series[1].Prices, "empty cells are missing observations")
	assert.True(t, series[1].Times[1].Equal(time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)))

	_, err = LoadCSV(strings.NewReader("timestamp\n1,2\n"))
	assert.ErrorIs(t, err, errNoInstrumentColumns)

	_, err = LoadCSV(strings.NewReader("timestamp,AAA\nyesterday,1\n"))
	assert.ErrorIs(t, err, errUnparsableTimestamp)

	_, err = LoadCSV(strings.NewReader("timestamp,AAA\n1,one\n"))
	assert.ErrorIs(t, err, errUnparsablePrice)

	_, err = LoadCSV(strings.NewReader("timestamp,AAA\n1,NaN\n"))
	assert.ErrorIs(t, err, common.ErrNaNPrice)

	_, err = LoadCSV(strings.NewReader("timestamp,AAA\n2,1\n1,1\n"))
	assert.ErrorIs(t, err, common.ErrNonMonotonicTimestamp)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()
	series, err := LoadJSON([]byte(`[
		{"instrument": "BBB", "prices": [[1704067200, 50], [1704070800, 51]]},
		{"instrument": "AAA", "prices": [[1704067200, 100.5], [1704070800, 101]]}
	]`))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "AAA", series[0].Instrument)
	assert.Equal(t, 100.5, series[0].Prices[0])
	assert.True(t, series[1].Times[0].Equal(time.Unix(1704067200, 0)))

	single, err := LoadJSON([]byte(`{"instrument": "CCC", "prices": [[1, 2]]}`))
	require.NoError(t, err)
	require.Len(t, single, 1)

	_, err = LoadJSON([]byte(`{"prices": [[1, 2]]}`))
	assert.ErrorIs(t, err, errMissingField)

	_, err = LoadJSON([]byte(`{"instrument": "CCC", "prices": [[1]]}`))
	assert.ErrorIs(t, err, errInvalidObservation)

	_, err = LoadJSON([]byte(`"text"`))
	assert.ErrorIs(t, err, errMissingField)
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(wideCSV), 0o600))
	series, err := Load(csvPath, "")
	require.NoError(t, err)
	assert.Len(t, series, 2)

	_, err = Load(filepath.Join(dir, "prices.parquet"), "")
	assert.ErrorIs(t, err, errUnsupportedFile)

	_, err = Load(filepath.Join(dir, "missing.json"), FormatJSON)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
