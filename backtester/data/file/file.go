package file

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/log"
)

// Formats accepted by Load
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Load reads a price file. An empty format is derived from the extension
func Load(path, format string) ([]*data.Series, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", errUnsupportedFile, format)
	}
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var series []*data.Series
	if format == FormatCSV {
		series, err = LoadCSV(bytes.NewReader(b))
	} else {
		series, err = LoadJSON(b)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof(common.Data, "Loaded %d instruments from %s", len(series), path)
	return series, nil
}

// LoadCSV reads wide price data: a header of timestamp followed by one
// column per instrument. Empty cells are missing observations and are left
// for alignment to resolve
func LoadCSV(r io.Reader) ([]*data.Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	header, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, errNoInstrumentColumns
	}
	header = slices.Clone(header)
	b := data.NewBuilder()
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i := 1; i < len(record); i++ {
			if record[i] == "" {
				continue
			}
			price, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s %w: %q", line, header[i], errUnparsablePrice, record[i])
			}
			b.Add(header[i], ts, price)
		}
	}
	return b.Series()
}

func parseTimestamp(s string) (time.Time, error) {
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	for i := range timestampLayouts {
		if t, err := time.Parse(timestampLayouts[i], s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errUnparsableTimestamp, s)
}

// LoadJSON reads one series object or an array of them, each shaped as
// {"instrument": "AAA", "prices": [[unix, price], ...]}
func LoadJSON(b []byte) ([]*data.Series, error) {
	v, typ, _, err := jsonparser.Get(b)
	if err != nil {
		return nil, err
	}
	builder := data.NewBuilder()
	switch typ {
	case jsonparser.Object:
		err = parseSeries(v, builder)
	case jsonparser.Array:
		var errs error
		_, err = jsonparser.ArrayEach(v, func(obj []byte, _ jsonparser.ValueType, _ int, _ error) {
			errs = common.AppendError(errs, parseSeries(obj, builder))
		})
		err = common.AppendError(err, errs)
	default:
		return nil, fmt.Errorf("%w: expected object or array", errMissingField)
	}
	if err != nil {
		return nil, err
	}
	return builder.Series()
}

func parseSeries(obj []byte, builder *data.Builder) error {
	instrument, err := jsonparser.GetString(obj, "instrument")
	if err != nil {
		return fmt.Errorf("%w instrument: %w", errMissingField, err)
	}
	prices, typ, _, err := jsonparser.Get(obj, "prices")
	if err != nil || typ != jsonparser.Array {
		return fmt.Errorf("%s %w prices", instrument, errMissingField)
	}
	var errs error
	_, err = jsonparser.ArrayEach(prices, func(pair []byte, _ jsonparser.ValueType, _ int, _ error) {
		if errs != nil {
			return
		}
		unix, tErr := jsonparser.GetInt(pair, "[0]")
		price, pErr := jsonparser.GetFloat(pair, "[1]")
		if tErr != nil || pErr != nil {
			errs = fmt.Errorf("%s %w: %s", instrument, errInvalidObservation, pair)
			return
		}
		builder.Add(instrument, time.Unix(unix, 0), price)
	})
	return common.AppendError(err, errs)
}
