package data

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
)

// NewSeries validates and copies the supplied observations
func NewSeries(instrument string, times []time.Time, prices []float64) (*Series, error) {
	if instrument == "" {
		return nil, errEmptyInstrument
	}
	if len(times) != len(prices) {
		return nil, fmt.Errorf("%s %w: %d timestamps, %d prices", instrument, errLengthMismatch, len(times), len(prices))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%s %w", instrument, errNoData)
	}
	s := &Series{
		Instrument: instrument,
		Times:      slices.Clone(times),
		Prices:     slices.Clone(prices),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate ensures timestamps are strictly increasing and prices finite
func (s *Series) Validate() error {
	if s == nil {
		return common.ErrNilArguments
	}
	for i := range s.Prices {
		if math.IsNaN(s.Prices[i]) || math.IsInf(s.Prices[i], 0) {
			return fmt.Errorf("%s at %v %w", s.Instrument, s.Times[i], common.ErrNaNPrice)
		}
		if i > 0 && !s.Times[i].After(s.Times[i-1]) {
			return fmt.Errorf("%s at %v %w", s.Instrument, s.Times[i], common.ErrNonMonotonicTimestamp)
		}
	}
	return nil
}

// Len returns the number of observations
func (s *Series) Len() int {
	return len(s.Prices)
}

// NewBundle builds a bundle from series that already share an identical time axis
func NewBundle(series ...*Series) (*Bundle, error) {
	if len(series) == 0 {
		return nil, errNoData
	}
	b := &Bundle{
		prices: make(map[string][]float64, len(series)),
	}
	for i := range series {
		if series[i] == nil {
			return nil, common.ErrNilArguments
		}
		if err := series[i].Validate(); err != nil {
			return nil, err
		}
		if _, ok := b.prices[series[i].Instrument]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicateInstrument, series[i].Instrument)
		}
		if i == 0 {
			b.times = series[i].Times
		} else if !slices.EqualFunc(b.times, series[i].Times, time.Time.Equal) {
			return nil, fmt.Errorf("%w: %s does not match %s", common.ErrMisalignedSeries, series[i].Instrument, series[0].Instrument)
		}
		b.prices[series[i].Instrument] = series[i].Prices
		b.instruments = append(b.instruments, series[i].Instrument)
	}
	sort.Strings(b.instruments)
	return b, nil
}

// Align builds a bundle from series with differing time axes. Timestamps
// from every series are merged, each series is forward filled across at
// most fillLimit consecutive missing observations, and timestamps where any
// series is still missing are dropped
func Align(fillLimit int, series ...*Series) (*Bundle, error) {
	if fillLimit < 0 {
		return nil, errNegativeFillLimit
	}
	if len(series) == 0 {
		return nil, errNoData
	}
	var axis []time.Time
	seen := make(map[int64]struct{})
	for i := range series {
		if series[i] == nil {
			return nil, common.ErrNilArguments
		}
		for j := range series[i].Times {
			k := series[i].Times[j].UnixNano()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			axis = append(axis, series[i].Times[j])
		}
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })

	filled := make([][]float64, len(series))
	keep := make([]bool, len(axis))
	for i := range keep {
		keep[i] = true
	}
	for i := range series {
		filled[i] = make([]float64, len(axis))
		src := 0
		gap := 0
		last := math.NaN()
		for j := range axis {
			if src < len(series[i].Times) && series[i].Times[src].Equal(axis[j]) {
				last = series[i].Prices[src]
				gap = 0
				src++
				filled[i][j] = last
				continue
			}
			gap++
			if math.IsNaN(last) || gap > fillLimit {
				keep[j] = false
				continue
			}
			filled[i][j] = last
		}
	}

	var times []time.Time
	for j := range axis {
		if keep[j] {
			times = append(times, axis[j])
		}
	}
	if len(times) == 0 {
		return nil, errNoCommonObservations
	}
	aligned := make([]*Series, len(series))
	for i := range series {
		prices := make([]float64, 0, len(times))
		for j := range axis {
			if keep[j] {
				prices = append(prices, filled[i][j])
			}
		}
		s, err := NewSeries(series[i].Instrument, times, prices)
		if err != nil {
			return nil, err
		}
		aligned[i] = s
	}
	return NewBundle(aligned...)
}

// Len returns the number of timestamps in the bundle
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.times)
}

// Times returns the shared time axis. It must not be modified
func (b *Bundle) Times() []time.Time {
	return b.times
}

// Instruments returns the sorted instrument identifiers
func (b *Bundle) Instruments() []string {
	return slices.Clone(b.instruments)
}

// Prices returns the price history of an instrument. It must not be modified
func (b *Bundle) Prices(instrument string) ([]float64, error) {
	p, ok := b.prices[instrument]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownInstrument, instrument)
	}
	return p, nil
}

// Window returns a view over observations [start, end)
func (b *Bundle) Window(start, end int) (*Bundle, error) {
	if start < 0 || end > b.Len() || start >= end {
		return nil, fmt.Errorf("%w: [%d, %d) of %d", errInvalidWindow, start, end, b.Len())
	}
	w := &Bundle{
		times:       b.times[start:end],
		prices:      make(map[string][]float64, len(b.prices)),
		instruments: b.instruments,
	}
	for k, v := range b.prices {
		w.prices[k] = v[start:end]
	}
	return w, nil
}

// ID returns the candidate identifier, eg "AAA/BBB"
func (c Candidate) ID() string {
	return strings.Join(c.Instruments, CandidateSeparator)
}

// CandidateFromID splits a candidate identifier into its instruments
func CandidateFromID(id string) Candidate {
	return Candidate{Instruments: strings.Split(id, CandidateSeparator)}
}

// Candidates returns every k sized combination of the instruments in
// sorted order
func Candidates(instruments []string, k int) ([]Candidate, error) {
	sorted := slices.Clone(instruments)
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)
	if k < 2 || k > len(sorted) {
		return nil, fmt.Errorf("%w: %d of %d instruments", errInvalidCombination, k, len(sorted))
	}
	var resp []Candidate
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		c := Candidate{Instruments: make([]string, k)}
		for i := range idx {
			c.Instruments[i] = sorted[idx[i]]
		}
		resp = append(resp, c)
		i := k - 1
		for i >= 0 && idx[i] == len(sorted)-k+i {
			i--
		}
		if i < 0 {
			return resp, nil
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// NewBuilder returns an empty series builder
func NewBuilder() *Builder {
	return &Builder{
		times:  make(map[string][]time.Time),
		prices: make(map[string][]float64),
	}
}

// Add appends an observation. Observations for an instrument must arrive in
// time order
func (b *Builder) Add(instrument string, t time.Time, price float64) {
	b.times[instrument] = append(b.times[instrument], t.UTC())
	b.prices[instrument] = append(b.prices[instrument], price)
}

// Series validates and returns the collected series sorted by instrument
func (b *Builder) Series() ([]*Series, error) {
	if len(b.prices) == 0 {
		return nil, errNoData
	}
	instruments := make([]string, 0, len(b.prices))
	for k := range b.prices {
		instruments = append(instruments, k)
	}
	sort.Strings(instruments)
	resp := make([]*Series, len(instruments))
	for i := range instruments {
		s, err := NewSeries(instruments[i], b.times[instruments[i]], b.prices[instruments[i]])
		if err != nil {
			return nil, err
		}
		resp[i] = s
	}
	return resp, nil
}

// Select returns the series for the requested instruments in the requested
// order. An empty request returns every series
func Select(series []*Series, instruments []string) ([]*Series, error) {
	if len(instruments) == 0 {
		return series, nil
	}
	byName := make(map[string]*Series, len(series))
	for i := range series {
		byName[series[i].Instrument] = series[i]
	}
	resp := make([]*Series, 0, len(instruments))
	for i := range instruments {
		s, ok := byName[instruments[i]]
		if !ok {
			return nil, fmt.Errorf("%w %w: %s", errMissingInstrument, common.ErrUnknownInstrument, instruments[i])
		}
		resp = append(resp, s)
	}
	return resp, nil
}

// ValidateTableName checks that a table name is a plain, optionally schema
// qualified, SQL identifier
func ValidateTableName(name string) error {
	if !tableName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}
