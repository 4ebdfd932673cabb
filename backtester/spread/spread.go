package spread

import (
	"fmt"
	"math"
	"slices"

	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	gctmath "github.com/thrasher-corp/gct-pairs/common/math"
)

// New builds a spread of instruments[0] - Σ hedgeRatios[i]·instruments[i+1]
func New(id string, instruments []string, hedgeRatios []float64) (*Spread, error) {
	if id == "" {
		return nil, errEmptyPairID
	}
	if len(hedgeRatios) == 0 {
		return nil, errNoHedgeRatios
	}
	if len(instruments) != len(hedgeRatios)+1 {
		return nil, fmt.Errorf("%s %w: %d instruments, %d ratios", id, errInstrumentCount, len(instruments), len(hedgeRatios))
	}
	s := &Spread{
		id:          id,
		instruments: slices.Clone(instruments),
		weights:     make([]float64, len(instruments)),
	}
	s.weights[0] = 1
	for i := range hedgeRatios {
		if math.IsNaN(hedgeRatios[i]) || math.IsInf(hedgeRatios[i], 0) {
			return nil, fmt.Errorf("%s %w", id, errNonFiniteRatio)
		}
		s.weights[i+1] = -hedgeRatios[i]
	}
	return s, nil
}

// FromResult builds the spread described by a valid cointegration result
func FromResult(r *cointegration.Result) (*Spread, error) {
	if r == nil {
		return nil, common.ErrNilArguments
	}
	if !r.Valid {
		return nil, fmt.Errorf("%s %w: %s", r.ID, errInvalidResult, r.Reason)
	}
	return New(r.ID, r.Candidate.Instruments, r.HedgeRatios)
}

// ID returns the pair identifier
func (s *Spread) ID() string {
	return s.id
}

// Instruments returns the legs in weight order
func (s *Spread) Instruments() []string {
	return slices.Clone(s.instruments)
}

// Weights returns the signed weight of each leg, the first is always one
func (s *Spread) Weights() []float64 {
	return slices.Clone(s.weights)
}

// Value returns the spread for leg prices supplied in instrument order
func (s *Spread) Value(prices []float64) (float64, error) {
	if len(prices) != len(s.weights) {
		return 0, fmt.Errorf("%s %w: %d prices, %d legs", s.id, errPriceCount, len(prices), len(s.weights))
	}
	var v float64
	for i := range prices {
		v += s.weights[i] * prices[i]
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s %w", s.id, errNonFiniteSpread)
	}
	return v, nil
}

// LegPrices extracts this spread's leg prices at an offset of the bundle
func (s *Spread) LegPrices(b *data.Bundle, offset int) ([]float64, error) {
	resp := make([]float64, len(s.instruments))
	for i := range s.instruments {
		p, err := b.Prices(s.instruments[i])
		if err != nil {
			return nil, fmt.Errorf("%s %w: %w", s.id, errMissingInstrument, err)
		}
		resp[i] = p[offset]
	}
	return resp, nil
}

// Series computes the spread across every timestamp in the bundle
func (s *Spread) Series(b *data.Bundle) ([]float64, error) {
	resp := make([]float64, b.Len())
	for t := range resp {
		legs, err := s.LegPrices(b, t)
		if err != nil {
			return nil, err
		}
		if resp[t], err = s.Value(legs); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// NewRollingWindow returns a window holding up to size values
func NewRollingWindow(size int) (*RollingWindow, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: %d", errWindowTooSmall, size)
	}
	return &RollingWindow{size: size, values: make([]float64, size)}, nil
}

// Add pushes a value, evicting the oldest once full
func (w *RollingWindow) Add(v float64) {
	w.values[w.head] = v
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// Full returns whether the window holds size values
func (w *RollingWindow) Full() bool {
	return w.count == w.size
}

// Len returns the number of values held
func (w *RollingWindow) Len() int {
	return w.count
}

// Reset empties the window
func (w *RollingWindow) Reset() {
	w.head = 0
	w.count = 0
}

// Values returns the held values oldest first
func (w *RollingWindow) Values() []float64 {
	resp := make([]float64, w.count)
	start := (w.head - w.count + w.size) % w.size
	for i := range resp {
		resp[i] = w.values[(start+i)%w.size]
	}
	return resp
}

// MeanStdDev returns the mean and sample standard deviation of the window
func (w *RollingWindow) MeanStdDev() (mean, stdDev float64) {
	v := w.Values()
	return gctmath.ArithmeticAverage(v), gctmath.SampleStandardDeviation(v)
}

// Tracker maintains the rolling statistics of one spread
type Tracker struct {
	spread *Spread
	levels *RollingWindow
	deltas *RollingWindow
	last   float64
	seen   bool
}

// NewTracker returns a tracker with a trailing window of the given size
func NewTracker(s *Spread, window int) (*Tracker, error) {
	if s == nil {
		return nil, common.ErrNilArguments
	}
	levels, err := NewRollingWindow(window)
	if err != nil {
		return nil, err
	}
	deltas, err := NewRollingWindow(window)
	if err != nil {
		return nil, err
	}
	return &Tracker{spread: s, levels: levels, deltas: deltas}, nil
}

// Spread returns the tracked spread
func (t *Tracker) Spread() *Spread {
	return t.spread
}

// Update adds the leg prices of the next bar and returns the resulting
// observation. The window includes the current bar
func (t *Tracker) Update(prices []float64) (Observation, error) {
	v, err := t.spread.Value(prices)
	if err != nil {
		return Observation{}, err
	}
	if t.seen {
		t.deltas.Add(v - t.last)
	}
	t.last = v
	t.seen = true
	t.levels.Add(v)

	obs := Observation{Spread: v}
	if !t.levels.Full() {
		return obs, nil
	}
	obs.Mean, obs.StdDev = t.levels.MeanStdDev()
	_, obs.DeltaStdDev = t.deltas.MeanStdDev()
	if obs.StdDev <= flatTolerance*math.Max(1, math.Abs(obs.Mean)) {
		obs.Flat = true
		obs.StdDev = 0
		return obs, nil
	}
	obs.ZScore = (v - obs.Mean) / obs.StdDev
	obs.Ready = true
	return obs, nil
}

// Reset clears the rolling state and swaps in a new spread
func (t *Tracker) Reset(s *Spread) error {
	if s == nil {
		return common.ErrNilArguments
	}
	t.spread = s
	t.levels.Reset()
	t.deltas.Reset()
	t.seen = false
	t.last = 0
	return nil
}
