package spread

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrasher-corp/gct-pairs/backtester/cointegration"
	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
)

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New("", []string{"A", "B"}, []float64{1})
	assert.ErrorIs(t, err, errEmptyPairID)
	_, err = New("A/B", []string{"A", "B"}, nil)
	assert.ErrorIs(t, err, errNoHedgeRatios)
	_, err = New("A/B", []string{"A"}, []float64{1})
	assert.ErrorIs(t, err, errInstrumentCount)
	_, err = New("A/B", []string{"A", "B"}, []float64{math.NaN()})
	assert.ErrorIs(t, err, errNonFiniteRatio)

	ratios := []float64{2}
	s, err := New("A/B", []string{"A", "B"}, ratios)
	require.NoError(t, err)
	ratios[0] = 5
	assert.Equal(t, []float64{1, -2}, s.Weights(), "weights must be frozen at creation")
	assert.Equal(t, "A/B", s.ID())
	assert.Equal(t, []string{"A", "B"}, s.Instruments())
}

func TestFromResult(t *testing.T) {
	t.Parallel()
	_, err := FromResult(nil)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	r := &cointegration.Result{
		ID:          "A/B",
		Candidate:   data.Candidate{Instruments: []string{"A", "B"}},
		HedgeRatios: []float64{1.5},
	}
	_, err = FromResult(r)
	assert.ErrorIs(t, err, errInvalidResult)

	r.Valid = true
	s, err := FromResult(r)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -1.5}, s.Weights())
}

func TestValue(t *testing.T) {
	t.Parallel()
	s, err := New("A/B/C", []string{"A", "B", "C"}, []float64{2, 0.5})
	require.NoError(t, err)
	v, err := s.Value([]float64{10, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	_, err = s.Value([]float64{1, 2})
	assert.ErrorIs(t, err, errPriceCount)
	_, err = s.Value([]float64{math.Inf(1), 1, 1})
	assert.ErrorIs(t, err, errNonFiniteSpread)
}

func TestSeries(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}
	a, err := data.NewSeries("A", times, []float64{10, 11, 12})
	require.NoError(t, err)
	b, err := data.NewSeries("B", times, []float64{4, 5, 5})
	require.NoError(t, err)
	bundle, err := data.NewBundle(a, b)
	require.NoError(t, err)

	s, err := New("A/B", []string{"A", "B"}, []float64{2})
	require.NoError(t, err)
	series, err := s.Series(bundle)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 2}, series)

	missing, err := New("A/X", []string{"A", "X"}, []float64{1})
	require.NoError(t, err)
	_, err = missing.Series(bundle)
	assert.ErrorIs(t, err, common.ErrUnknownInstrument)
}

func TestRollingWindow(t *testing.T) {
	t.Parallel()
	_, err := NewRollingWindow(1)
	assert.ErrorIs(t, err, errWindowTooSmall)

	w, err := NewRollingWindow(3)
	require.NoError(t, err)
	w.Add(1)
	w.Add(2)
	assert.False(t, w.Full())
	assert.Equal(t, []float64{1, 2}, w.Values())
	w.Add(3)
	w.Add(4)
	assert.True(t, w.Full())
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, []float64{2, 3, 4}, w.Values())
	mean, std := w.MeanStdDev()
	assert.InDelta(t, 3.0, mean, 1e-12)
	assert.InDelta(t, 1.0, std, 1e-12)

	w.Reset()
	assert.Zero(t, w.Len())
	assert.Empty(t, w.Values())
}

func TestTracker(t *testing.T) {
	t.Parallel()
	_, err := NewTracker(nil, 3)
	assert.ErrorIs(t, err, common.ErrNilArguments)

	s, err := New("A/B", []string{"A", "B"}, []float64{1})
	require.NoError(t, err)
	tr, err := NewTracker(s, 3)
	require.NoError(t, err)

	obs, err := tr.Update([]float64{11, 10})
	require.NoError(t, err)
	assert.False(t, obs.Ready, "window is still warming up")
	_, err = tr.Update([]float64{12, 10})
	require.NoError(t, err)
	obs, err = tr.Update([]float64{13, 10})
	require.NoError(t, err)
	require.True(t, obs.Ready)
	// window 1,2,3 includes the current bar
	assert.InDelta(t, 2.0, obs.Mean, 1e-12)
	assert.InDelta(t, 1.0, obs.StdDev, 1e-12)
	assert.InDelta(t, 1.0, obs.ZScore, 1e-12)
	assert.InDelta(t, 0.0, obs.DeltaStdDev, 1e-12)

	_, err = tr.Update([]float64{1})
	assert.ErrorIs(t, err, errPriceCount)

	require.NoError(t, tr.Reset(s))
	obs, err = tr.Update([]float64{13, 10})
	require.NoError(t, err)
	assert.False(t, obs.Ready)
	assert.ErrorIs(t, tr.Reset(nil), common.ErrNilArguments)
}

func TestTrackerFlat(t *testing.T) {
	t.Parallel()
	s, err := New("A/B", []string{"A", "B"}, []float64{1})
	require.NoError(t, err)
	tr, err := NewTracker(s, 4)
	require.NoError(t, err)
	var obs Observation
	for range 6 {
		obs, err = tr.Update([]float64{5, 3})
		require.NoError(t, err)
	}
	assert.True(t, obs.Flat)
	assert.False(t, obs.Ready, "a flat spread never produces a z-score")
	assert.Zero(t, obs.ZScore)
}
