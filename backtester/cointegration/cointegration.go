package cointegration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"github.com/thrasher-corp/gct-pairs/backtester/data"
	"github.com/thrasher-corp/gct-pairs/backtester/metrics"
	gctmath "github.com/thrasher-corp/gct-pairs/common/math"
	"github.com/thrasher-corp/gct-pairs/log"
	"github.com/thrasher-corp/gct-ta/indicators"
	"golang.org/x/sync/errgroup"
)

// DefaultSettings returns the settings used when none are configured
func DefaultSettings() Settings {
	return Settings{
		Method:          Auto,
		Significance:    0.05,
		MinObservations: defaultMinObservations,
		MinHalfLife:     1,
		MaxHalfLife:     250,
		LagSelection:    AIC,
		MaxLags:         AutoLags,
		CriticalValues:  ResidualCriticalValues,
		JohansenLags:    1,
		Workers:         4,
	}
}

// Validate checks the settings for consistency
func (s *Settings) Validate() error {
	switch s.Method {
	case Auto, EngleGranger, Johansen:
	default:
		return fmt.Errorf("%w %w: %q", common.ErrConfigurationInvalid, errUnknownMethod, s.Method)
	}
	if _, err := significanceIndex(s.Significance); err != nil {
		return fmt.Errorf("%w %w", common.ErrConfigurationInvalid, err)
	}
	if s.MinObservations < 3 {
		return fmt.Errorf("%w %w: %d", common.ErrConfigurationInvalid, errInvalidMinObservations, s.MinObservations)
	}
	if s.MinHalfLife < 0 || s.MaxHalfLife <= s.MinHalfLife {
		return fmt.Errorf("%w %w: [%v, %v]", common.ErrConfigurationInvalid, errInvalidHalfLifeBounds, s.MinHalfLife, s.MaxHalfLife)
	}
	switch s.LagSelection {
	case AIC, BIC, FixedLags:
	default:
		return fmt.Errorf("%w %w: %q", common.ErrConfigurationInvalid, errUnknownLagSelection, s.LagSelection)
	}
	if s.MaxLags < AutoLags || (s.LagSelection == FixedLags && s.MaxLags == AutoLags) {
		return fmt.Errorf("%w %w: max lags %d", common.ErrConfigurationInvalid, errInvalidLags, s.MaxLags)
	}
	if s.JohansenLags < 0 {
		return fmt.Errorf("%w %w: johansen lags %d", common.ErrConfigurationInvalid, errInvalidLags, s.JohansenLags)
	}
	switch s.CriticalValues {
	case ResidualCriticalValues, UnitRootCriticalValues:
	default:
		return fmt.Errorf("%w %w: %q", common.ErrConfigurationInvalid, errUnknownCriticalValues, s.CriticalValues)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w %w: %d", common.ErrConfigurationInvalid, errInvalidWorkers, s.Workers)
	}
	return nil
}

// NewEngine validates the settings and returns an engine
func NewEngine(s Settings) (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Engine{settings: s}, nil
}

// Settings returns a copy of the engine settings
func (e *Engine) Settings() Settings {
	return e.settings
}

// Test evaluates a single candidate over the whole bundle. Candidates with
// too little history return ErrDataInsufficient and should be skipped.
// Numerical problems do not return an error, they produce an invalid result
// carrying the reason
func (e *Engine) Test(b *data.Bundle, c data.Candidate) (*Result, error) {
	if b == nil {
		return nil, common.ErrNilArguments
	}
	if len(c.Instruments) < 2 {
		return nil, fmt.Errorf("%s %w", c.ID(), errInvalidCandidate)
	}
	if b.Len() < e.settings.MinObservations {
		return nil, fmt.Errorf("%s %w: %d observations, %d required", c.ID(), common.ErrDataInsufficient, b.Len(), e.settings.MinObservations)
	}
	prices := make([][]float64, len(c.Instruments))
	for i := range c.Instruments {
		p, err := b.Prices(c.Instruments[i])
		if err != nil {
			return nil, err
		}
		prices[i] = p
	}

	res := &Result{
		ID:           c.ID(),
		Candidate:    c,
		Observations: b.Len(),
		HalfLife:     HalfLife(math.Inf(1)),
		Method:       e.settings.Method,
	}
	if res.Method == Auto {
		res.Method = EngleGranger
		if len(prices) > 2 {
			res.Method = Johansen
		}
	}
	if len(prices) == 2 {
		res.Correlation = correlation(prices[0], prices[1])
	}

	var err error
	switch res.Method {
	case EngleGranger:
		err = e.engleGranger(prices, res)
	case Johansen:
		err = e.johansen(prices, res)
	}
	if err != nil {
		if errors.Is(err, common.ErrDataInsufficient) {
			return nil, fmt.Errorf("%s %w", c.ID(), err)
		}
		res.Valid = false
		res.Significant = false
		res.Strength = 0
		res.Reason = err.Error()
		return res, nil
	}
	e.classify(prices, res)
	return res, nil
}

// engleGranger estimates hedge ratios by OLS then tests the residual spread
// for a unit root
func (e *Engine) engleGranger(prices [][]float64, res *Result) error {
	ratios, intercept, err := hedgeRegression(prices)
	if err != nil {
		return err
	}
	res.HedgeRatios = ratios
	res.Intercept = intercept

	adf, err := augmentedDickeyFuller(spreadOf(prices, ratios), e.settings.MaxLags, e.settings.LagSelection)
	if err != nil {
		return err
	}
	n := len(prices)
	if e.settings.CriticalValues == UnitRootCriticalValues {
		n = 1
	}
	cvs, err := unitRootCriticalValues(n, adf.nobs)
	if err != nil {
		return err
	}
	pValue, err := unitRootPValue(adf.stat, n)
	if err != nil {
		return err
	}
	idx, err := significanceIndex(e.settings.Significance)
	if err != nil {
		return err
	}
	res.Statistic = adf.stat
	res.Lags = adf.lags
	res.CriticalValues = cvs
	res.CriticalValue = cvs.At(idx)
	res.PValue = pValue
	res.Significant = adf.stat < res.CriticalValue
	res.Strength = adf.stat / res.CriticalValue
	return nil
}

// johansen runs the trace test and uses the strongest eigenvector as the
// hedge ratio
func (e *Engine) johansen(prices [][]float64, res *Result) error {
	k := len(prices)
	if k > len(johansenTrace) {
		return fmt.Errorf("%w: %d instruments", errUnsupportedDimension, k)
	}
	j, err := johansenTest(prices, e.settings.JohansenLags)
	if err != nil {
		return err
	}
	idx, err := significanceIndex(e.settings.Significance)
	if err != nil {
		return err
	}
	res.Lags = e.settings.JohansenLags
	res.Eigenvalues = j.eigenvalues
	res.TraceStatistics = j.trace
	res.EigenStatistics = j.maxEigen
	res.TraceCriticalByRank = make([]float64, k)
	res.EigenCriticalByRank = make([]float64, k)
	for r := 0; r < k; r++ {
		trace, eigen, err := johansenCriticalValues(k - r)
		if err != nil {
			return err
		}
		if r == 0 {
			res.CriticalValues = trace
			res.EigenCriticalValues = eigen
		}
		res.TraceCriticalByRank[r] = trace.At(idx)
		res.EigenCriticalByRank[r] = eigen.At(idx)
		if res.Rank == r && j.trace[r] > res.TraceCriticalByRank[r] {
			res.Rank = r + 1
		}
	}
	res.Statistic = j.trace[0]
	res.CriticalValue = res.TraceCriticalByRank[0]
	res.PValue = bracketPValue(res.Statistic, res.CriticalValues)
	res.Significant = res.Rank > 0
	res.Strength = res.Statistic / res.CriticalValue

	ratios, err := j.hedgeRatios()
	if err != nil {
		return err
	}
	res.HedgeRatios = ratios
	return nil
}

// classify computes the spread's mean reversion properties and applies the
// validity rules
func (e *Engine) classify(prices [][]float64, res *Result) {
	spread := spreadOf(prices, res.HedgeRatios)
	res.SpreadMean = gctmath.ArithmeticAverage(spread)
	res.SpreadStdDev = gctmath.SampleStandardDeviation(spread)
	if res.SpreadStdDev <= zeroVarianceTolerance*math.Max(1, math.Abs(res.SpreadMean)) {
		res.Reason = fmt.Sprintf("%v: spread has zero variance", common.ErrNumericalDegeneracy)
		return
	}
	hl, phi, err := halfLife(spread)
	res.AutoRegressiveCoeff = phi
	if err != nil {
		res.Reason = err.Error()
		return
	}
	res.HalfLife = hl
	switch {
	case !res.Significant:
		res.Reason = fmt.Sprintf("statistic %.4f does not exceed critical value %.4f", res.Statistic, res.CriticalValue)
	case hl.IsInfinite():
		res.Reason = fmt.Sprintf("%v: spread is not mean reverting, ar coefficient %.4f", common.ErrNumericalDegeneracy, phi)
	case float64(hl) < e.settings.MinHalfLife:
		res.Reason = fmt.Sprintf("half-life %.2f below minimum %.2f", float64(hl), e.settings.MinHalfLife)
	case float64(hl) > e.settings.MaxHalfLife:
		res.Reason = fmt.Sprintf("half-life %.2f above maximum %.2f", float64(hl), e.settings.MaxHalfLife)
	default:
		res.Valid = true
	}
}

// Scan tests every candidate concurrently. Results are ranked by strength,
// strongest first, with ties broken by candidate ID. Candidates lacking
// data are listed as skipped and never abort the scan
func (e *Engine) Scan(ctx context.Context, b *data.Bundle, candidates []data.Candidate) (*ScanReport, error) {
	if b == nil {
		return nil, common.ErrNilArguments
	}
	results := make([]*Result, len(candidates))
	skipped := make([]error, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.Workers)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.Test(b, candidates[i])
			switch {
			case errors.Is(err, common.ErrDataInsufficient):
				skipped[i] = err
				return nil
			case err != nil:
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &ScanReport{}
	for i := range candidates {
		switch {
		case skipped[i] != nil:
			report.Skipped = append(report.Skipped, Skipped{ID: candidates[i].ID(), Reason: skipped[i].Error(), err: skipped[i]})
			metrics.ObserveCandidate(metrics.OutcomeSkipped)
			log.Debugf(common.Cointegration, "%s skipped: %v", candidates[i].ID(), skipped[i])
		case results[i].Valid:
			report.Results = append(report.Results, *results[i])
			metrics.ObserveCandidate(metrics.OutcomeValid)
		default:
			report.Results = append(report.Results, *results[i])
			metrics.ObserveCandidate(metrics.OutcomeInvalid)
			log.Debugf(common.Cointegration, "%s invalid: %s", results[i].ID, results[i].Reason)
		}
	}
	SortResults(report.Results)
	log.Infof(common.Cointegration, "tested %d candidates, %d valid, %d skipped", len(candidates), len(report.Valid()), len(report.Skipped))
	return report, nil
}

// SortResults ranks results by strength, strongest first
func SortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Strength != results[j].Strength {
			return results[i].Strength > results[j].Strength
		}
		return results[i].ID < results[j].ID
	})
}

// Valid returns the valid results in ranking order
func (s *ScanReport) Valid() []Result {
	var resp []Result
	for i := range s.Results {
		if s.Results[i].Valid {
			resp = append(resp, s.Results[i])
		}
	}
	return resp
}

// Weights returns the linear combination applied to the candidate prices,
// the first instrument always carries a weight of one
func (r *Result) Weights() []float64 {
	w := make([]float64, len(r.HedgeRatios)+1)
	w[0] = 1
	for i := range r.HedgeRatios {
		w[i+1] = -r.HedgeRatios[i]
	}
	return w
}

// spreadOf returns p0 - Σ ratio[i]·p[i+1]
func spreadOf(prices [][]float64, ratios []float64) []float64 {
	spread := make([]float64, len(prices[0]))
	for t := range spread {
		spread[t] = prices[0][t]
		for i := range ratios {
			spread[t] -= ratios[i] * prices[i+1][t]
		}
	}
	return spread
}

// correlation is the Pearson correlation of two price series over their
// full length
func correlation(a, b []float64) float64 {
	c := indicators.CorrelationCoefficient(a, b, len(a))
	if len(c) == 0 {
		return 0
	}
	v := c[len(c)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
