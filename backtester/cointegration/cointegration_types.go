package cointegration

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/thrasher-corp/gct-pairs/backtester/data"
)

// Method is the statistical test applied to a candidate
type Method string

// LagSelection decides how many lagged differences the ADF regression uses
type LagSelection string

// CriticalValueSet selects the MacKinnon response surface used for the
// residual unit root test
type CriticalValueSet string

const (
	// Auto uses Engle-Granger for pairs and Johansen for larger candidates
	Auto Method = "auto"
	// EngleGranger regresses the first instrument on the others and tests the residual with ADF
	EngleGranger Method = "engle-granger"
	// Johansen runs the trace and maximum eigenvalue tests on the vector system
	Johansen Method = "johansen"

	// AIC selects the lag order minimising the Akaike information criterion
	AIC LagSelection = "aic"
	// BIC selects the lag order minimising the Bayesian information criterion
	BIC LagSelection = "bic"
	// FixedLags always uses the configured maximum number of lags
	FixedLags LagSelection = "fixed"

	// ResidualCriticalValues accounts for the estimated hedge ratio, N equals the number of instruments
	ResidualCriticalValues CriticalValueSet = "engle-granger"
	// UnitRootCriticalValues uses the plain single series ADF table
	UnitRootCriticalValues CriticalValueSet = "adf"

	// AutoLags derives the maximum ADF lag from the sample size
	AutoLags = -1

	defaultMinObservations = 30
	maxConditionNumber     = 1e12
	zeroVarianceTolerance  = 1e-12
)

var (
	errUnsupportedSignificance = errors.New("unsupported significance level, use 0.01, 0.05 or 0.10")
	errUnsupportedDimension    = errors.New("no critical values for this number of instruments")
	errUnknownMethod           = errors.New("unknown cointegration method")
	errUnknownLagSelection     = errors.New("unknown lag selection")
	errUnknownCriticalValues   = errors.New("unknown critical value set")
	errInvalidHalfLifeBounds   = errors.New("invalid half-life bounds")
	errInvalidCandidate        = errors.New("candidate requires at least two instruments")
	errInvalidWorkers          = errors.New("workers must be positive")
	errInvalidLags             = errors.New("invalid lag setting")
	errInvalidMinObservations  = errors.New("minimum observations too small")
	errDimensionMismatch       = errors.New("dimension mismatch")
)

// Settings drives every test the engine performs
type Settings struct {
	Method          Method
	Significance    float64
	MinObservations int
	MinHalfLife     float64
	MaxHalfLife     float64
	LagSelection    LagSelection
	MaxLags         int
	CriticalValues  CriticalValueSet
	JohansenLags    int
	Workers         int
}

// Engine tests candidates for cointegration
type Engine struct {
	settings Settings
}

// CriticalValues holds the critical values of a test at the three
// supported significance levels
type CriticalValues struct {
	OnePercent  float64 `json:"1%"`
	FivePercent float64 `json:"5%"`
	TenPercent  float64 `json:"10%"`
}

// HalfLife is measured in bars. It is infinite when the spread does not
// mean revert
type HalfLife float64

// Result is produced once per candidate per window and is never modified afterwards
type Result struct {
	ID             string         `json:"id"`
	Candidate      data.Candidate `json:"candidate"`
	Method         Method         `json:"method"`
	Observations   int            `json:"observations"`
	Statistic      float64        `json:"statistic"`
	CriticalValue  float64        `json:"critical-value"`
	CriticalValues CriticalValues `json:"critical-values"`
	PValue         float64        `json:"p-value"`
	Lags           int            `json:"lags"`
	// Johansen only
	Rank                int            `json:"rank,omitempty"`
	TraceStatistics     []float64      `json:"trace-statistics,omitempty"`
	EigenStatistics     []float64      `json:"eigen-statistics,omitempty"`
	EigenCriticalValues CriticalValues `json:"eigen-critical-values"`
	Eigenvalues         []float64      `json:"eigenvalues,omitempty"`
	TraceCriticalByRank []float64      `json:"trace-critical-by-rank,omitempty"`
	EigenCriticalByRank []float64      `json:"eigen-critical-by-rank,omitempty"`
	HedgeRatios         []float64      `json:"hedge-ratios"`
	Intercept           float64        `json:"intercept"`
	HalfLife            HalfLife       `json:"half-life"`
	AutoRegressiveCoeff float64        `json:"ar-coefficient"`
	SpreadMean          float64        `json:"spread-mean"`
	SpreadStdDev        float64        `json:"spread-std-dev"`
	Correlation         float64        `json:"correlation"`
	Significant         bool           `json:"significant"`
	Valid               bool           `json:"valid"`
	Reason              string         `json:"reason,omitempty"`
	Strength            float64        `json:"strength"`
}

// Skipped records a candidate that could not be tested
type Skipped struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
	err    error
}

// ScanReport is the ordered outcome of testing many candidates
type ScanReport struct {
	Results []Result  `json:"results"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

// IsInfinite returns whether the spread never halves its deviation
func (h HalfLife) IsInfinite() bool {
	return math.IsInf(float64(h), 0) || math.IsNaN(float64(h))
}

// MarshalJSON encodes an infinite half-life as null
func (h HalfLife) MarshalJSON() ([]byte, error) {
	if h.IsInfinite() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(h))
}

// UnmarshalJSON decodes null as an infinite half-life
func (h *HalfLife) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*h = HalfLife(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*h = HalfLife(f)
	return nil
}

// Err returns the underlying cause of the skip
func (s Skipped) Err() error {
	return s.err
}
