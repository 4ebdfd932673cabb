package cointegration

import (
	"fmt"
	"math"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"gonum.org/v1/gonum/mat"
)

// olsFit is an ordinary least squares estimate
type olsFit struct {
	coef   []float64
	stdErr []float64
	resid  []float64
	ssr    float64
	nobs   int
	params int
}

// fitOLS regresses y on the columns of x. Collinear or constant regressors
// return ErrNumericalDegeneracy
func fitOLS(y []float64, x *mat.Dense) (*olsFit, error) {
	n, p := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d observations", errDimensionMismatch, n, len(y))
	}
	if n <= p {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", common.ErrDataInsufficient, n, p)
	}
	var qr mat.QR
	qr.Factorize(x)
	if c := qr.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > maxConditionNumber {
		return nil, fmt.Errorf("%w: singular regression, condition number %v", common.ErrNumericalDegeneracy, c)
	}
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, mat.NewDense(n, 1, y)); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNumericalDegeneracy, err)
	}

	fit := &olsFit{
		coef:   make([]float64, p),
		stdErr: make([]float64, p),
		resid:  make([]float64, n),
		nobs:   n,
		params: p,
	}
	for i := range fit.coef {
		fit.coef[i] = beta.At(i, 0)
	}
	var fitted mat.VecDense
	fitted.MulVec(x, beta.ColView(0))
	for i := range y {
		fit.resid[i] = y[i] - fitted.AtVec(i)
		fit.ssr += fit.resid[i] * fit.resid[i]
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())
	var chol mat.Cholesky
	if !chol.Factorize(&xtx) {
		return nil, fmt.Errorf("%w: regressors are not positive definite", common.ErrNumericalDegeneracy)
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNumericalDegeneracy, err)
	}
	sigma2 := fit.ssr / float64(n-p)
	for i := range fit.stdErr {
		fit.stdErr[i] = math.Sqrt(sigma2 * inv.At(i, i))
	}
	return fit, nil
}

// logLikelihood of the gaussian regression
func (o *olsFit) logLikelihood() float64 {
	n := float64(o.nobs)
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(o.ssr/n) + 1)
}

func (o *olsFit) aic() float64 {
	return -2*o.logLikelihood() + 2*float64(o.params)
}

func (o *olsFit) bic() float64 {
	return -2*o.logLikelihood() + math.Log(float64(o.nobs))*float64(o.params)
}

// tStat returns the t statistic of a coefficient
func (o *olsFit) tStat(i int) (float64, error) {
	if o.stdErr[i] <= zeroVarianceTolerance {
		return 0, fmt.Errorf("%w: zero standard error", common.ErrNumericalDegeneracy)
	}
	return o.coef[i] / o.stdErr[i], nil
}

// designMatrix builds a row major matrix from columns, appending a constant
// column when withConstant is set
func designMatrix(withConstant bool, cols ...[]float64) *mat.Dense {
	n := len(cols[0])
	p := len(cols)
	if withConstant {
		p++
	}
	x := mat.NewDense(n, p, nil)
	for j := range cols {
		for i := range cols[j] {
			x.Set(i, j, cols[j][i])
		}
	}
	if withConstant {
		for i := 0; i < n; i++ {
			x.Set(i, p-1, 1)
		}
	}
	return x
}

// hedgeRegression regresses the first price series on the others with an
// intercept, returning hedge ratios and the intercept
func hedgeRegression(prices [][]float64) (ratios []float64, intercept float64, err error) {
	fit, err := fitOLS(prices[0], designMatrix(true, prices[1:]...))
	if err != nil {
		return nil, 0, err
	}
	return fit.coef[:len(prices)-1], fit.coef[len(prices)-1], nil
}

// halfLife fits Δs = c + λ·s[t-1] and converts φ = 1+λ into the number of
// bars a deviation takes to halve. φ outside (0, 1) is not mean reverting
func halfLife(spread []float64) (HalfLife, float64, error) {
	if len(spread) < 3 {
		return HalfLife(math.Inf(1)), 0, fmt.Errorf("%w: %d spread observations", common.ErrDataInsufficient, len(spread))
	}
	lagged := spread[:len(spread)-1]
	delta := make([]float64, len(spread)-1)
	for i := 1; i < len(spread); i++ {
		delta[i-1] = spread[i] - spread[i-1]
	}
	fit, err := fitOLS(delta, designMatrix(true, lagged))
	if err != nil {
		return HalfLife(math.Inf(1)), 0, err
	}
	phi := 1 + fit.coef[0]
	if phi <= 0 || phi >= 1 {
		return HalfLife(math.Inf(1)), phi, nil
	}
	return HalfLife(-math.Ln2 / math.Log(phi)), phi, nil
}
