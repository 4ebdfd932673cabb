package cointegration

import (
	"fmt"
	"math"
	"sort"

	"github.com/thrasher-corp/gct-pairs/backtester/common"
	"gonum.org/v1/gonum/mat"
)

// johansenResult holds the statistics of a Johansen test with an
// unrestricted constant
type johansenResult struct {
	eigenvalues []float64
	trace       []float64
	maxEigen    []float64
	// vectors holds the cointegrating vectors as columns, strongest first,
	// normalised so that vᵀ·S11·v = 1
	vectors *mat.Dense
	nobs    int
}

// demeanColumns subtracts each column mean in place
func demeanColumns(m *mat.Dense) {
	r, c := m.Dims()
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += m.At(i, j)
		}
		mean := sum / float64(r)
		for i := 0; i < r; i++ {
			m.Set(i, j, m.At(i, j)-mean)
		}
	}
}

// residualise removes the projection of y onto the columns of z
func residualise(y, z *mat.Dense) (*mat.Dense, error) {
	if z == nil {
		return y, nil
	}
	var qr mat.QR
	qr.Factorize(z)
	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, y); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNumericalDegeneracy, err)
	}
	var fitted, resid mat.Dense
	fitted.Mul(z, &coef)
	resid.Sub(y, &fitted)
	return &resid, nil
}

// johansenTest runs the reduced rank regression of
// Δx[t] = Π·x[t-1] + Σ Γi·Δx[t-i] + c on the price matrix
func johansenTest(prices [][]float64, lags int) (*johansenResult, error) {
	k := len(prices)
	n := len(prices[0])
	rows := n - 1 - lags
	if rows <= k*(lags+1)+1 {
		return nil, fmt.Errorf("%w: %d observations for %d instruments and %d lags", common.ErrDataInsufficient, n, k, lags)
	}
	dx := mat.NewDense(rows, k, nil)
	level := mat.NewDense(rows, k, nil)
	var z *mat.Dense
	if lags > 0 {
		z = mat.NewDense(rows, k*lags, nil)
	}
	for r := 0; r < rows; r++ {
		t := r + lags + 1
		for j := 0; j < k; j++ {
			dx.Set(r, j, prices[j][t]-prices[j][t-1])
			level.Set(r, j, prices[j][t-1])
			for i := 1; i <= lags; i++ {
				z.Set(r, (i-1)*k+j, prices[j][t-i]-prices[j][t-i-1])
			}
		}
	}
	demeanColumns(dx)
	demeanColumns(level)
	if z != nil {
		demeanColumns(z)
	}
	r0, err := residualise(dx, z)
	if err != nil {
		return nil, err
	}
	r1, err := residualise(level, z)
	if err != nil {
		return nil, err
	}

	scale := 1 / float64(rows)
	s00 := mat.NewSymDense(k, nil)
	s00.SymOuterK(scale, r0.T())
	s11 := mat.NewSymDense(k, nil)
	s11.SymOuterK(scale, r1.T())
	var s01 mat.Dense
	s01.Mul(r0.T(), r1)
	s01.Scale(scale, &s01)

	var chol11 mat.Cholesky
	if !chol11.Factorize(s11) {
		return nil, fmt.Errorf("%w: level covariance is singular", common.ErrNumericalDegeneracy)
	}
	var chol00 mat.Cholesky
	if !chol00.Factorize(s00) {
		return nil, fmt.Errorf("%w: difference covariance is singular", common.ErrNumericalDegeneracy)
	}
	var s00inv mat.SymDense
	if err = chol00.InverseTo(&s00inv); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNumericalDegeneracy, err)
	}
	var l, linv mat.TriDense
	chol11.LTo(&l)
	if err = linv.InverseTri(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrNumericalDegeneracy, err)
	}

	// L⁻¹·S10·S00⁻¹·S01·L⁻ᵀ is symmetric and shares its eigenvalues with
	// S11⁻¹·S10·S00⁻¹·S01
	var prod mat.Dense
	prod.Product(&linv, s01.T(), &s00inv, &s01, linv.T())
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, (prod.At(i, j)+prod.At(j, i))/2)
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, fmt.Errorf("%w: eigen decomposition failed", common.ErrNumericalDegeneracy)
	}
	values := eig.Values(nil)
	var u mat.Dense
	eig.VectorsTo(&u)
	var vectors mat.Dense
	vectors.Mul(linv.T(), &u)

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	res := &johansenResult{
		eigenvalues: make([]float64, k),
		trace:       make([]float64, k),
		maxEigen:    make([]float64, k),
		vectors:     mat.NewDense(k, k, nil),
		nobs:        rows,
	}
	for dst, src := range order {
		lambda := math.Min(math.Max(values[src], 0), 1-1e-15)
		res.eigenvalues[dst] = lambda
		for i := 0; i < k; i++ {
			res.vectors.Set(i, dst, vectors.At(i, src))
		}
	}
	t := float64(rows)
	for r := 0; r < k; r++ {
		res.maxEigen[r] = -t * math.Log(1-res.eigenvalues[r])
		for i := r; i < k; i++ {
			res.trace[r] += -t * math.Log(1-res.eigenvalues[i])
		}
	}
	return res, nil
}

// hedgeRatios normalises the strongest cointegrating vector on the first
// instrument so that spread = p0 - Σ ratio[i]·p[i+1]
func (j *johansenResult) hedgeRatios() ([]float64, error) {
	k, _ := j.vectors.Dims()
	lead := j.vectors.At(0, 0)
	if math.Abs(lead) < zeroVarianceTolerance {
		return nil, fmt.Errorf("%w: cointegrating vector has no weight on the first instrument", common.ErrNumericalDegeneracy)
	}
	ratios := make([]float64, k-1)
	for i := 1; i < k; i++ {
		ratios[i-1] = -j.vectors.At(i, 0) / lead
	}
	return ratios, nil
}
