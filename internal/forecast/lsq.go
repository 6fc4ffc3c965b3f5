package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// leastSquares solves min ||Xb - y||² + Σ ridge[j]·b[j]². A nil ridge means
// ordinary least squares. The penalty is applied by augmenting X with
// sqrt(ridge[j]) rows.
func leastSquares(rows [][]float64, y []float64, ridge []float64) ([]float64, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty design matrix", ErrInsufficientData)
	}
	cols := len(rows[0])
	extra := 0
	for _, r := range ridge {
		if r > 0 {
			extra++
		}
	}
	n := len(rows) + extra
	if n < cols {
		return nil, fmt.Errorf("%w: %d observations for %d coefficients", ErrInsufficientData, n, cols)
	}

	x := mat.NewDense(n, cols, nil)
	b := mat.NewVecDense(n, nil)
	for i, r := range rows {
		x.SetRow(i, r)
		b.SetVec(i, y[i])
	}
	i := len(rows)
	for j, r := range ridge {
		if r > 0 {
			x.Set(i, j, math.Sqrt(r))
			i++
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %w", ErrModelTraining, err)
		}
		// Ill-conditioned but solved; the finiteness check below decides.
	}

	out := make([]float64, cols)
	for j := range out {
		out[j] = beta.AtVec(j)
		if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", ErrModelTraining)
		}
	}
	return out, nil
}
