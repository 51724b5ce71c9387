package sensors

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/jszwec/csvutil"
	"gonum.org/v1/gonum/stat/distuv"
)

// QuantificationPredictor shifts a true emission rate into a measured one.
// Implementations accept a true rate (g/s) and return a non-negative measured
// rate; the shift models instrument quantification error.
type QuantificationPredictor interface {
	Quantify(trueRate float64, rng *rand.Rand) float64
}

// NormalShift applies a Gaussian relative error, parametrized in percent.
// Measured = true * (1 + N(Mu, SD)/100), floored at zero.
type NormalShift struct {
	Mu float64 // mean relative error, percent
	SD float64 // relative error spread, percent
}

// NewNormalShiftFromCI derives a NormalShift from a 95% confidence interval
// on the relative error (percent), e.g. field-study bounds of [-50, 70].
func NewNormalShiftFromCI(lo, hi float64) *NormalShift {
	return &NormalShift{
		Mu: (lo + hi) / 2,
		SD: (hi - lo) / (2 * 1.96),
	}
}

func (n *NormalShift) Quantify(trueRate float64, rng *rand.Rand) float64 {
	err := distuv.Normal{Mu: n.Mu, Sigma: n.SD, Src: rng}.Rand()
	return math.Max(0, trueRate*(1+err/100))
}

// UniformShift applies a uniform relative error in [Lo, Hi] percent.
type UniformShift struct {
	Lo float64
	Hi float64
}

func (u *UniformShift) Quantify(trueRate float64, rng *rand.Rand) float64 {
	err := u.Lo + rng.Float64()*(u.Hi-u.Lo)
	return math.Max(0, trueRate*(1+err/100))
}

// EmpiricalResample draws a relative error (percent) from a table of
// historical quantification errors.
type EmpiricalResample struct {
	Errors []float64
}

func (e *EmpiricalResample) Quantify(trueRate float64, rng *rand.Rand) float64 {
	if len(e.Errors) == 0 {
		return trueRate
	}
	err := e.Errors[rng.IntN(len(e.Errors))]
	return math.Max(0, trueRate*(1+err/100))
}

// quantErrorRow is the expected shape of an empirical error CSV.
type quantErrorRow struct {
	ErrorPercent float64 `csv:"error_percent"`
}

// LoadEmpiricalErrors reads the error_percent column from a CSV file of
// historical quantification errors.
func LoadEmpiricalErrors(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open quantification error file: %w", err)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read quantification error header: %w", err)
	}
	var rows []quantErrorRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode quantification errors: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("quantification error file %s has no rows", path)
	}
	errors := make([]float64, len(rows))
	for i, r := range rows {
		errors[i] = r.ErrorPercent
	}
	return errors, nil
}
