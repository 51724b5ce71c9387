package scenario

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/jszwec/csvutil"
	"gonum.org/v1/gonum/stat/distuv"

	sim "github.com/ldar-sim/ldar-sim/sim"
)

// LogNormalSource draws rates from LogNormal(Mu, Sigma) in ln(g/s) space —
// the heavy-tailed shape fugitive leak-rate surveys report.
type LogNormalSource struct {
	Mu    float64
	Sigma float64
}

func (s *LogNormalSource) Sample(rng *rand.Rand) float64 {
	return distuv.LogNormal{Mu: s.Mu, Sigma: s.Sigma, Src: rng}.Rand()
}

func (s *LogNormalSource) Units() string { return "gps" }

// ConstantSource always returns the same rate. Useful for controlled
// scenarios and tests.
type ConstantSource struct {
	Rate float64
}

func (s *ConstantSource) Sample(_ *rand.Rand) float64 { return s.Rate }

func (s *ConstantSource) Units() string { return "gps" }

// EmpiricalSource resamples from a measured leak-rate table.
type EmpiricalSource struct {
	Rates []float64
}

func (s *EmpiricalSource) Sample(rng *rand.Rand) float64 {
	if len(s.Rates) == 0 {
		return 0
	}
	return s.Rates[rng.IntN(len(s.Rates))]
}

func (s *EmpiricalSource) Units() string { return "gps" }

// rateRow is the expected shape of an empirical rate CSV.
type rateRow struct {
	RateGPS float64 `csv:"rate_gps"`
}

// LoadEmpiricalRates reads the rate_gps column from a CSV of measured rates.
func LoadEmpiricalRates(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate source file: %w", err)
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read rate source header: %w", err)
	}
	var rows []rateRow
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rate source: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("rate source file %s has no rows", path)
	}
	rates := make([]float64, len(rows))
	for i, r := range rows {
		if r.RateGPS < 0 {
			return nil, fmt.Errorf("rate source file %s row %d: negative rate %g", path, i+1, r.RateGPS)
		}
		rates[i] = r.RateGPS
	}
	return rates, nil
}

// NewRateSource builds an emission rate source from its spec. Unknown types
// are rejected here, at load time.
func NewRateSource(spec RateSourceSpec) (sim.EmissionsSource, error) {
	switch spec.Type {
	case "lognormal":
		mu, okMu := spec.Params["mu"]
		sigma, okSigma := spec.Params["sigma"]
		if !okMu || !okSigma {
			return nil, fmt.Errorf("lognormal rate source requires params mu and sigma")
		}
		if sigma <= 0 {
			return nil, fmt.Errorf("lognormal rate source requires sigma > 0, got %g", sigma)
		}
		return &LogNormalSource{Mu: mu, Sigma: sigma}, nil

	case "constant":
		rate, ok := spec.Params["rate"]
		if !ok {
			return nil, fmt.Errorf("constant rate source requires param rate")
		}
		if rate < 0 {
			return nil, fmt.Errorf("constant rate source requires rate >= 0, got %g", rate)
		}
		return &ConstantSource{Rate: rate}, nil

	case "empirical":
		if spec.File == "" {
			return nil, fmt.Errorf("empirical rate source requires a file path")
		}
		rates, err := LoadEmpiricalRates(spec.File)
		if err != nil {
			return nil, err
		}
		return &EmpiricalSource{Rates: rates}, nil

	default:
		return nil, fmt.Errorf("unknown rate source type %q", spec.Type)
	}
}
