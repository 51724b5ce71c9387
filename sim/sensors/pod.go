package sensors

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// gramsPerHour converts a g/s rate into the g/h units the detection curves
// are calibrated in.
const gramsPerHour = 3600.0

// Logistic curve slope distribution, calibrated against OGI camera field
// studies. The slope and midpoint are re-drawn per detection decision to
// model camera-operator variability.
const (
	logisticSlopeMean = 4.9
	logisticSlopeSD   = 0.3
)

// LogisticPoD is the sigmoid probability-of-detection curve used for optical
// gas imaging cameras. Operating in log10(g/h) space:
//
//	p = 1 / (1 + exp(-k * (log10(rate) - x0)))
//
// with k ~ Normal(4.9, 0.3) and x0 ~ Normal(log10(MDLMean g/h), MDLSD).
type LogisticPoD struct {
	MDLMean float64 // minimum detection limit, g/s
	MDLSD   float64 // spread of the curve midpoint, log10(g/h) units
}

func (l *LogisticPoD) ProbDetect(rate float64, _ Env, rng *rand.Rand) float64 {
	if rate <= 0 {
		return 0
	}
	k := distuv.Normal{Mu: logisticSlopeMean, Sigma: logisticSlopeSD, Src: rng}.Rand()
	x0 := distuv.Normal{Mu: math.Log10(l.MDLMean * gramsPerHour), Sigma: l.MDLSD, Src: rng}.Rand()
	x := math.Log10(rate * gramsPerHour)
	return 1.0 / (1.0 + math.Exp(-k*(x-x0)))
}

// PowerLawPoD models an alternate camera calibration:
//
//	p = min(1, A * (rate g/h)^B)
type PowerLawPoD struct {
	A float64
	B float64
}

func (p *PowerLawPoD) ProbDetect(rate float64, _ Env, _ *rand.Rand) float64 {
	if rate <= 0 {
		return 0
	}
	prob := p.A * math.Pow(rate*gramsPerHour, p.B)
	return math.Min(prob, 1.0)
}

// WindAdjustedPoD is the binary threshold model for satellite and aircraft
// point-source detection, where wind dilutes the plume:
//
//	Qmin = C0 * (C1 / windspeed)
//
// and the source is detected iff rate >= Qmin. Pair with a narrow
// UniformShift quantifier to apply the 1-5% relative measurement error.
type WindAdjustedPoD struct {
	C0 float64 // base threshold, g/s
	C1 float64 // reference windspeed, m/s
}

func (w *WindAdjustedPoD) ProbDetect(rate float64, env Env, _ *rand.Rand) float64 {
	if rate <= 0 {
		return 0
	}
	wind := env.Windspeed
	if wind <= 0 {
		// Calm air: no dilution, threshold collapses to the base value.
		wind = w.C1
	}
	qmin := w.C0 * (w.C1 / wind)
	if rate >= qmin {
		return 1
	}
	return 0
}

// CoverageGatedPoD models sparse sensing (AVO, fixed low-cost sensors): a
// fixed MDL threshold gated by a fresh-per-survey temporal coverage draw.
// The companion spatial coverage gate is applied by the caller before the
// emission ever reaches the PoD model.
type CoverageGatedPoD struct {
	MDL              float64 // g/s
	TemporalCoverage float64 // probability the source is emitting during the visit window
}

func (c *CoverageGatedPoD) ProbDetect(rate float64, _ Env, _ *rand.Rand) float64 {
	if rate < c.MDL {
		return 0
	}
	return c.TemporalCoverage
}

// RegressionPoD is a generic calibration hook: a linear model in log10(g/h)
// space clamped to [0,1]. Used when a method ships its own fitted curve
// rather than one of the named physical models.
type RegressionPoD struct {
	Intercept float64
	Slope     float64
}

func (r *RegressionPoD) ProbDetect(rate float64, _ Env, _ *rand.Rand) float64 {
	if rate <= 0 {
		return 0
	}
	p := r.Intercept + r.Slope*math.Log10(rate*gramsPerHour)
	return math.Max(0, math.Min(p, 1))
}
