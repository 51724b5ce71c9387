package sensors

import (
	"fmt"
)

// Sensor type names form a closed set. Unknown names are rejected when the
// owning method is constructed, never at first use.
const (
	TypeLogistic      = "logistic"
	TypePowerLaw      = "power-law"
	TypeWindThreshold = "wind-threshold"
	TypeCoverageGated = "coverage-gated"
	TypeRegression    = "regression"
)

// Quantification predictor names.
const (
	QuantNormal    = "normal"
	QuantUniform   = "uniform"
	QuantEmpirical = "empirical"
)

// Config declares one method's sensor in a scenario file.
//
// MDL carries the model parameters; its meaning varies by type:
//
//	logistic:       [mdl_mean_gps, curve_sd]
//	power-law:      [a, b]
//	wind-threshold: [c0_gps, c1_mps]
//	coverage-gated: [mdl_gps]
//	regression:     [intercept, slope]
type Config struct {
	Type  string    `yaml:"type"`
	Level string    `yaml:"level"`
	MDL   []float64 `yaml:"mdl"`

	// Quantification error. Default is a normal shift from the 95% CI.
	QuantType string    `yaml:"quant_type,omitempty"`
	QuantCI   []float64 `yaml:"quant_ci,omitempty"`   // [lo, hi] percent, for normal/uniform
	QuantFile string    `yaml:"quant_file,omitempty"` // CSV path, for empirical

	// Coverage gates (coverage-gated sensors). SpatialCoverage is sampled
	// once per emission per method by the caller; TemporalCoverage is drawn
	// fresh per survey inside the PoD model.
	SpatialCoverage  float64 `yaml:"spatial_coverage,omitempty"`
	TemporalCoverage float64 `yaml:"temporal_coverage,omitempty"`
}

// New builds a Sensor from a validated config. The method name appears in
// every error so a bad scenario names its offender.
func New(method string, cfg Config) (*Sensor, error) {
	level, err := parseLevel(method, cfg.Level)
	if err != nil {
		return nil, err
	}

	pod, err := newPoD(method, cfg)
	if err != nil {
		return nil, err
	}

	quant, err := newQuantifier(method, cfg)
	if err != nil {
		return nil, err
	}

	return &Sensor{Level: level, PoD: pod, Quant: quant}, nil
}

func parseLevel(method, level string) (Level, error) {
	switch Level(level) {
	case LevelSite, LevelEquipment, LevelComponent:
		return Level(level), nil
	default:
		return "", fmt.Errorf("method %s: unknown detection level %q (want site, equipment, or component)", method, level)
	}
}

func newPoD(method string, cfg Config) (PoDModel, error) {
	need := func(n int) error {
		if len(cfg.MDL) < n {
			return fmt.Errorf("method %s: sensor %q requires %d MDL parameters, got %d", method, cfg.Type, n, len(cfg.MDL))
		}
		return nil
	}

	switch cfg.Type {
	case TypeLogistic:
		if err := need(2); err != nil {
			return nil, err
		}
		if cfg.MDL[0] <= 0 {
			return nil, fmt.Errorf("method %s: logistic MDL mean must be > 0, got %g", method, cfg.MDL[0])
		}
		return &LogisticPoD{MDLMean: cfg.MDL[0], MDLSD: cfg.MDL[1]}, nil

	case TypePowerLaw:
		if err := need(2); err != nil {
			return nil, err
		}
		return &PowerLawPoD{A: cfg.MDL[0], B: cfg.MDL[1]}, nil

	case TypeWindThreshold:
		if err := need(2); err != nil {
			return nil, err
		}
		return &WindAdjustedPoD{C0: cfg.MDL[0], C1: cfg.MDL[1]}, nil

	case TypeCoverageGated:
		if err := need(1); err != nil {
			return nil, err
		}
		tc := cfg.TemporalCoverage
		if tc <= 0 || tc > 1 {
			return nil, fmt.Errorf("method %s: coverage-gated sensor needs temporal_coverage in (0,1], got %g", method, tc)
		}
		return &CoverageGatedPoD{MDL: cfg.MDL[0], TemporalCoverage: tc}, nil

	case TypeRegression:
		if err := need(2); err != nil {
			return nil, err
		}
		return &RegressionPoD{Intercept: cfg.MDL[0], Slope: cfg.MDL[1]}, nil

	default:
		return nil, fmt.Errorf("method %s: unknown sensor type %q", method, cfg.Type)
	}
}

func newQuantifier(method string, cfg Config) (QuantificationPredictor, error) {
	ci := cfg.QuantCI
	ciOK := len(ci) == 2 && ci[0] <= ci[1]

	switch cfg.QuantType {
	case "", QuantNormal:
		if !ciOK {
			// Wind-threshold sensors default to the small relative error the
			// plume inversion carries; everything else measures exactly.
			if cfg.Type == TypeWindThreshold {
				return &UniformShift{Lo: -5, Hi: 5}, nil
			}
			return &NormalShift{Mu: 0, SD: 0}, nil
		}
		return NewNormalShiftFromCI(ci[0], ci[1]), nil

	case QuantUniform:
		if !ciOK {
			return nil, fmt.Errorf("method %s: uniform quantification requires quant_ci [lo, hi]", method)
		}
		return &UniformShift{Lo: ci[0], Hi: ci[1]}, nil

	case QuantEmpirical:
		if cfg.QuantFile == "" {
			return nil, fmt.Errorf("method %s: empirical quantification requires quant_file", method)
		}
		errors, err := LoadEmpiricalErrors(cfg.QuantFile)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method, err)
		}
		return &EmpiricalResample{Errors: errors}, nil

	default:
		return nil, fmt.Errorf("method %s: unknown quantification type %q", method, cfg.QuantType)
	}
}
