package sim

import "math"

// DeploymentCube is the precomputed weather-gate lookup for one method:
// indexed [lonIdx][latIdx][timestep], true when the method can work at that
// cell on that day. Built once at init; the daily loop only indexes it.
type DeploymentCube [][][]bool

// At reports the gate value, failing closed on out-of-range indices.
func (c DeploymentCube) At(lonIdx, latIdx, timestep int) bool {
	if lonIdx < 0 || lonIdx >= len(c) {
		return false
	}
	if latIdx < 0 || latIdx >= len(c[lonIdx]) {
		return false
	}
	if timestep < 0 || timestep >= len(c[lonIdx][latIdx]) {
		return false
	}
	return c[lonIdx][latIdx][timestep]
}

// WeatherOracle answers the weather questions the core needs. Implemented by
// the excluded weather-grid ingestion layer; the core never reads weather
// files itself.
type WeatherOracle interface {
	// DeploymentDaysCube precomputes the weather gate for one method's
	// envelope (temperature, wind, precipitation limits are the
	// implementer's concern).
	DeploymentDaysCube(method string) DeploymentCube
	// Windspeed returns m/s at a grid cell on a timestep.
	Windspeed(timestep, latIdx, lonIdx int) float64
}

// DaylightOracle reports available daylight hours per timestep.
type DaylightOracle interface {
	GetDaylight(timestep int) float64
}

// === Synthetic oracles ===
//
// In-repo stand-ins so scenarios and tests run without the external
// ingestion layer.

// ConstantWeather always passes the gate with a fixed windspeed.
type ConstantWeather struct {
	Wind     float64
	Horizon  int
	GridLon  int
	GridLat  int
	PassRate float64 // fraction of days passing; 1.0 = always pass
	rng      interface{ Float64() float64 }
}

// NewConstantWeather builds an always-pass oracle over a 1x1 grid.
func NewConstantWeather(wind float64, horizon int) *ConstantWeather {
	return &ConstantWeather{Wind: wind, Horizon: horizon, GridLon: 1, GridLat: 1, PassRate: 1.0}
}

// NewBernoulliWeather builds an oracle whose gate passes each day with the
// given probability, drawn once per cell per day at cube construction.
func NewBernoulliWeather(wind float64, horizon int, passRate float64, rng interface{ Float64() float64 }) *ConstantWeather {
	return &ConstantWeather{Wind: wind, Horizon: horizon, GridLon: 1, GridLat: 1, PassRate: passRate, rng: rng}
}

func (w *ConstantWeather) DeploymentDaysCube(_ string) DeploymentCube {
	cube := make(DeploymentCube, w.GridLon)
	for lon := 0; lon < w.GridLon; lon++ {
		cube[lon] = make([][]bool, w.GridLat)
		for lat := 0; lat < w.GridLat; lat++ {
			cube[lon][lat] = make([]bool, w.Horizon)
			for t := 0; t < w.Horizon; t++ {
				if w.PassRate >= 1.0 || w.rng == nil {
					cube[lon][lat][t] = w.PassRate >= 1.0
				} else {
					cube[lon][lat][t] = w.rng.Float64() < w.PassRate
				}
			}
		}
	}
	return cube
}

func (w *ConstantWeather) Windspeed(_, _, _ int) float64 {
	return w.Wind
}

// SeasonalDaylight approximates daylight hours with an annual sine cycle
// around a mean, peaking at the summer solstice (timestep offset relative to
// a Jan 1 start).
type SeasonalDaylight struct {
	MeanHours      float64
	AmplitudeHours float64
}

func (d *SeasonalDaylight) GetDaylight(timestep int) float64 {
	dayOfYear := timestep % 365
	phase := 2 * math.Pi * float64(dayOfYear-172) / 365
	return d.MeanHours + d.AmplitudeHours*math.Cos(phase)
}

// ConstantDaylight always reports the same hours.
type ConstantDaylight struct {
	Hours float64
}

func (d *ConstantDaylight) GetDaylight(_ int) float64 {
	return d.Hours
}
