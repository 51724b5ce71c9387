package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
version: "1"
seed: 42
start_date: "2025-01-01"
years: 1
replicates: 2
sites:
  count: 10
  equipment_groups: 2
  components_per_group: 5
  subtypes:
    - name: wellsite
      weight: 0.7
    - name: compressor
      weight: 0.3
  lat_min: 50.0
  lat_max: 56.0
  lon_min: -115.0
  lon_max: -110.0
emissions:
  lpr: 0.0065
  rate_source:
    type: lognormal
    params:
      mu: -2.776
      sigma: 1.462
  max_rate: 100
  initial_leak_prob: 0.2
  max_backdate_days: 180
  repair_delay: 14
  repair_cost: 250
weather:
  type: constant
  windspeed: 4.5
methods:
  - name: OGI
    deployment_type: mobile
    rs: 2
    n_crews: 2
    max_workday: 8
    survey_time: 120
    travel_time: 30
    cost_per_day: 1500
    sensor:
      type: logistic
      level: component
      mdl: [0.01, 0.3]
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_ValidScenario(t *testing.T) {
	spec, err := Load(writeScenario(t, validScenario))
	require.NoError(t, err)

	assert.Equal(t, int64(42), spec.Seed)
	assert.Equal(t, 10, spec.Sites.Count)
	assert.Equal(t, 0.0065, spec.Emissions.LPR)
	assert.Len(t, spec.Methods, 1)
	assert.Equal(t, "OGI", spec.Methods[0].Name)
	assert.Equal(t, []float64{0.01, 0.3}, spec.Methods[0].Sensor.MDL)
	assert.Equal(t, 365, spec.HorizonDays())

	start, err := spec.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeScenario(t, "methods: [unclosed"))
	assert.Error(t, err)
}

func TestSpec_Start_DefaultsWhenUnset(t *testing.T) {
	spec := &Spec{}
	start, err := spec.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
}

func TestValidate_RejectsBadScenarios(t *testing.T) {
	base := func() *Spec {
		spec, err := Load(writeScenario(t, validScenario))
		require.NoError(t, err)
		return spec
	}

	cases := []struct {
		name    string
		mutate  func(*Spec)
		wantErr string
	}{
		{"bad start date", func(s *Spec) { s.StartDate = "01/01/2025" }, "start_date"},
		{"zero years", func(s *Spec) { s.Years = 0 }, "years"},
		{"no sites", func(s *Spec) { s.Sites.Count = 0 }, "sites.count"},
		{"no components", func(s *Spec) { s.Sites.ComponentsPerGroup = 0 }, "components_per_group"},
		{"negative subtype weight", func(s *Spec) { s.Sites.Subtypes[0].Weight = -1 }, "wellsite"},
		{"lpr out of range", func(s *Spec) { s.Emissions.LPR = 1.5 }, "lpr"},
		{"unknown rate source", func(s *Spec) { s.Emissions.RateSource.Type = "weibull" }, "rate source"},
		{"vents without duration", func(s *Spec) { s.Emissions.VentFraction = 0.1 }, "vent_duration"},
		{"intermittents without duty", func(s *Spec) { s.Emissions.IntermittentFraction = 0.1 }, "duty"},
		{"no methods", func(s *Spec) { s.Methods = nil }, "no methods"},
		{"bad method", func(s *Spec) { s.Methods[0].RS = 0 }, "OGI"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := base()
			tc.mutate(spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantErr),
				"error %q does not mention %q", err, tc.wantErr)
		})
	}
}
