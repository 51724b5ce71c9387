package sim

import (
	"fmt"
	"time"

	"github.com/ldar-sim/ldar-sim/sim/sensors"
)

// Deployment type names form a closed set.
const (
	DeploymentMobile     = "mobile"
	DeploymentStationary = "stationary"
)

// DeploymentPolicy is the small set of capability flags that replaces a
// class-per-deployment-type hierarchy. One concrete deployment routine reads
// these instead of overriding hooks.
type DeploymentPolicy struct {
	// SupportsTravel debits travel minutes per site visit.
	SupportsTravel bool
	// WeatherGating checks the deployment cube before spending crew time.
	WeatherGating bool
	// ConsiderDaylight caps the workday at available daylight.
	ConsiderDaylight bool
	// CrewSharing shares a crew pool across the workplan; when false each
	// site has a dedicated crew-equivalent (fixed sensors).
	CrewSharing bool
}

// PolicyForDeployment maps a deployment type to its capability flags.
func PolicyForDeployment(deploymentType string, considerDaylight bool) (DeploymentPolicy, error) {
	switch deploymentType {
	case DeploymentMobile:
		return DeploymentPolicy{
			SupportsTravel:   true,
			WeatherGating:    true,
			ConsiderDaylight: considerDaylight,
			CrewSharing:      true,
		}, nil
	case DeploymentStationary:
		// Fixed sensors: no travel, no crew sharing, weather still gates.
		return DeploymentPolicy{
			WeatherGating: true,
		}, nil
	default:
		return DeploymentPolicy{}, fmt.Errorf("unknown deployment type %q (want mobile or stationary)", deploymentType)
	}
}

// MethodConfig declares one monitoring method in a scenario.
type MethodConfig struct {
	Name           string         `yaml:"name"`
	Sensor         sensors.Config `yaml:"sensor"`
	DeploymentType string         `yaml:"deployment_type"`

	// Scheduled-method survey policy.
	RS               int   `yaml:"rs"` // required surveys per site per year
	DeploymentMonths []int `yaml:"deployment_months,omitempty"`
	DeploymentYears  []int `yaml:"deployment_years,omitempty"`

	// Crew logistics.
	NCrews            int     `yaml:"n_crews"`
	MaxWorkday        float64 `yaml:"max_workday"` // hours
	SurveyTimeMinutes float64 `yaml:"survey_time"`
	TravelTimeMinutes float64 `yaml:"travel_time"`
	ConsiderDaylight  bool    `yaml:"consider_daylight"`

	// Follow-up wiring. A screening method names the follow-up method its
	// flags feed; a follow-up method sets IsFollowUp and surveys only
	// flagged sites.
	IsFollowUp     bool   `yaml:"is_follow_up"`
	FollowUpMethod string `yaml:"follow_up_method,omitempty"`
	ReportingDelay int    `yaml:"reporting_delay"`

	// Campaign follow-up quota enforcement (screening methods only).
	MinFollowupsPerCampaign int `yaml:"min_followups_per_campaign,omitempty"`
	MinFollowupDaysToEnd    int `yaml:"min_followup_days_to_end,omitempty"`

	// Cost accounting (recorded, not computed, by the core).
	CostPerDay  float64 `yaml:"cost_per_day"`
	CostPerSite float64 `yaml:"cost_per_site"`
	UpfrontCost float64 `yaml:"upfront_cost"`
}

// Validate rejects malformed method configurations at construction time.
// The error names the offending method; a bad scenario never reaches day one.
func (c *MethodConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("method with empty name")
	}
	if _, err := PolicyForDeployment(c.DeploymentType, c.ConsiderDaylight); err != nil {
		return fmt.Errorf("method %s: %w", c.Name, err)
	}
	if !c.IsFollowUp && c.RS <= 0 {
		return fmt.Errorf("method %s: scheduled methods need rs > 0, got %d", c.Name, c.RS)
	}
	if c.IsFollowUp && c.ReportingDelay < 0 {
		return fmt.Errorf("method %s: reporting_delay must be >= 0, got %d", c.Name, c.ReportingDelay)
	}
	if c.NCrews <= 0 && c.DeploymentType == DeploymentMobile {
		return fmt.Errorf("method %s: mobile methods need n_crews > 0, got %d", c.Name, c.NCrews)
	}
	if c.MaxWorkday <= 0 {
		return fmt.Errorf("method %s: max_workday must be > 0 hours, got %g", c.Name, c.MaxWorkday)
	}
	if c.SurveyTimeMinutes <= 0 {
		return fmt.Errorf("method %s: survey_time must be > 0 minutes, got %g", c.Name, c.SurveyTimeMinutes)
	}
	for _, m := range c.DeploymentMonths {
		if m < 1 || m > 12 {
			return fmt.Errorf("method %s: deployment month %d out of range", c.Name, m)
		}
	}
	// Sensor construction doubles as validation.
	if _, err := sensors.New(c.Name, c.Sensor); err != nil {
		return err
	}
	return nil
}

// Months converts the YAML month whitelist into time.Month values.
func (c *MethodConfig) Months() []time.Month {
	out := make([]time.Month, 0, len(c.DeploymentMonths))
	for _, m := range c.DeploymentMonths {
		out = append(out, time.Month(m))
	}
	return out
}
