package sim

// SimulationContext carries the per-replicate resources every component
// needs: the partitioned RNG, the calendar, and the weather/daylight
// oracles. Passed explicitly — there is no global state.
type SimulationContext struct {
	RNG      *PartitionedRNG
	Time     *TimeCounter
	Weather  WeatherOracle
	Daylight DaylightOracle
}
