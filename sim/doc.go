// Package sim implements a daily-timestep Monte Carlo simulator of methane
// leak-detection-and-repair (LDAR) programs across a fleet of oil-and-gas
// facilities.
//
// The simulator advances one day at a time. Each day, every monitoring
// method's Schedule decides which sites are due for a survey, Deploy consumes
// crew-minutes against that workplan (gated by weather and daylight), the
// method's Sensor decides what was detected, and the attribution engine
// reconciles detections into a single tagging/repair state machine per
// emission. Emissions age, repair, and expire at the end of each day.
//
// Determinism: given the same SimulationKey and scenario, two runs produce
// bit-for-bit identical results. All randomness flows through a
// PartitionedRNG; there is no wall-clock or I/O dependence inside the daily
// loop. Independent Monte Carlo replicates share no state and may run in
// parallel.
package sim
