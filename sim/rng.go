package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation replicate.
// Two replicates with the same SimulationKey and identical scenario
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// ForReplicate derives the key for the i-th Monte Carlo replicate.
func (k SimulationKey) ForReplicate(i int) SimulationKey {
	return k + SimulationKey(i)
}

// === Subsystem Constants ===

const (
	// SubsystemEmissions is the RNG subsystem for leak generation:
	// daily LPR draws, rate sampling, repair-delay and duration draws.
	SubsystemEmissions = "emissions"

	// SubsystemCampaign is the RNG subsystem for campaign makeup sampling.
	SubsystemCampaign = "campaign"
)

// SubsystemMethod returns the subsystem name for a monitoring method.
// Each method owns an isolated stream so that adding a method to a scenario
// does not perturb the draws of the methods already present.
func SubsystemMethod(name string) string {
	return fmt.Sprintf("method_%s", name)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName), fed to a PCG
// source. The same subsystem name always returns the same *rand.Rand.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine;
// each replicate owns its own PartitionedRNG.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	derived := uint64(p.key) ^ uint64(fnv1a64(name))
	rng := rand.New(rand.NewPCG(derived, derived^0x9e3779b97f4a7c15))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
