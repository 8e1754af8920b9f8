// Package cache models the data caches the workload runs through, using
// Akita cache components, and flushes the real ones between rounds.
package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes (cache line size)
	BlockSize int
	// HitLatency in cycles
	HitLatency uint64
	// MissLatency in cycles (includes next level access time)
	MissLatency uint64
}

// DefaultL1DConfig returns a typical per-core L1 data cache:
// 32KB, 8-way, 64B lines, 4-cycle load-to-use latency.
func DefaultL1DConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
		HitLatency:    4,
		MissLatency:   14,
	}
}

// DefaultL2Config returns a typical per-core unified L2.
func DefaultL2Config() Config {
	return Config{
		Size:          1024 * 1024,
		Associativity: 16,
		BlockSize:     64,
		HitLatency:    14,
		MissLatency:   50,
	}
}

// DefaultLLCConfig returns a typical shared last-level cache. Its size
// bounds how much memory a flush must sweep.
func DefaultLLCConfig() Config {
	return Config{
		Size:          32 * 1024 * 1024,
		Associativity: 16,
		BlockSize:     64,
		HitLatency:    50,
		MissLatency:   200,
	}
}

// Statistics holds model access statistics.
type Statistics struct {
	Accesses  uint64 `json:"accesses"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// MissRatio returns misses per access, or zero when nothing was accessed.
func (s Statistics) MissRatio() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Misses) / float64(s.Accesses)
}

// Model is a tag-only set-associative cache with LRU replacement. It tracks
// which lines are resident, not their contents.
type Model struct {
	config    Config
	directory *akitacache.DirectoryImpl
	stats     Statistics
}

// NewModel creates a model with the given configuration.
func NewModel(config Config) *Model {
	numSets := config.Size / (config.Associativity * config.BlockSize)

	return &Model{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// Stats returns access statistics.
func (m *Model) Stats() Statistics {
	return m.stats
}

// ResetStats clears access statistics and keeps the resident lines.
func (m *Model) ResetStats() {
	m.stats = Statistics{}
}

// Access touches the line holding addr and reports whether it was resident.
// Misses allocate the line, evicting the least recently used way.
func (m *Model) Access(addr uint64) bool {
	m.stats.Accesses++

	blockAddr := (addr / uint64(m.config.BlockSize)) * uint64(m.config.BlockSize)

	block := m.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		m.stats.Hits++
		m.directory.Visit(block)
		return true
	}

	m.stats.Misses++

	victim := m.directory.FindVictim(blockAddr)
	if victim == nil {
		return false
	}
	if victim.IsValid {
		m.stats.Evictions++
	}

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = true
	m.directory.Visit(victim)

	return false
}

// Flush invalidates every line.
func (m *Model) Flush() {
	for _, set := range m.directory.GetSets() {
		for _, block := range set.Blocks {
			block.IsValid = false
			block.IsDirty = false
		}
	}
}

// Reset invalidates all lines and clears statistics.
func (m *Model) Reset() {
	m.directory.Reset()
	m.stats = Statistics{}
}
