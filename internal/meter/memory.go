package meter

import (
	"fmt"
	"runtime"
)

// MemoryUnit is a resolution for memory meters.
type MemoryUnit string

const (
	Bytes     MemoryUnit = "b"
	Kilobytes MemoryUnit = "kb"
	Megabytes MemoryUnit = "mb"
)

var memoryUnits = map[MemoryUnit]struct {
	size        float64
	description string
}{
	Bytes:     {1, "bytes"},
	Kilobytes: {1 << 10, "kilobytes"},
	Megabytes: {1 << 20, "megabytes"},
}

// ParseMemoryUnit returns the MemoryUnit named by s.
func ParseMemoryUnit(s string) (MemoryUnit, error) {
	u := MemoryUnit(s)
	if _, ok := memoryUnits[u]; !ok {
		return "", fmt.Errorf("unknown memory unit: %q", s)
	}
	return u, nil
}

// Memory reports the cumulative number of heap bytes allocated by the process.
//
// Reading it calls runtime.ReadMemStats, which briefly stops the world.
type Memory struct {
	unit MemoryUnit
}

// NewMemory creates a memory meter reporting in unit. An unknown unit falls
// back to bytes.
func NewMemory(unit MemoryUnit) *Memory {
	if _, ok := memoryUnits[unit]; !ok {
		unit = Bytes
	}
	return &Memory{unit: unit}
}

func (m *Memory) Name() string        { return "memory" }
func (m *Memory) Unit() string        { return string(m.unit) }
func (m *Memory) Description() string { return memoryUnits[m.unit].description }
func (m *Memory) Kind() Kind          { return KindMemory }

func (m *Memory) Value() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.TotalAlloc) / memoryUnits[m.unit].size
}

// Allocs counts heap allocations performed by the process.
type Allocs struct{}

// NewAllocs creates an allocation-count meter.
func NewAllocs() *Allocs { return &Allocs{} }

func (a *Allocs) Name() string        { return "allocs" }
func (a *Allocs) Unit() string        { return "allocs" }
func (a *Allocs) Description() string { return "heap allocations" }
func (a *Allocs) Kind() Kind          { return KindCount }

func (a *Allocs) Value() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.Mallocs)
}
