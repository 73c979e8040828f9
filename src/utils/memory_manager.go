package utils

import (
	"runtime"
	"runtime/debug"
	"sync"

	"digit-observer/src/logger"
	"digit-observer/src/models"
)

// -----------------------------------------------------------------------------
// MemoryManager manages in-memory tick buffers for symbols.
// -----------------------------------------------------------------------------

type MemoryManager struct {
	DataStreams   map[string]*RingBuffer
	MaxMemoryMB   int
	MaxDataPoints int
	Logger        *logger.Logger
	mu            sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryManager(maxMemoryMB, maxDataPoints int) *MemoryManager {
	return &MemoryManager{
		DataStreams:   make(map[string]*RingBuffer),
		MaxMemoryMB:   maxMemoryMB,
		MaxDataPoints: maxDataPoints,
		Logger:        logger.NewLogger(nil, "MemoryManager"),
	}
}

// -----------------------------------------------------------------------------

// AddDataPoint adds a tick to the buffer for a symbol.
func (mm *MemoryManager) AddDataPoint(symbol string, data models.MTick) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if _, ok := mm.DataStreams[symbol]; !ok {
		mm.DataStreams[symbol] = NewRingBuffer(mm.MaxDataPoints)
	}

	mm.DataStreams[symbol].Append(data)

	// Periodic memory check
	if mm.DataStreams[symbol].Size()%100 == 0 {
		mm.checkMemoryLimits()
	}
}

// -----------------------------------------------------------------------------

// GetHistory returns the full stored history for a symbol, oldest first.
func (mm *MemoryManager) GetHistory(symbol string) []models.MTick {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.DataStreams[symbol]
	if !ok || buffer.Size() == 0 {
		return []models.MTick{}
	}

	history := buffer.GetAll()
	// The buffer stores only numeric features; restore the symbol key
	for i := range history {
		history[i].Symbol = symbol
	}
	return history
}

// -----------------------------------------------------------------------------

// GetLatest returns the most recent tick for a symbol, or false when empty.
func (mm *MemoryManager) GetLatest(symbol string) (models.MTick, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	buffer, ok := mm.DataStreams[symbol]
	if !ok || buffer.Size() == 0 {
		return models.MTick{}, false
	}

	latest := buffer.GetLatest(1)
	if len(latest) == 0 {
		return models.MTick{}, false
	}
	latest[0].Symbol = symbol
	return latest[0], true
}

// -----------------------------------------------------------------------------

// checkMemoryLimits checks and enforces memory limits.
// Caller must hold mm.mu.
func (mm *MemoryManager) checkMemoryLimits() {
	currentMemory := mm.GetProcessMemoryMB()

	if currentMemory > float64(mm.MaxMemoryMB) {
		mm.Logger.Info("Memory usage %.1fMB exceeds limit %dMB. Cleaning up.",
			currentMemory, mm.MaxMemoryMB)

		// Reduce data retention by half to free memory
		for symbol := range mm.DataStreams {
			buffer := mm.DataStreams[symbol]
			if buffer.Capacity() > 100 {
				newCapacity := buffer.Capacity() / 2
				if newCapacity < 50 {
					newCapacity = 50
				}
				buffer.Resize(newCapacity)
			}
		}

		// Force garbage collection
		runtime.GC()
		debug.FreeOSMemory()
	}
}

// -----------------------------------------------------------------------------

// GetProcessMemoryMB gets current process memory usage in MB
func (mm *MemoryManager) GetProcessMemoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.HeapAlloc) / 1024 / 1024
}

// -----------------------------------------------------------------------------

// Cleanup clears all data
func (mm *MemoryManager) Cleanup() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.DataStreams = make(map[string]*RingBuffer)
	runtime.GC()
	debug.FreeOSMemory()
}

// -----------------------------------------------------------------------------

// GetBuffer returns the ring buffer for a symbol (convenience method)
func (mm *MemoryManager) GetBuffer(symbol string) *RingBuffer {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return mm.DataStreams[symbol]
}

// -----------------------------------------------------------------------------

// HasSymbol checks if symbol exists
func (mm *MemoryManager) HasSymbol(symbol string) bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	_, ok := mm.DataStreams[symbol]
	return ok
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with data
func (mm *MemoryManager) SymbolCount() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return len(mm.DataStreams)
}
