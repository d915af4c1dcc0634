package system

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/zeusync/collision/internal/core/observability/log"
	"github.com/zeusync/collision/internal/core/systems"
)

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
)

// ManagerMetrics provides system manager statistics
type ManagerMetrics struct {
	RegisteredSystems uint32
	Frames            uint64
	TotalUpdateTime   time.Duration
	AverageUpdateTime time.Duration
	SystemErrorCount  map[string]uint32
	LastUpdateTime    time.Time
}

type entry struct {
	system  systems.System
	metrics systems.Metrics
	order   int
}

// Manager runs registered systems once per frame in priority order; systems
// of equal priority run in registration order.
type Manager struct {
	mu      sync.RWMutex
	log     log.Log
	entries []*entry
	byName  map[string]*entry
	seq     int
	metrics ManagerMetrics
	onError []func(string, error)
}

func NewManager(l log.Log) *Manager {
	if l == nil {
		l = log.NewNop()
	}
	return &Manager{
		log:     l,
		byName:  make(map[string]*entry),
		metrics: ManagerMetrics{SystemErrorCount: make(map[string]uint32)},
	}
}

func (m *Manager) RegisterSystem(s systems.System) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[s.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, s.Name())
	}
	e := &entry{system: s, order: m.seq}
	m.seq++
	m.byName[s.Name()] = e
	m.entries = append(m.entries, e)
	slices.SortStableFunc(m.entries, func(a, b *entry) int {
		if c := cmp.Compare(b.system.Priority(), a.system.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	m.metrics.RegisteredSystems = uint32(len(m.entries))
	m.log.Debug("system registered", log.String("system", s.Name()), log.Int("priority", int(s.Priority())))
	return nil
}

func (m *Manager) UnregisterSystem(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(m.byName, name)
	m.entries = slices.DeleteFunc(m.entries, func(x *entry) bool { return x == e })
	m.metrics.RegisteredSystems = uint32(len(m.entries))
	return nil
}

func (m *Manager) GetSystem(name string) (systems.System, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.system, true
}

func (m *Manager) HasSystem(name string) bool {
	_, ok := m.GetSystem(name)
	return ok
}

// GetExecutionOrder returns system names in the order Update runs them.
func (m *Manager) GetExecutionOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.system.Name()
	}
	return names
}

// OnSystemError registers a callback invoked for every failed system update.
// Callbacks run under the manager lock and must not call back into it.
func (m *Manager) OnSystemError(fn func(string, error)) {
	m.mu.Lock()
	m.onError = append(m.onError, fn)
	m.mu.Unlock()
}

// Update runs every system once. A failing system does not stop the others;
// all errors are joined.
func (m *Manager) Update(deltaTime float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	var errs []error
	for _, e := range m.entries {
		began := time.Now()
		err := e.system.Update(deltaTime)
		e.metrics.Observe(time.Since(began), err)
		if err == nil {
			continue
		}
		name := e.system.Name()
		m.metrics.SystemErrorCount[name]++
		for _, fn := range m.onError {
			fn(name, err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}

	m.metrics.Frames++
	m.metrics.TotalUpdateTime += time.Since(start)
	m.metrics.AverageUpdateTime = m.metrics.TotalUpdateTime / time.Duration(m.metrics.Frames)
	m.metrics.LastUpdateTime = time.Now()
	return errors.Join(errs...)
}

// Run calls Update with a fixed frame time until frames have run, the
// context is done, or an update fails.
func (m *Manager) Run(ctx context.Context, frames int, deltaTime float64) error {
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Update(deltaTime); err != nil {
			m.log.Error("frame failed", log.Int("frame", i), log.Error(err))
			return err
		}
	}
	return nil
}

func (m *Manager) GetMetrics() ManagerMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.metrics
	out.SystemErrorCount = make(map[string]uint32, len(m.metrics.SystemErrorCount))
	for k, v := range m.metrics.SystemErrorCount {
		out.SystemErrorCount[k] = v
	}
	return out
}

func (m *Manager) GetSystemMetrics(name string) (systems.Metrics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byName[name]
	if !ok {
		return systems.Metrics{}, false
	}
	return e.metrics, true
}
