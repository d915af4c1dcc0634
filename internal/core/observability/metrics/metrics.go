package metrics

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/collision/internal/core/events/bus"
)

type Counter struct {
	v atomic.Uint64
}

func (c *Counter) Inc()          { c.v.Add(1) }
func (c *Counter) Add(n uint64)  { c.v.Add(n) }
func (c *Counter) Value() uint64 { return c.v.Load() }

// Histogram keeps count, sum and range of observed values.
type Histogram struct {
	mu       sync.Mutex
	count    uint64
	sum      float64
	min, max float64
}

func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		h.min, h.max = v, v
	} else {
		h.min = math.Min(h.min, v)
		h.max = math.Max(h.max, v)
	}
	h.count++
	h.sum += v
}

func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *Histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

func (h *Histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	return h.sum / float64(h.count)
}

func (h *Histogram) Min() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.min
}

func (h *Histogram) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.max
}

// Kind tells counters and histograms apart in an export.
type Kind uint8

const (
	KindCounter Kind = iota + 1
	KindHistogram
)

// Family is one exported metric.
type Family struct {
	Name  string
	Kind  Kind
	Count uint64
	Sum   float64
	Min   float64
	Max   float64
}

// Registry hands out named metrics, creating them on first use.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	histograms map[string]*Histogram
}

func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
	}
}

func (r *Registry) Counter(name string) *Counter {
	return getOrCreate(&r.mu, r.counters, name)
}

func (r *Registry) Histogram(name string) *Histogram {
	return getOrCreate(&r.mu, r.histograms, name)
}

func getOrCreate[T any](mu *sync.RWMutex, m map[string]*T, name string) *T {
	mu.RLock()
	v, ok := m[name]
	mu.RUnlock()
	if ok {
		return v
	}

	mu.Lock()
	defer mu.Unlock()
	if v, ok = m[name]; !ok {
		v = new(T)
		m[name] = v
	}
	return v
}

// Export snapshots every metric, sorted by name.
func (r *Registry) Export() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Family, 0, len(r.counters)+len(r.histograms))
	for name, c := range r.counters {
		v := c.Value()
		out = append(out, Family{Name: name, Kind: KindCounter, Count: v, Sum: float64(v)})
	}
	for name, h := range r.histograms {
		h.mu.Lock()
		out = append(out, Family{Name: name, Kind: KindHistogram, Count: h.count, Sum: h.sum, Min: h.min, Max: h.max})
		h.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b Family) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// BusObserver records bus traffic into a registry: a
// "bus.published.<type>" counter, a "bus.errors.<type>" counter and a
// "bus.delivery_seconds.<type>" histogram per event type.
type BusObserver struct {
	reg *Registry
}

var _ bus.EventBusObserver = (*BusObserver)(nil)

func NewBusObserver(reg *Registry) *BusObserver {
	return &BusObserver{reg: reg}
}

func (o *BusObserver) OnPublish(eventType string, _ bus.Event) {
	o.reg.Counter("bus.published." + eventType).Inc()
}

func (o *BusObserver) OnDelivered(eventType string, _ int, err error, duration time.Duration) {
	if err != nil {
		o.reg.Counter("bus.errors." + eventType).Inc()
	}
	o.reg.Histogram("bus.delivery_seconds." + eventType).Observe(duration.Seconds())
}
