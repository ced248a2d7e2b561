package membuf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/membuf/internal/alloc"
	"github.com/hupe1980/membuf/internal/resource"
)

// Pool is a fixed-capacity table of resizable byte buffers addressed by
// small integer ids.
//
// Slots [0, ActiveCount()) hold a resource; the rest are unallocated.
// Resources are created at the low end and destroyed from the high end, so
// the allocated slots always form a contiguous prefix.
//
// Structural changes (SetActiveCount, Close) hold the pool's structural lock
// exclusively; Open and count queries hold it shared. Each Resource has its
// own reader/writer lock, so I/O on different ids never contends.
type Pool struct {
	opts    options
	rc      *resource.Controller
	alloc   *alloc.Budgeted
	logger  *Logger
	metrics MetricsCollector

	mu     sync.RWMutex // structural lock
	slots  []*Resource
	active int
	closed bool

	handles *handleTable
	io      *IOPort
	config  *ConfigPort
}

// New creates a pool and grows it to the initial count.
//
// Example:
//
//	pool, err := membuf.New(
//	    membuf.WithMaxResources(4),
//	    membuf.WithDefaultSize(256),
//	    membuf.WithInitialCount(1),
//	)
//	if err != nil { ... }
//	defer pool.Close()
func New(optFns ...Option) (*Pool, error) {
	o := applyOptions(optFns)
	if err := o.validate(); err != nil {
		return nil, err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		IOLimitBytesPerSec: o.ioLimit,
	})

	var backend alloc.Allocator
	switch o.backend {
	case BackendMmap:
		backend = alloc.NewMapped()
	default:
		backend = alloc.NewHeap()
	}
	if o.allocator != nil {
		backend = o.allocator
	}

	p := &Pool{
		opts:    o,
		rc:      rc,
		alloc:   alloc.NewBudgeted(backend, rc),
		logger:  o.logger,
		metrics: o.metricsCollector,
		slots:   make([]*Resource, o.maxResources),
		handles: newHandleTable(o.maxOpenHandles),
	}
	for id := range p.slots {
		p.slots[id] = &Resource{id: id, pool: p}
	}
	p.io = &IOPort{pool: p}
	p.config = &ConfigPort{pool: p}

	if err := p.SetActiveCount(o.initialCount); err != nil {
		_ = p.Close()
		return nil, err
	}

	return p, nil
}

// MaxResources returns the slot capacity.
func (p *Pool) MaxResources() int { return len(p.slots) }

// DefaultSize returns the size given to newly created resources.
func (p *Pool) DefaultSize() int { return p.opts.defaultSize }

// Backend returns the buffer storage backend.
func (p *Pool) Backend() Backend { return p.opts.backend }

// IOPort returns the byte-stream surface of the pool.
func (p *Pool) IOPort() *IOPort { return p.io }

// ConfigPort returns the textual configuration surface of the pool.
func (p *Pool) ConfigPort() *ConfigPort { return p.config }

// ActiveCount returns the number of allocated resources.
func (p *Pool) ActiveCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.active
}

// Resource returns the slot with the given id, allocated or not.
func (p *Pool) Resource(id int) (*Resource, error) {
	if id < 0 || id >= len(p.slots) {
		return nil, &RangeError{Name: "resource", Value: id, Min: 0, Max: len(p.slots) - 1}
	}
	return p.slots[id], nil
}

// SetActiveCount grows or shrinks the pool until target resources exist.
//
// Growth creates resources in ascending id order and stops at the first
// failure without rolling back the resources already created; the returned
// *GrowthError carries the count that was reached, which ActiveCount also
// reports afterwards. Shrinking destroys resources in descending id order
// and cannot fail. Calling it with the current count does nothing.
func (p *Pool) SetActiveCount(target int) (err error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	from := p.active
	defer func() {
		p.metrics.RecordActiveCount(p.active, time.Since(start), err)
		p.logger.LogActiveCount(context.Background(), from, target, p.active, err)
	}()

	if p.closed {
		return ErrClosed
	}
	if target < 0 || target > len(p.slots) {
		return &RangeError{Name: "count", Value: target, Min: 0, Max: len(p.slots)}
	}

	for p.active != target {
		if p.active < target {
			if err := p.createResource(p.active); err != nil {
				return &GrowthError{Target: target, Active: p.active, cause: err}
			}
			p.active++
		} else {
			p.active--
			_ = p.destroyResource(p.active)
		}
	}

	return nil
}

// createResource allocates slot id with the default size. The caller holds
// the structural lock exclusively and id == p.active.
func (p *Pool) createResource(id int) error {
	size := p.opts.defaultSize
	gen, err := p.slots[id].create(size)
	p.logger.LogCreate(context.Background(), id, size, gen, err)
	return err
}

// destroyResource releases slot id if it is allocated. The caller holds the
// structural lock exclusively.
func (p *Pool) destroyResource(id int) error {
	destroyed, gen, err := p.slots[id].destroy()
	if err != nil {
		p.logger.WithResource(id).Error("releasing buffer failed", "error", err)
	}
	if destroyed {
		p.logger.LogDestroy(context.Background(), id, gen)
	}
	return err
}

// Open returns a handle on resource id with its cursor at 0.
//
// The handle records the slot's generation; once the resource is destroyed
// every I/O through the handle fails with ErrStaleHandle, even after a new
// resource takes the same id.
func (p *Pool) Open(id int) (h *Handle, err error) {
	defer func() {
		p.metrics.RecordOpen(id, err)
		if h != nil {
			p.logger.LogOpen(context.Background(), id, h.serial, h.gen, nil)
		} else {
			p.logger.LogOpen(context.Background(), id, 0, 0, err)
		}
	}()

	r, err := p.Resource(id)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	gen, err := r.snapshot()
	if err != nil {
		return nil, err
	}

	serial, err := p.handles.register()
	if err != nil {
		return nil, err
	}

	return &Handle{pool: p, res: r, serial: serial, gen: gen}, nil
}

// ResourceStats describes one slot.
type ResourceStats struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Size       int    `json:"size"`
	Generation uint64 `json:"generation"`
}

// Stats is a point-in-time snapshot of a pool.
type Stats struct {
	ActiveCount    int             `json:"active_count"`
	MaxResources   int             `json:"max_resources"`
	DefaultSize    int             `json:"default_size"`
	Backend        string          `json:"backend"`
	OpenHandles    int             `json:"open_handles"`
	BytesAllocated int64           `json:"bytes_allocated"`
	MemoryLimit    int64           `json:"memory_limit"`
	Resources      []ResourceStats `json:"resources"`
}

// Stats returns a snapshot of the pool. Per-slot values are read one slot at
// a time and may interleave with concurrent resizes.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Stats{
		ActiveCount:    p.active,
		MaxResources:   len(p.slots),
		DefaultSize:    p.opts.defaultSize,
		Backend:        p.opts.backend.String(),
		OpenHandles:    p.handles.count(),
		BytesAllocated: p.alloc.Usage(),
		MemoryLimit:    p.rc.MemoryLimit(),
		Resources:      make([]ResourceStats, 0, len(p.slots)),
	}
	for _, r := range p.slots {
		s.Resources = append(s.Resources, ResourceStats{
			ID:         r.id,
			Name:       r.Name(),
			Size:       r.Size(),
			Generation: r.Generation(),
		})
	}
	return s
}

func (p *Pool) String() string {
	return fmt.Sprintf("membuf.Pool{active: %d, max: %d, default_size: %d}",
		p.ActiveCount(), len(p.slots), p.opts.defaultSize)
}
