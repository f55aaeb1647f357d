// Package flight coalesces identical in-flight calls and keeps successful
// results for a while.
package flight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Lookup outcomes passed to the observer.
const (
	Hit    = "hit"
	Miss   = "miss"
	Shared = "shared"
)

type Cache[K comparable, V any] struct {
	// finished holds completed results until their deadline.
	finished map[K]entry[V]
	fmu      *sync.RWMutex

	pending map[K]*job[V]
	pmu     *sync.Mutex

	work    func(context.Context, K) (V, error)
	observe func(string)

	// ttl stores the hold duration in nanoseconds.
	// <= 0 means results are not kept once the call returns.
	ttl *atomic.Int64
	now func() time.Time
}

type entry[V any] struct {
	val      V
	deadline time.Time
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewCache[K comparable, V any](work func(context.Context, K) (V, error)) Cache[K, V] {
	var ttl atomic.Int64
	ttl.Store(int64(10 * time.Minute))
	return Cache[K, V]{
		finished: make(map[K]entry[V]),
		fmu:      new(sync.RWMutex),
		pending:  make(map[K]*job[V]),
		pmu:      new(sync.Mutex),
		work:     work,
		observe:  func(string) {},
		ttl:      &ttl,
		now:      time.Now,
	}
}

// Expiry sets how long future results are kept. d <= 0 disables keeping them;
// concurrent identical calls are still shared.
func (p *Cache[K, V]) Expiry(d time.Duration) {
	p.ttl.Store(int64(max(d, 0)))
}

// Observe registers fn to be told whether each Get was a hit, a miss or shared
// an in-flight call.
func (p *Cache[K, V]) Observe(fn func(result string)) {
	p.observe = fn
}

// Get returns the kept result for k, joins an identical call already running,
// or starts one. Failed calls are never kept. The work itself is not cancelled
// when ctx is, so other callers waiting on it still get the result.
func (p *Cache[K, V]) Get(ctx context.Context, k K) (V, error) {
	p.pmu.Lock()

	if v, ok := p.load(k); ok {
		p.pmu.Unlock()
		p.observe(Hit)
		return v, nil
	}

	if j, ok := p.pending[k]; ok {
		p.pmu.Unlock()
		p.observe(Shared)
		return wait(ctx, j)
	}

	j := p.start(ctx, k)
	p.pmu.Unlock()
	p.observe(Miss)
	return wait(ctx, j)
}

// Force ignores any kept result and runs the work again, waiting for a call
// already in flight to finish first.
func (p *Cache[K, V]) Force(ctx context.Context, k K) (V, error) {
	for {
		p.pmu.Lock()
		existing, ok := p.pending[k]
		if !ok {
			break
		}
		p.pmu.Unlock()
		select {
		case <-existing.done:
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	j := p.start(ctx, k)
	p.pmu.Unlock()
	p.observe(Miss)
	return wait(ctx, j)
}

// Len reports the number of kept results, expired ones included until they are swept.
func (p *Cache[K, V]) Len() int {
	p.fmu.RLock()
	defer p.fmu.RUnlock()
	return len(p.finished)
}

// --- internals ---

// start must be called with pmu held.
func (p *Cache[K, V]) start(ctx context.Context, k K) *job[V] {
	j := &job[V]{done: make(chan struct{})}
	p.pending[k] = j
	go func() {
		j.val, j.err = p.work(context.WithoutCancel(ctx), k)
		if j.err == nil {
			p.store(k, j.val)
		}
		p.pmu.Lock()
		close(j.done)
		delete(p.pending, k)
		p.pmu.Unlock()
	}()
	return j
}

func wait[V any](ctx context.Context, j *job[V]) (V, error) {
	select {
	case <-j.done:
		return j.val, j.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (p *Cache[K, V]) load(k K) (V, bool) {
	p.fmu.RLock()
	e, ok := p.finished[k]
	p.fmu.RUnlock()
	if ok && p.now().Before(e.deadline) {
		return e.val, true
	}
	if ok {
		p.fmu.Lock()
		if cur, ok := p.finished[k]; ok && cur.deadline.Equal(e.deadline) {
			delete(p.finished, k)
		}
		p.fmu.Unlock()
	}
	var zero V
	return zero, false
}

func (p *Cache[K, V]) store(k K, val V) {
	d := time.Duration(p.ttl.Load())
	if d <= 0 {
		return
	}
	now := p.now()

	p.fmu.Lock()
	defer p.fmu.Unlock()
	for key, e := range p.finished {
		if !now.Before(e.deadline) {
			delete(p.finished, key)
		}
	}
	p.finished[k] = entry[V]{val: val, deadline: now.Add(d)}
}
