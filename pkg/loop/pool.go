// ABOUTME: Registry of live sample buffers and the current-buffer slot
// ABOUTME: Publishes buffers atomically and reclaims those nobody holds
package loop

import (
	"log"
	"sync"
	"sync/atomic"
)

// Attempts CurrentSnapshot makes before giving up and returning silence
const snapshotAttempts = 3

// Pool owns the current-buffer slot read by the render path and lists
// every buffer that has been published but not yet reclaimed.
//
// The slot is only touched with atomic operations. The listing is guarded
// by mu, which the render path never takes.
type Pool struct {
	current     atomic.Pointer[SampleBuffer]
	reclaimRefs int32
	debug       bool

	mu      sync.Mutex
	buffers []*SampleBuffer
}

// NewPool creates an empty pool
func NewPool(cfg Config) *Pool {
	cfg = cfg.withDefaults()
	return &Pool{
		reclaimRefs: cfg.ReclaimRefs,
		debug:       cfg.Debug,
	}
}

// Publish lists buf and makes it current. The caller keeps its own
// reference and must release it afterwards.
func (p *Pool) Publish(buf *SampleBuffer) {
	buf.refs.Add(2) // listing + slot

	p.mu.Lock()
	p.buffers = append(p.buffers, buf)
	p.mu.Unlock()

	if old := p.current.Swap(buf); old != nil {
		old.Release()
	}

	if p.debug {
		log.Printf("Published buffer %s (%s)", buf.name, buf.id)
	}
}

// CurrentSnapshot returns a retained reference to the current buffer or
// nil. The caller must Release it. Safe to call from the render callback.
func (p *Pool) CurrentSnapshot() *SampleBuffer {
	for i := 0; i < snapshotAttempts; i++ {
		buf := p.current.Load()
		if buf == nil {
			return nil
		}
		if buf.Retain() {
			return buf
		}
		// Reclaimed between load and retain; the slot has moved on
	}
	return nil
}

// Clear empties the slot. The buffer stays listed until reclaimed.
func (p *Pool) Clear() {
	if old := p.current.Swap(nil); old != nil {
		old.Release()
	}
}

// Reclaim frees every listed buffer held only by the listing and returns
// how many were freed
func (p *Pool) Reclaim() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.buffers[:0]
	freed := 0
	for _, buf := range p.buffers {
		if buf.tryReclaim(p.reclaimRefs) {
			freed++
			continue
		}
		kept = append(kept, buf)
	}
	for i := len(kept); i < len(p.buffers); i++ {
		p.buffers[i] = nil
	}
	p.buffers = kept

	if p.debug && freed > 0 {
		log.Printf("Reclaimed %d buffers, %d live", freed, len(kept))
	}
	return freed
}

// Live returns the number of listed buffers
func (p *Pool) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.buffers)
}

// Current describes the published buffer, if any
func (p *Pool) Current() (BufferInfo, bool) {
	buf := p.current.Load()
	if buf == nil {
		return BufferInfo{}, false
	}
	return buf.Info(), true
}

// Close empties the slot and drops the listing reference of every buffer.
// Call it after the render path has stopped.
func (p *Pool) Close() {
	p.Clear()

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, buf := range p.buffers {
		buf.Release()
	}
	p.buffers = nil
}
