// ABOUTME: Tests for the buffer pool
// ABOUTME: Covers publish, snapshots, clearing and reclamation of stale buffers
package loop

import "testing"

func TestNewPool(t *testing.T) {
	p := NewPool(Config{})
	if p == nil {
		t.Fatal("expected pool to be created")
	}
	if p.Live() != 0 {
		t.Errorf("expected empty pool, got %d live", p.Live())
	}
	if p.CurrentSnapshot() != nil {
		t.Error("expected nil snapshot from empty pool")
	}
	if _, ok := p.Current(); ok {
		t.Error("expected no current buffer")
	}
}

func TestPoolPublish(t *testing.T) {
	p := NewPool(Config{})
	buf := publish(t, p, "a.wav", newDecoded(1, 16, 48000))

	// listing + slot
	if buf.Refs() != 2 {
		t.Errorf("expected 2 references after publish, got %d", buf.Refs())
	}

	snap := p.CurrentSnapshot()
	if snap != buf {
		t.Fatal("snapshot is not the published buffer")
	}
	if buf.Refs() != 3 {
		t.Errorf("expected 3 references while snapshotted, got %d", buf.Refs())
	}
	snap.Release()

	info, ok := p.Current()
	if !ok || info.Name != "a.wav" || info.Frames != 16 {
		t.Errorf("unexpected current info %+v", info)
	}
	if p.Live() != 1 {
		t.Errorf("expected 1 live buffer, got %d", p.Live())
	}
}

func TestPoolReclaimAfterFreshSnapshot(t *testing.T) {
	p := NewPool(Config{})
	b1 := publish(t, p, "b1", newDecoded(1, 16, 48000))

	// Render callback holds B1 while the loader publishes B2
	held := p.CurrentSnapshot()
	b2 := publish(t, p, "b2", newDecoded(1, 16, 48000))

	if freed := p.Reclaim(); freed != 0 {
		t.Fatalf("reclaimed %d buffers while B1 was snapshotted", freed)
	}
	if b1.Freed() {
		t.Fatal("B1 freed while still held by the render path")
	}

	held.Release()

	fresh := p.CurrentSnapshot()
	if fresh != b2 {
		t.Fatal("fresh snapshot should see B2")
	}
	fresh.Release()

	if freed := p.Reclaim(); freed != 1 {
		t.Errorf("expected 1 buffer reclaimed, got %d", freed)
	}
	if !b1.Freed() {
		t.Error("expected B1 to be freed")
	}
	if b2.Freed() {
		t.Error("current buffer must not be freed")
	}
	if p.Live() != 1 {
		t.Errorf("expected 1 live buffer, got %d", p.Live())
	}
}

func TestPoolReclaimKeepsCurrent(t *testing.T) {
	p := NewPool(Config{})
	buf := publish(t, p, "only", newDecoded(2, 8, 48000))

	for i := 0; i < 3; i++ {
		if freed := p.Reclaim(); freed != 0 {
			t.Fatalf("pass %d reclaimed the current buffer", i)
		}
	}
	if buf.Freed() {
		t.Error("current buffer freed")
	}
}

func TestPoolReclaimManyGenerations(t *testing.T) {
	p := NewPool(Config{})

	var bufs []*SampleBuffer
	for i := 0; i < 5; i++ {
		bufs = append(bufs, publish(t, p, "gen", newDecoded(1, 4, 48000)))
	}

	if freed := p.Reclaim(); freed != 4 {
		t.Errorf("expected 4 stale buffers reclaimed, got %d", freed)
	}
	for i, buf := range bufs[:4] {
		if !buf.Freed() {
			t.Errorf("generation %d not freed", i)
		}
	}
	if bufs[4].Freed() {
		t.Error("latest generation freed")
	}
}

func TestPoolClear(t *testing.T) {
	p := NewPool(Config{})
	buf := publish(t, p, "a", newDecoded(1, 4, 48000))

	p.Clear()
	if p.CurrentSnapshot() != nil {
		t.Error("expected nil snapshot after clear")
	}
	if _, ok := p.Current(); ok {
		t.Error("expected no current buffer after clear")
	}

	if freed := p.Reclaim(); freed != 1 {
		t.Errorf("expected cleared buffer to be reclaimed, got %d", freed)
	}
	if !buf.Freed() {
		t.Error("expected cleared buffer to be freed")
	}

	// Clearing an empty slot is a no-op
	p.Clear()
}

func TestPoolSnapshotSkipsReclaimedBuffer(t *testing.T) {
	p := NewPool(Config{})
	buf := NewSampleBuffer("stale", newDecoded(1, 4, 48000))
	buf.tryReclaim(1)

	p.current.Store(buf)
	if snap := p.CurrentSnapshot(); snap != nil {
		t.Error("snapshot returned a reclaimed buffer")
	}
}

func TestPoolClose(t *testing.T) {
	p := NewPool(Config{})
	b1 := publish(t, p, "b1", newDecoded(1, 4, 48000))
	b2 := publish(t, p, "b2", newDecoded(1, 4, 48000))

	p.Close()

	if !b1.Freed() || !b2.Freed() {
		t.Error("expected close to free every buffer")
	}
	if p.Live() != 0 {
		t.Errorf("expected no live buffers, got %d", p.Live())
	}
}
