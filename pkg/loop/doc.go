// ABOUTME: Real-time safe sample looping package
// ABOUTME: Hands decoded buffers from a background loader to the audio callback
// Package loop plays a short sample on repeat while a background worker
// loads its replacement.
//
// The pieces, leaves first:
//
//   - SampleBuffer: decoded channels plus an atomic cursor and reference count
//   - Pool: the current-buffer slot and the list of live buffers
//   - Loader: a goroutine that decodes requests and publishes the result
//   - Engine: the render callback body
//   - GainRamp: per-sample linear gain interpolation
//
// Engine.RenderBlock never locks, allocates, or blocks. It takes one
// snapshot of the current buffer per call, so a publish is only seen on the
// next call. Buffers are freed by Pool.Reclaim on the loader goroutine.
//
// Example:
//
//	cfg := loop.DefaultConfig()
//	pool := loop.NewPool(cfg)
//	engine := loop.NewEngine(pool, 2, 48000, cfg)
//	loader := loop.NewLoader(pool, decode.DefaultRegistry(), cfg)
//	loader.Start()
//	loader.RequestLoad(loop.NewLoadRequest("kick.wav"))
//	// audio callback: engine.RenderBlock(out, frames)
//	if err := loader.Stop(); err != nil {
//	    log.Fatalf("shutdown: %v", err)
//	}
package loop
