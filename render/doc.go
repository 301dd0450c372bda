// Package render encodes typeset draw commands for the gogpu wgpu HAL.
//
// Renderer implements [typeset.DrawTarget] on top of a hal.Device and
// hal.Queue: atlas updates become queue.WriteTexture region writes into
// lazily created page textures, and glyph batches become textured quads
// drawn through a single render pipeline with premultiplied alpha
// blending.
//
// # Integration
//
// A host that already runs gogpu passes its device provider straight
// through and records text into its own render pass:
//
//	r, err := render.NewFromProvider(handle, render.Config{Pages: gpu.PagePlan()})
//	...
//	r.SetSurfaceSize(w, h)
//	err = gpu.Render(layout, r)   // uploads coverage, records batches
//	err = r.RecordDraws(rp)       // caller-owned hal.RenderPassEncoder
//	// submit, wait, then:
//	r.EndFrame()
//
// Standalone use without a surface goes through [Renderer.RenderFrame],
// which encodes a single-pass frame into an internal color texture,
// submits it, and reads the pixels back.
//
// Renderer is not safe for concurrent use; callers serialize frames the
// same way they serialize access to the paired GPURenderer.
package render
