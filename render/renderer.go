package render

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/typeset"
	"github.com/gogpu/typeset/cache"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrNoPages reports a Config without a page plan.
	ErrNoPages = errors.New("render: page plan is empty")

	// ErrUnknownPage reports a draw or upload against a page outside
	// the configured plan.
	ErrUnknownPage = errors.New("render: page outside the configured plan")

	// ErrRegionOutOfBounds reports an atlas update that does not fit
	// its page texture.
	ErrRegionOutOfBounds = errors.New("render: atlas update outside page bounds")

	// ErrNoSurfaceSize reports draws recorded before SetSurfaceSize.
	ErrNoSurfaceSize = errors.New("render: surface size not set")

	// ErrRendererDestroyed reports use after Destroy.
	ErrRendererDestroyed = errors.New("render: renderer destroyed")
)

// Config parameterizes a Renderer.
type Config struct {
	// Pages is the texture page plan, normally the PagePlan of the
	// paired typeset.GPURenderer. Required.
	Pages []cache.PageInfo

	// Format is the color target format draws are encoded for. Zero
	// means the provider's surface format, falling back to BGRA8Unorm.
	Format gputypes.TextureFormat

	// PrecompileSPIRV routes the text shader through naga instead of
	// handing WGSL to the backend.
	PrecompileSPIRV bool
}

// drawGroup is one recorded batch: quads sampling a single texture.
// page is -1 for standalone glyph textures.
type drawGroup struct {
	page  int
	bind  hal.BindGroup
	verts []byte
	quads int
}

// standaloneTexture backs one oversized glyph for the current frame.
type standaloneTexture struct {
	tex  hal.Texture
	view hal.TextureView
	bind hal.BindGroup
}

// Renderer encodes typeset draw commands for a wgpu HAL device. It
// implements [typeset.DrawTarget].
type Renderer struct {
	device hal.Device
	queue  hal.Queue

	plan     []cache.PageInfo
	pipeline *textPipeline
	format   gputypes.TextureFormat

	idxBuf     hal.Buffer
	uniformBuf hal.Buffer

	// Page textures are created lazily on first use, indexed like plan.
	pageTex  []hal.Texture
	pageView []hal.TextureView
	pageBind []hal.BindGroup

	width        uint32
	height       uint32
	uniformDirty bool

	groups    []drawGroup
	frameBufs []hal.Buffer
	oneOffs   []standaloneTexture

	offscreenTex  hal.Texture
	offscreenView hal.TextureView
	offscreenW    uint32
	offscreenH    uint32

	destroyed bool
}

var _ typeset.DrawTarget = (*Renderer)(nil)

// New builds a Renderer on raw HAL objects.
func New(device hal.Device, queue hal.Queue, cfg Config) (*Renderer, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDeviceHandle
	}
	if len(cfg.Pages) == 0 {
		return nil, ErrNoPages
	}
	for i, p := range cfg.Pages {
		if p.TextureSize <= 0 {
			return nil, fmt.Errorf("render: page %d has texture size %d", i, p.TextureSize)
		}
	}
	format := cfg.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	pipeline, err := newTextPipeline(device, format, cfg.PrecompileSPIRV)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		device:   device,
		queue:    queue,
		plan:     slices.Clone(cfg.Pages),
		pipeline: pipeline,
		format:   format,
		pageTex:  make([]hal.Texture, len(cfg.Pages)),
		pageView: make([]hal.TextureView, len(cfg.Pages)),
		pageBind: make([]hal.BindGroup, len(cfg.Pages)),
	}

	idxBuf, err := r.createAndUploadBuffer("typeset_quad_indices",
		buildQuadIndexData(maxQuadsPerDraw),
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: create index buffer: %w", err)
	}
	r.idxBuf = idxBuf

	// The uniform buffer exists from the start so page bind groups can
	// reference it before the first SetSurfaceSize write.
	uniformBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "typeset_viewport",
		Size:  viewportUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	return r, nil
}

// NewFromProvider builds a Renderer from a gogpu device provider. With
// Config.Format unset, the provider's surface format is used.
func NewFromProvider(handle DeviceHandle, cfg Config) (*Renderer, error) {
	if handle == nil {
		return nil, ErrNilDeviceHandle
	}
	device, queue, err := halFrom(handle)
	if err != nil {
		return nil, err
	}
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = handle.SurfaceFormat()
	}
	return New(device, queue, cfg)
}

// SetSurfaceSize records the surface the quads are positioned on. The
// viewport uniform is rewritten on the next RecordDraws.
func (r *Renderer) SetSurfaceSize(width, height int) {
	w := uint32(max(width, 0))
	h := uint32(max(height, 0))
	if w == r.width && h == r.height {
		return
	}
	r.width = w
	r.height = h
	r.uniformDirty = true
}

// ensurePage creates the texture, view, and bind group for a page on
// first use.
func (r *Renderer) ensurePage(page int) error {
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if page < 0 || page >= len(r.plan) {
		return fmt.Errorf("%w: page %d of %d", ErrUnknownPage, page, len(r.plan))
	}
	if r.pageTex[page] != nil {
		return nil
	}

	size := uint32(r.plan[page].TextureSize)
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: fmt.Sprintf("typeset_page_%d", page),
		Size: hal.Extent3D{
			Width:              size,
			Height:             size,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: create page %d texture: %w", page, err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: fmt.Sprintf("typeset_page_%d_view", page),
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return fmt.Errorf("render: create page %d view: %w", page, err)
	}
	bind, err := r.createBindGroup(fmt.Sprintf("typeset_page_%d_bind", page), view)
	if err != nil {
		r.device.DestroyTextureView(view)
		r.device.DestroyTexture(tex)
		return err
	}

	r.pageTex[page] = tex
	r.pageView[page] = view
	r.pageBind[page] = bind
	slogger().Debug("render: page texture created", "page", page, "size", size)
	return nil
}

// createBindGroup binds the viewport uniform and one texture view.
func (r *Renderer) createBindGroup(label string, view hal.TextureView) (hal.BindGroup, error) {
	bind, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: r.pipeline.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: r.uniformBuf.NativeHandle(),
					Offset: 0,
					Size:   viewportUniformSize,
				},
			},
			{
				Binding: 1,
				Resource: gputypes.TextureViewBinding{
					TextureView: view.NativeHandle(),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render: create bind group %q: %w", label, err)
	}
	return bind, nil
}

// UpdateAtlas writes coverage bitmaps into their page textures. Writes
// go through the queue, so they land before draws recorded afterwards.
func (r *Renderer) UpdateAtlas(updates []typeset.AtlasUpdate) error {
	for _, u := range updates {
		if u.Width <= 0 || u.Height <= 0 {
			continue
		}
		if len(u.Pixels) < u.Width*u.Height {
			return fmt.Errorf("render: atlas update %dx%d with %d pixel bytes",
				u.Width, u.Height, len(u.Pixels))
		}
		if err := r.ensurePage(u.Page); err != nil {
			return err
		}
		size := r.plan[u.Page].TextureSize
		if u.X < 0 || u.Y < 0 || u.X+u.Width > size || u.Y+u.Height > size {
			return fmt.Errorf("%w: %dx%d at (%d, %d) on page %d of size %d",
				ErrRegionOutOfBounds, u.Width, u.Height, u.X, u.Y, u.Page, size)
		}
		r.queue.WriteTexture(
			&hal.ImageCopyTexture{
				Texture:  r.pageTex[u.Page],
				MipLevel: 0,
				Origin:   hal.Origin3D{X: uint32(u.X), Y: uint32(u.Y)},
			},
			coverageToRGBA(u.Pixels[:u.Width*u.Height]),
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(u.Width) * 4,
				RowsPerImage: uint32(u.Height),
			},
			&hal.Extent3D{
				Width:              uint32(u.Width),
				Height:             uint32(u.Height),
				DepthOrArrayLayers: 1,
			},
		)
	}
	return nil
}

// DrawInstances records a batch of quads sampling one page.
func (r *Renderer) DrawInstances(page int, instances []typeset.DrawInstance) error {
	if len(instances) == 0 {
		return nil
	}
	if err := r.ensurePage(page); err != nil {
		return err
	}
	r.groups = append(r.groups, drawGroup{
		page:  page,
		verts: buildQuadVertexData(instances),
		quads: len(instances),
	})
	return nil
}

// DrawStandalone records one oversized glyph backed by its own texture.
// The texture lives until EndFrame.
func (r *Renderer) DrawStandalone(g typeset.StandaloneGlyph) error {
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if g.Width <= 0 || g.Height <= 0 {
		return nil
	}
	if len(g.Pixels) < g.Width*g.Height {
		return fmt.Errorf("render: standalone glyph %dx%d with %d pixel bytes",
			g.Width, g.Height, len(g.Pixels))
	}

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: "typeset_standalone",
		Size: hal.Extent3D{
			Width:              uint32(g.Width),
			Height:             uint32(g.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("render: create standalone texture: %w", err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "typeset_standalone_view",
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return fmt.Errorf("render: create standalone view: %w", err)
	}
	bind, err := r.createBindGroup("typeset_standalone_bind", view)
	if err != nil {
		r.device.DestroyTextureView(view)
		r.device.DestroyTexture(tex)
		return err
	}
	r.oneOffs = append(r.oneOffs, standaloneTexture{tex: tex, view: view, bind: bind})

	r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		coverageToRGBA(g.Pixels[:g.Width*g.Height]),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(g.Width) * 4,
			RowsPerImage: uint32(g.Height),
		},
		&hal.Extent3D{
			Width:              uint32(g.Width),
			Height:             uint32(g.Height),
			DepthOrArrayLayers: 1,
		},
	)

	in := typeset.DrawInstance{
		X0: g.X0, Y0: g.Y0, X1: g.X1, Y1: g.Y1,
		U0: 0, V0: 0, U1: float32(g.Width), V1: float32(g.Height),
		Color: g.Color,
	}
	r.groups = append(r.groups, drawGroup{
		page:  -1,
		bind:  bind,
		verts: buildQuadVertexData([]typeset.DrawInstance{in}),
		quads: 1,
	})
	return nil
}

// RecordDraws replays the recorded groups into a render pass the caller
// has begun. The caller ends the pass, submits, waits, and then calls
// EndFrame to release the frame's buffers.
func (r *Renderer) RecordDraws(rp hal.RenderPassEncoder) error {
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if len(r.groups) == 0 {
		return nil
	}
	if r.width == 0 || r.height == 0 {
		return ErrNoSurfaceSize
	}
	if r.uniformDirty {
		r.queue.WriteBuffer(r.uniformBuf, 0, makeViewportUniform(r.width, r.height))
		r.uniformDirty = false
	}

	total := 0
	for _, g := range r.groups {
		total += len(g.verts)
	}
	verts := make([]byte, 0, total)
	for _, g := range r.groups {
		verts = append(verts, g.verts...)
	}
	vertBuf, err := r.createAndUploadBuffer("typeset_frame_verts", verts,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("render: create vertex buffer: %w", err)
	}
	r.frameBufs = append(r.frameBufs, vertBuf)

	rp.SetPipeline(r.pipeline.pipeline)
	rp.SetIndexBuffer(r.idxBuf, gputypes.IndexFormatUint16, 0)

	offset := uint64(0)
	for _, g := range r.groups {
		bind := g.bind
		if g.page >= 0 {
			bind = r.pageBind[g.page]
		}
		rp.SetBindGroup(0, bind, nil)
		for done := 0; done < g.quads; done += maxQuadsPerDraw {
			chunk := min(g.quads-done, maxQuadsPerDraw)
			rp.SetVertexBuffer(0, vertBuf, offset+uint64(done)*4*textVertexStride)
			rp.DrawIndexed(uint32(chunk)*6, 1, 0, 0, 0)
		}
		offset += uint64(len(g.verts))
	}
	return nil
}

// RenderFrame encodes the recorded draws into an internal color texture,
// submits them, and reads the result back into pix as tightly packed
// RGBA, width*height*4 bytes. It stands alone: no surface or external
// render pass is involved.
func (r *Renderer) RenderFrame(pix []byte, width, height int) error {
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("render: frame size %dx%d", width, height)
	}
	if len(pix) < width*height*4 {
		return fmt.Errorf("render: pixel buffer %d bytes for %dx%d frame",
			len(pix), width, height)
	}
	defer r.EndFrame()

	r.SetSurfaceSize(width, height)
	w := uint32(width)
	h := uint32(height)
	if err := r.ensureOffscreen(w, h); err != nil {
		return err
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "typeset_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("render: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("typeset_frame"); err != nil {
		return fmt.Errorf("render: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "typeset_text_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       r.offscreenView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
	})
	if err := r.RecordDraws(rp); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return err
	}
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: r.offscreenTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		},
	})

	// Buffer rows are aligned to the 256-byte copy pitch.
	rowBytes := w * 4
	pitch := (rowBytes + 255) &^ 255
	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "typeset_staging",
		Size:  uint64(pitch) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("render: create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.CopyTextureToBuffer(r.offscreenTex, staging, []hal.BufferTextureCopy{
		{
			BufferLayout: hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  pitch,
				RowsPerImage: h,
			},
			TextureBase: hal.ImageCopyTexture{
				Texture:  r.offscreenTex,
				MipLevel: 0,
			},
			Size: hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		},
	})

	encoder.TransitionTextures([]hal.TextureBarrier{
		{
			Texture: r.offscreenTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("render: end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("render: create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("render: submit frame: %w", err)
	}
	ok, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return fmt.Errorf("render: wait for GPU: ok=%v err=%w", ok, err)
	}

	readback := make([]byte, int(pitch)*height)
	if err := r.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("render: read staging buffer: %w", err)
	}
	copyTightRows(pix, readback, int(rowBytes), int(pitch), height)
	if r.format == gputypes.TextureFormatBGRA8Unorm {
		swapBGRA(pix[:width*height*4])
	}
	return nil
}

// ensureOffscreen keeps the internal color target sized to the frame.
func (r *Renderer) ensureOffscreen(w, h uint32) error {
	if r.offscreenTex != nil && r.offscreenW == w && r.offscreenH == h {
		return nil
	}
	r.destroyOffscreen()

	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label: "typeset_offscreen",
		Size: hal.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("render: create offscreen texture: %w", err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "typeset_offscreen_view",
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return fmt.Errorf("render: create offscreen view: %w", err)
	}
	r.offscreenTex = tex
	r.offscreenView = view
	r.offscreenW = w
	r.offscreenH = h
	return nil
}

func (r *Renderer) destroyOffscreen() {
	if r.offscreenView != nil {
		r.device.DestroyTextureView(r.offscreenView)
		r.offscreenView = nil
	}
	if r.offscreenTex != nil {
		r.device.DestroyTexture(r.offscreenTex)
		r.offscreenTex = nil
	}
	r.offscreenW = 0
	r.offscreenH = 0
}

// EndFrame releases the frame's vertex buffers and standalone glyph
// textures and clears the recorded groups. Call it only after the
// submitted GPU work for the frame has completed.
func (r *Renderer) EndFrame() {
	for _, b := range r.frameBufs {
		r.device.DestroyBuffer(b)
	}
	r.frameBufs = r.frameBufs[:0]
	for _, s := range r.oneOffs {
		r.device.DestroyBindGroup(s.bind)
		r.device.DestroyTextureView(s.view)
		r.device.DestroyTexture(s.tex)
	}
	r.oneOffs = r.oneOffs[:0]
	r.groups = r.groups[:0]
}

// Destroy releases every GPU object the renderer owns. The renderer is
// unusable afterwards; Destroy is idempotent.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.EndFrame()
	r.destroyOffscreen()
	for i := range r.plan {
		if r.pageBind[i] != nil {
			r.device.DestroyBindGroup(r.pageBind[i])
			r.pageBind[i] = nil
		}
		if r.pageView[i] != nil {
			r.device.DestroyTextureView(r.pageView[i])
			r.pageView[i] = nil
		}
		if r.pageTex[i] != nil {
			r.device.DestroyTexture(r.pageTex[i])
			r.pageTex[i] = nil
		}
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.idxBuf != nil {
		r.device.DestroyBuffer(r.idxBuf)
		r.idxBuf = nil
	}
	if r.pipeline != nil {
		r.pipeline.destroy()
		r.pipeline = nil
	}
	r.destroyed = true
}

// createAndUploadBuffer creates a buffer and writes data into it.
func (r *Renderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
