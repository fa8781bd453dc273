package gl

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ra"
	"github.com/gogpu/ra/backend"
)

// glBackend registers the OpenGL backend under backend.BackendGL.
type glBackend struct{}

func (glBackend) Name() string { return backend.BackendGL }

func (glBackend) New(hostContext any) (ra.Device, error) {
	f, ok := hostContext.(*Functions)
	if !ok {
		return nil, backend.ErrBadContext
	}
	return New(f)
}

func init() {
	backend.Register(backend.BackendGL, glBackend{})
}

// device implements ra.Device on an OpenGL or OpenGL ES context.
type device struct {
	gl         *Functions
	caps       ra.Caps
	glsl       ra.GLSLInfo
	formats    []*ra.Format
	maxTexSize int
	depth16    int
	canRender  bool
}

// New creates a device from the host's GL entry-point table. Contexts
// below desktop GL 2.1 or ES 2.0 are rejected with ra.ErrMinimumVersion.
func New(f *Functions) (ra.Device, error) {
	if f == nil {
		return nil, backend.ErrBadContext
	}
	if f.ES == 0 && f.Version < 210 {
		return nil, fmt.Errorf("OpenGL %d.%d: %w", f.Version/100, f.Version/10%10, ra.ErrMinimumVersion)
	}
	if f.ES != 0 && f.ES < 200 {
		return nil, fmt.Errorf("OpenGL ES %d.%d: %w", f.ES/100, f.ES/10%10, ra.ErrMinimumVersion)
	}

	d := &device{
		gl:   f,
		glsl: ra.GLSLInfo{Version: f.GLSLVersion, ES: f.ES != 0},
	}
	d.canRender = f.GenFramebuffer != nil && f.FramebufferTexture2D != nil &&
		f.CheckFramebufferStatus != nil
	d.depth16 = determine16BitDepth(f)
	d.formats = buildFormats(f, d.depth16, d.canRender)
	d.maxTexSize = f.GetIntegerv(MAX_TEXTURE_SIZE)

	if f.ES == 0 && f.TexImage1D != nil {
		d.caps |= ra.CapTex1D
	}
	if (f.Version >= 210 || f.ES >= 300) && f.TexImage3D != nil {
		d.caps |= ra.CapTex3D
	}
	if f.BlitFramebuffer != nil && d.canRender {
		d.caps |= ra.CapBlit
	}
	if f.DispatchCompute != nil && f.MemoryBarrier != nil &&
		f.BindImageTexture != nil && f.BindBufferBase != nil &&
		f.GLSLVersion >= 430 {
		d.caps |= ra.CapCompute
	}
	if f.Version >= 440 && f.BufferStorage != nil && f.MapBufferRange != nil &&
		f.UnmapBuffer != nil && f.FenceSync != nil && f.ClientWaitSync != nil &&
		f.DeleteSync != nil && f.TexSubImage2DOffset != nil {
		d.caps |= ra.CapMappedBuffers
	}
	if f.GLSLVersion >= 430 {
		d.caps |= ra.CapNestedArray
	}

	// Dithering of >8 bit content to the framebuffer depth is never
	// wanted; output dithering is the renderer's job.
	f.Disable(DITHER)

	ra.Logger().Info("gl device created",
		"version", f.Version,
		"es", f.ES,
		"glsl", f.GLSLVersion,
		"caps", uint32(d.caps),
		"formats", len(d.formats),
		"maxTextureSize", d.maxTexSize,
		"depth16", d.depth16,
	)
	return d, nil
}

func (d *device) Destroy()              {}
func (d *device) Caps() ra.Caps         { return d.caps }
func (d *device) GLSL() ra.GLSLInfo     { return d.glsl }
func (d *device) Formats() []*ra.Format { return d.formats }
func (d *device) MaxTextureSize() int   { return d.maxTexSize }

// glTex is the backend data behind ra.Tex.Priv.
type glTex struct {
	target  uint32
	texture uint32
	fbo     uint32

	// owned is false for wrapped foreign objects, which are never
	// deleted by TexDestroy.
	owned bool
}

// texTarget maps texture params to the GL binding target.
func (d *device) texTarget(params *ra.TexParams) (uint32, error) {
	switch {
	case params.NonNormalized:
		if params.Dimensions != 2 || d.gl.ES != 0 {
			return 0, ra.ErrUnsupported
		}
		return TEXTURE_RECTANGLE, nil
	case params.ExternalOES:
		if params.Dimensions != 2 || d.gl.ES == 0 {
			return 0, ra.ErrUnsupported
		}
		return TEXTURE_EXTERNAL_OES, nil
	}
	switch params.Dimensions {
	case 1:
		if d.caps&ra.CapTex1D == 0 {
			return 0, ra.ErrUnsupported
		}
		return TEXTURE_1D, nil
	case 2:
		return TEXTURE_2D, nil
	case 3:
		if d.caps&ra.CapTex3D == 0 {
			return 0, ra.ErrUnsupported
		}
		return TEXTURE_3D, nil
	}
	return 0, fmt.Errorf("%d dimensions: %w", params.Dimensions, ra.ErrUnsupported)
}

func (d *device) TexCreate(params *ra.TexParams) (*ra.Tex, error) {
	gl := d.gl
	fmtp, ok := params.Format.Priv.(*texFormat)
	if !ok {
		return nil, ra.ErrBadFormat
	}
	if params.RenderDst && !params.Format.Renderable {
		ra.Logger().Error("render target requested with non-renderable format",
			"format", params.Format.Name)
		return nil, ra.ErrBadFormat
	}
	target, err := d.texTarget(params)
	if err != nil {
		return nil, err
	}

	tex := &ra.Tex{Params: *params}
	tex.Params.InitialData = nil
	priv := &glTex{target: target, owned: true}
	tex.Priv = priv

	priv.texture = gl.GenTexture()
	gl.BindTexture(target, priv.texture)

	gl.PixelStorei(UNPACK_ALIGNMENT, 1)
	switch params.Dimensions {
	case 1:
		gl.TexImage1D(target, fmtp.internalFormat, params.W,
			fmtp.format, fmtp.typ, params.InitialData)
	case 2:
		gl.TexImage2D(target, fmtp.internalFormat, params.W, params.H,
			fmtp.format, fmtp.typ, params.InitialData)
	case 3:
		gl.TexImage3D(target, fmtp.internalFormat, params.W, params.H, params.D,
			fmtp.format, fmtp.typ, params.InitialData)
	}

	filter := NEAREST
	if params.SrcLinear && params.Format.LinearFilter {
		filter = LINEAR
	}
	wrap := CLAMP_TO_EDGE
	if params.SrcRepeat {
		wrap = REPEAT
	}
	gl.TexParameteri(target, TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(target, TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(target, TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(target, TEXTURE_WRAP_T, wrap)
	if params.Dimensions == 3 {
		gl.TexParameteri(target, TEXTURE_WRAP_R, wrap)
	}
	gl.BindTexture(target, 0)

	if params.RenderDst {
		if !d.canRender {
			d.TexDestroy(tex)
			return nil, ra.ErrUnsupported
		}
		priv.fbo = gl.GenFramebuffer()
		gl.BindFramebuffer(FRAMEBUFFER, priv.fbo)
		gl.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, priv.target,
			priv.texture, 0)
		status := gl.CheckFramebufferStatus(FRAMEBUFFER)
		gl.BindFramebuffer(FRAMEBUFFER, 0)
		if status != FRAMEBUFFER_COMPLETE {
			ra.Logger().Error("framebuffer incomplete",
				"format", params.Format.Name, "status", status)
			d.TexDestroy(tex)
			return nil, ra.ErrBadFormat
		}
	}
	return tex, nil
}

func (d *device) TexDestroy(tex *ra.Tex) {
	if tex == nil {
		return
	}
	priv := tex.Priv.(*glTex)
	if priv.owned {
		if priv.fbo != 0 {
			d.gl.DeleteFramebuffer(priv.fbo)
		}
		if priv.texture != 0 {
			d.gl.DeleteTexture(priv.texture)
		}
	}
	tex.Priv = nil
}

// rowLengthUsable reports whether GL_UNPACK_ROW_LENGTH works on this
// context (core everywhere except ES 2.0).
func (d *device) rowLengthUsable() bool {
	return d.gl.ES == 0 || d.gl.ES >= 300
}

func (d *device) TexUpload(tex *ra.Tex, src []byte, stride int, region *ra.Rect, buf *ra.MappedBuffer) error {
	gl := d.gl
	priv := tex.Priv.(*glTex)
	fmtp, ok := tex.Params.Format.Priv.(*texFormat)
	if !ok {
		// Wrapped textures can carry a dummy format without a transfer
		// layout; there is no way to upload through one.
		return fmt.Errorf("format %q has no transfer layout: %w",
			tex.Params.Format.Name, ra.ErrBadFormat)
	}
	pixelSize := tex.Params.Format.PixelSize

	if tex.Params.Dimensions != 2 && region != nil {
		return fmt.Errorf("sub-region upload on %dD texture: %w",
			tex.Params.Dimensions, ra.ErrUnsupported)
	}
	if buf != nil {
		if d.caps&ra.CapMappedBuffers == 0 {
			return ra.ErrUnsupported
		}
		if tex.Params.Dimensions != 2 {
			return fmt.Errorf("mapped-buffer upload on %dD texture: %w",
				tex.Params.Dimensions, ra.ErrUnsupported)
		}
	}

	gl.BindTexture(priv.target, priv.texture)
	gl.PixelStorei(UNPACK_ALIGNMENT, 1)

	switch tex.Params.Dimensions {
	case 1:
		gl.TexImage1D(priv.target, fmtp.internalFormat, tex.Params.W,
			fmtp.format, fmtp.typ, src)
	case 2:
		rc := ra.Rect{X1: tex.Params.W, Y1: tex.Params.H}
		if region != nil {
			rc = *region
		}
		if err := d.upload2D(priv, fmtp, rc, src, stride, pixelSize, buf); err != nil {
			gl.BindTexture(priv.target, 0)
			return err
		}
	case 3:
		gl.TexImage3D(priv.target, fmtp.internalFormat,
			tex.Params.W, tex.Params.H, tex.Params.D,
			fmtp.format, fmtp.typ, src)
	}

	gl.BindTexture(priv.target, 0)
	return nil
}

func (d *device) upload2D(priv *glTex, fmtp *texFormat, rc ra.Rect, src []byte, stride, pixelSize int, buf *ra.MappedBuffer) error {
	gl := d.gl
	packed := stride == rc.W()*pixelSize

	if buf != nil {
		// Asynchronous upload from the persistently mapped buffer. The
		// GL consumes the data after this call returns, so the buffer's
		// reuse is deferred behind a fence.
		bpriv := buf.Priv.(*glBuffer)
		offset := int(uintptr(unsafe.Pointer(&src[0])) - uintptr(unsafe.Pointer(&buf.Data[0])))
		if offset < 0 || offset+len(src) > len(buf.Data) {
			return fmt.Errorf("upload source outside mapped buffer: %w", ra.ErrUnsupported)
		}
		if !packed {
			gl.PixelStorei(UNPACK_ROW_LENGTH, stride/pixelSize)
		}
		gl.BindBuffer(PIXEL_UNPACK_BUFFER, bpriv.buffer)
		gl.TexSubImage2DOffset(priv.target, rc.X0, rc.Y0, rc.W(), rc.H(),
			fmtp.format, fmtp.typ, offset)
		gl.BindBuffer(PIXEL_UNPACK_BUFFER, 0)
		if !packed {
			gl.PixelStorei(UNPACK_ROW_LENGTH, 0)
		}
		if bpriv.fence != nil {
			gl.DeleteSync(bpriv.fence)
		}
		bpriv.fence = gl.FenceSync()
		return nil
	}

	switch {
	case packed:
		gl.TexSubImage2D(priv.target, rc.X0, rc.Y0, rc.W(), rc.H(),
			fmtp.format, fmtp.typ, src)
	case d.rowLengthUsable() && stride%pixelSize == 0:
		gl.PixelStorei(UNPACK_ROW_LENGTH, stride/pixelSize)
		gl.TexSubImage2D(priv.target, rc.X0, rc.Y0, rc.W(), rc.H(),
			fmtp.format, fmtp.typ, src)
		gl.PixelStorei(UNPACK_ROW_LENGTH, 0)
	default:
		// Last resort: one call per row.
		rowBytes := rc.W() * pixelSize
		for y := 0; y < rc.H(); y++ {
			row := src[y*stride : y*stride+rowBytes]
			gl.TexSubImage2D(priv.target, rc.X0, rc.Y0+y, rc.W(), 1,
				fmtp.format, fmtp.typ, row)
		}
	}
	return nil
}

// glBuffer is the backend data behind ra.MappedBuffer.Priv.
type glBuffer struct {
	buffer uint32
	fence  Sync
}

func (d *device) CreateMappedBuffer(size int) (*ra.MappedBuffer, error) {
	gl := d.gl
	if d.caps&ra.CapMappedBuffers == 0 {
		return nil, ra.ErrUnsupported
	}
	buffer := gl.GenBuffer()
	gl.BindBuffer(PIXEL_UNPACK_BUFFER, buffer)
	gl.BufferStorage(PIXEL_UNPACK_BUFFER, size,
		MAP_WRITE_BIT|MAP_PERSISTENT_BIT|MAP_COHERENT_BIT|CLIENT_STORAGE_BIT)
	data := gl.MapBufferRange(PIXEL_UNPACK_BUFFER, 0, size,
		MAP_WRITE_BIT|MAP_PERSISTENT_BIT|MAP_COHERENT_BIT)
	gl.BindBuffer(PIXEL_UNPACK_BUFFER, 0)
	if data == nil {
		gl.DeleteBuffer(buffer)
		return nil, fmt.Errorf("persistent mapping failed: %w", ra.ErrUnsupported)
	}
	return &ra.MappedBuffer{
		Data: data,
		Priv: &glBuffer{buffer: buffer},
	}, nil
}

func (d *device) DestroyMappedBuffer(buf *ra.MappedBuffer) {
	if buf == nil {
		return
	}
	gl := d.gl
	priv := buf.Priv.(*glBuffer)
	gl.BindBuffer(PIXEL_UNPACK_BUFFER, priv.buffer)
	gl.UnmapBuffer(PIXEL_UNPACK_BUFFER)
	gl.BindBuffer(PIXEL_UNPACK_BUFFER, 0)
	gl.DeleteBuffer(priv.buffer)
	if priv.fence != nil {
		gl.DeleteSync(priv.fence)
	}
	buf.Priv = nil
	buf.Data = nil
}

func (d *device) PollMappedBuffer(buf *ra.MappedBuffer) bool {
	priv := buf.Priv.(*glBuffer)
	if priv.fence == nil {
		return true
	}
	switch d.gl.ClientWaitSync(priv.fence, 0, 0) {
	case ALREADY_SIGNALED, CONDITION_SATISFIED:
		d.gl.DeleteSync(priv.fence)
		priv.fence = nil
		return true
	}
	return false
}

func (d *device) Clear(dst *ra.Tex, color gputypes.Color, scissor ra.Rect) error {
	gl := d.gl
	priv := dst.Priv.(*glTex)
	if !dst.Params.RenderDst {
		return ra.ErrBadFormat
	}
	gl.BindFramebuffer(FRAMEBUFFER, priv.fbo)
	gl.Enable(SCISSOR_TEST)
	gl.Scissor(scissor.X0, scissor.Y0, scissor.W(), scissor.H())
	gl.ClearColor(float32(color.R), float32(color.G), float32(color.B), float32(color.A))
	gl.Clear(COLOR_BUFFER_BIT)
	gl.Disable(SCISSOR_TEST)
	gl.BindFramebuffer(FRAMEBUFFER, 0)
	return nil
}

func (d *device) Blit(dst, src *ra.Tex, dstX, dstY int, srcRegion ra.Rect) error {
	gl := d.gl
	if d.caps&ra.CapBlit == 0 {
		return ra.ErrUnsupported
	}
	if !dst.Params.RenderDst || !src.Params.RenderDst {
		return ra.ErrBadFormat
	}
	dpriv := dst.Priv.(*glTex)
	spriv := src.Priv.(*glTex)

	// Flipped source rectangles mirror the blit.
	w, h := srcRegion.W(), srcRegion.H()
	if w < 0 {
		w = -w
	}
	if h < 0 {
		h = -h
	}
	gl.BindFramebuffer(READ_FRAMEBUFFER, spriv.fbo)
	gl.BindFramebuffer(DRAW_FRAMEBUFFER, dpriv.fbo)
	gl.BlitFramebuffer(srcRegion.X0, srcRegion.Y0, srcRegion.X1, srcRegion.Y1,
		dstX, dstY, dstX+w, dstY+h, COLOR_BUFFER_BIT, NEAREST)
	gl.BindFramebuffer(READ_FRAMEBUFFER, 0)
	gl.BindFramebuffer(DRAW_FRAMEBUFFER, 0)
	return nil
}
