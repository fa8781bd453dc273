package ra

import (
	"errors"

	"github.com/gogpu/gputypes"
)

// Common RA errors.
var (
	// ErrUnsupported is returned when the backend lacks an optional
	// capability (for example persistently-mapped buffers). It is a soft
	// failure: callers are expected to fall back, not abort.
	ErrUnsupported = errors.New("ra: operation not supported by backend")

	// ErrMinimumVersion is returned by backend constructors when the
	// probed context is below the backend's minimum feature level.
	ErrMinimumVersion = errors.New("ra: graphics context below minimum feature level")

	// ErrBadFormat is returned when a texture or render target is
	// requested with a format the backend cannot honor.
	ErrBadFormat = errors.New("ra: format not usable for requested purpose")

	// ErrCompileFailed is returned when a render pass cannot be compiled
	// or linked from its shader source.
	ErrCompileFailed = errors.New("ra: shader program compilation failed")
)

// Caps is a bitset of optional device capabilities.
type Caps uint32

// Device capability flags.
const (
	// CapTex1D indicates support for 1D textures.
	CapTex1D Caps = 1 << iota

	// CapTex3D indicates support for 3D textures.
	CapTex3D

	// CapBlit indicates support for direct texture-to-texture blits.
	CapBlit

	// CapCompute indicates support for compute dispatches.
	CapCompute

	// CapMappedBuffers indicates support for persistently-mapped,
	// CPU-visible upload buffers.
	CapMappedBuffers

	// CapNestedArray indicates shader support for nested array types.
	CapNestedArray
)

// GLSLInfo describes the shader dialect a device consumes.
type GLSLInfo struct {
	// Version is the GLSL version in #version directive form, e.g. 120,
	// 130, 300, 430.
	Version int

	// ES reports whether the dialect is GLSL ES.
	ES bool
}

// Rect is a pixel rectangle with exclusive lower-right corner,
// origin at the top left.
type Rect struct {
	X0, Y0 int
	X1, Y1 int
}

// W returns the rectangle width.
func (r Rect) W() int { return r.X1 - r.X0 }

// H returns the rectangle height.
func (r Rect) H() int { return r.Y1 - r.Y0 }

// Device is the abstract capability surface of one graphics backend,
// implemented once per graphics API and selected at initialization time.
// Call sites hold the interface only; nothing backend-specific leaks
// through it.
//
// A Device and every object it creates are confined to the thread owning
// the underlying graphics context. No Device operation blocks waiting on
// the GPU; the only synchronization primitive is the non-blocking
// PollMappedBuffer.
type Device interface {
	// Destroy releases the device. Objects created from the device must
	// be destroyed first.
	Destroy()

	// Caps returns the probed capability bitset.
	Caps() Caps

	// GLSL returns the shader dialect accepted by RenderPassCreate.
	GLSL() GLSLInfo

	// Formats enumerates the texture formats supported by this device.
	// The slice and the formats are immutable after device creation.
	Formats() []*Format

	// MaxTextureSize returns the maximum texture width/height in pixels.
	MaxTextureSize() int

	// TexCreate creates a texture. Requesting a render-target texture
	// with a non-renderable format is a contract violation reported as
	// an error, never silently downgraded.
	TexCreate(params *TexParams) (*Tex, error)

	// TexDestroy releases a texture. It is a no-op on nil. For wrapped
	// foreign textures only the wrapper is released, never the native
	// object.
	TexDestroy(tex *Tex)

	// TexUpload copies pixel data into a texture. For 2D textures a
	// sub-region may be given (nil means the full extent); 1D and 3D
	// uploads must cover the whole texture. stride is the byte distance
	// between rows (2D/3D only). If buf is non-nil, src must point into
	// buf.Data and the upload is asynchronous: the call extends buf's
	// outstanding-work fence so the buffer is not reused before the GPU
	// has consumed it.
	TexUpload(tex *Tex, src []byte, stride int, region *Rect, buf *MappedBuffer) error

	// CreateMappedBuffer allocates a persistently-mapped upload buffer.
	// Returns ErrUnsupported when the backend lacks persistent mapping.
	CreateMappedBuffer(size int) (*MappedBuffer, error)

	// DestroyMappedBuffer releases a mapped buffer. No-op on nil.
	DestroyMappedBuffer(buf *MappedBuffer)

	// PollMappedBuffer reports, without blocking, whether the GPU has
	// finished consuming the buffer and it is safe to reuse.
	PollMappedBuffer(buf *MappedBuffer) bool

	// Clear fills the scissor region of a render-target texture with a
	// constant color.
	Clear(dst *Tex, color gputypes.Color, scissor Rect) error

	// Blit copies srcRegion of src to dst at (dstX, dstY). Both textures
	// must be render-target capable.
	Blit(dst, src *Tex, dstX, dstY int, srcRegion Rect) error

	// RenderPassCreate compiles a render pass from params. When
	// params.CachedProgram carries a previously exported binary that
	// still links, source compilation is skipped; a binary that fails to
	// link falls back to source compilation transparently.
	RenderPassCreate(params *RenderPassParams) (*RenderPass, error)

	// RenderPassDestroy releases a compiled render pass. No-op on nil.
	RenderPassDestroy(pass *RenderPass)

	// RenderPassRun binds the pass program, applies the supplied
	// (changed) input values, executes the draw or compute dispatch and
	// unbinds every bound resource before returning. No backend state
	// leaks past this call.
	RenderPassRun(params *RenderPassRun)
}

// TexFree destroys *tex and nils the caller's handle so a dangling
// pointer cannot be reused. Safe on an already-nil handle.
func TexFree(d Device, tex **Tex) {
	if *tex != nil {
		d.TexDestroy(*tex)
	}
	*tex = nil
}
