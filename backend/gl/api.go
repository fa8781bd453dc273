// Package gl implements the ra device interface on top of OpenGL.
//
// The package does not load OpenGL itself. The host (the component that
// owns the window/context, which is out of scope here) fills in a
// Functions table with entry points from its loader and passes it to
// New. Optional entry points are nil when the context does not expose
// them; the backend probes capabilities from the table and the
// reported versions.
package gl

// Sync is an opaque fence handle returned by Functions.FenceSync.
type Sync any

// Functions is the OpenGL entry-point table, filled in by the host's
// GL loader. Required entry points must be non-nil for any context
// that passes the New version gate; entry points in the optional block
// may be nil and gate individual capabilities.
type Functions struct {
	// Version is the desktop OpenGL version times 100 (e.g. 210, 440),
	// or 0 for ES contexts.
	Version int

	// ES is the OpenGL ES version times 100 (e.g. 200, 300), or 0 for
	// desktop contexts.
	ES int

	// GLSLVersion is the GLSL version accepted by the context in
	// #version directive form (e.g. 120, 130, 300, 430).
	GLSLVersion int

	// Extensions lists the extension strings exposed by the context.
	Extensions []string

	ActiveTexture            func(unit uint32)
	AttachShader             func(program, shader uint32)
	BindAttribLocation       func(program uint32, index int, name string)
	BindBuffer               func(target, buffer uint32)
	BindFramebuffer          func(target, fbo uint32)
	BindTexture              func(target, tex uint32)
	BlendFuncSeparate        func(srcRGB, dstRGB, srcAlpha, dstAlpha uint32)
	BufferData               func(target uint32, data []byte, usage uint32)
	CheckFramebufferStatus   func(target uint32) uint32
	Clear                    func(mask uint32)
	ClearColor               func(r, g, b, a float32)
	CompileShader            func(shader uint32)
	CreateProgram            func() uint32
	CreateShader             func(typ uint32) uint32
	DeleteBuffer             func(buffer uint32)
	DeleteFramebuffer        func(fbo uint32)
	DeleteProgram            func(program uint32)
	DeleteShader             func(shader uint32)
	DeleteTexture            func(tex uint32)
	Disable                  func(capability uint32)
	DisableVertexAttribArray func(index int)
	DrawArrays               func(mode uint32, first, count int)
	Enable                   func(capability uint32)
	EnableVertexAttribArray  func(index int)
	FramebufferTexture2D     func(target, attachment, textarget, tex uint32, level int)
	GenBuffer                func() uint32
	GenFramebuffer           func() uint32
	GenTexture               func() uint32
	GetError                 func() uint32
	GetIntegerv              func(pname uint32) int
	GetProgramInfoLog        func(program uint32) string
	GetProgramiv             func(program, pname uint32) int
	GetShaderInfoLog         func(shader uint32) string
	GetShaderiv              func(shader, pname uint32) int
	GetUniformLocation       func(program uint32, name string) int
	LinkProgram              func(program uint32)
	PixelStorei              func(pname uint32, value int)
	Scissor                  func(x, y, w, h int)
	ShaderSource             func(shader uint32, source string)
	TexImage1D               func(target uint32, internalFormat, w int, format, typ uint32, data []byte)
	TexImage2D               func(target uint32, internalFormat, w, h int, format, typ uint32, data []byte)
	TexImage3D               func(target uint32, internalFormat, w, h, d int, format, typ uint32, data []byte)
	TexSubImage2D            func(target uint32, x, y, w, h int, format, typ uint32, data []byte)
	TexParameteri            func(target, pname uint32, value int)
	Uniform1f                func(loc int, v0 float32)
	Uniform2f                func(loc int, v0, v1 float32)
	Uniform3f                func(loc int, v0, v1, v2 float32)
	Uniform4f                func(loc int, v0, v1, v2, v3 float32)
	Uniform1i                func(loc int, v0 int32)
	UniformMatrix2fv         func(loc int, v []float32)
	UniformMatrix3fv         func(loc int, v []float32)
	UseProgram               func(program uint32)
	VertexAttribPointer      func(index, size int, typ uint32, normalized bool, stride, offset int)
	Viewport                 func(x, y, w, h int)

	// Optional entry points; nil when unavailable.

	// BlitFramebuffer gates ra.CapBlit.
	BlitFramebuffer func(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int, mask, filter uint32)

	// BufferStorage, MapBufferRange, UnmapBuffer, FenceSync,
	// ClientWaitSync, DeleteSync and TexSubImage2DOffset together gate
	// ra.CapMappedBuffers (persistently-mapped PBO uploads, GL 4.4+).
	// TexSubImage2DOffset uploads from the bound pixel-unpack buffer at
	// a byte offset instead of client memory.
	BufferStorage       func(target uint32, size int, flags uint32)
	MapBufferRange      func(target uint32, offset, length int, access uint32) []byte
	UnmapBuffer         func(target uint32) bool
	FenceSync           func() Sync
	ClientWaitSync      func(s Sync, flags uint32, timeoutNs int64) uint32
	DeleteSync          func(s Sync)
	TexSubImage2DOffset func(target uint32, x, y, w, h int, format, typ uint32, offset int)

	// DispatchCompute, MemoryBarrier, BindImageTexture and
	// BindBufferBase gate ra.CapCompute.
	DispatchCompute  func(w, h, d int)
	MemoryBarrier    func(mask uint32)
	BindImageTexture func(unit int, tex uint32, level int, layered bool, layer int, access, format uint32)
	BindBufferBase   func(target uint32, index int, buffer uint32)

	// GetProgramBinary and ProgramBinary gate compiled-binary export
	// and import for the disk shader cache.
	GetProgramBinary func(program uint32) (data []byte, format uint32)
	ProgramBinary    func(program, format uint32, data []byte)

	// GetTexLevelParameteriv is used to probe the real delivered depth
	// of 16-bit normalized formats; 16 is assumed when nil.
	GetTexLevelParameteriv func(target uint32, level int, pname uint32) int
}

// HasExtension reports whether the context exposes the named extension.
func (f *Functions) HasExtension(name string) bool {
	for _, e := range f.Extensions {
		if e == name {
			return true
		}
	}
	return false
}

// OpenGL enums, restricted to what the backend uses.
const (
	TEXTURE_1D           = 0x0DE0
	TEXTURE_2D           = 0x0DE1
	TEXTURE_3D           = 0x806F
	TEXTURE_RECTANGLE    = 0x84F5
	TEXTURE_EXTERNAL_OES = 0x8D65

	TEXTURE_MIN_FILTER = 0x2801
	TEXTURE_MAG_FILTER = 0x2800
	TEXTURE_WRAP_S     = 0x2802
	TEXTURE_WRAP_T     = 0x2803
	TEXTURE_WRAP_R     = 0x8072
	TEXTURE_RED_SIZE   = 0x805C

	NEAREST       = 0x2600
	LINEAR        = 0x2601
	REPEAT        = 0x2901
	CLAMP_TO_EDGE = 0x812F

	UNPACK_ALIGNMENT  = 0x0CF5
	UNPACK_ROW_LENGTH = 0x0CF2

	FRAMEBUFFER          = 0x8D40
	READ_FRAMEBUFFER     = 0x8CA8
	DRAW_FRAMEBUFFER     = 0x8CA9
	COLOR_ATTACHMENT0    = 0x8CE0
	FRAMEBUFFER_COMPLETE = 0x8CD5

	ARRAY_BUFFER          = 0x8892
	PIXEL_UNPACK_BUFFER   = 0x88EC
	SHADER_STORAGE_BUFFER = 0x90D2
	STREAM_DRAW           = 0x88E0

	MAP_READ_BIT       = 0x0001
	MAP_WRITE_BIT      = 0x0002
	MAP_PERSISTENT_BIT = 0x0040
	MAP_COHERENT_BIT   = 0x0080
	CLIENT_STORAGE_BIT = 0x0200

	SYNC_GPU_COMMANDS_COMPLETE = 0x9117
	ALREADY_SIGNALED           = 0x911A
	TIMEOUT_EXPIRED            = 0x911B
	CONDITION_SATISFIED        = 0x911C

	SCISSOR_TEST     = 0x0C11
	DITHER           = 0x0BD0
	BLEND            = 0x0BE2
	COLOR_BUFFER_BIT = 0x4000

	MAX_TEXTURE_SIZE = 0x0D33

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30
	COMPUTE_SHADER  = 0x91B9

	COMPILE_STATUS        = 0x8B81
	LINK_STATUS           = 0x8B82
	INFO_LOG_LENGTH       = 0x8B84
	PROGRAM_BINARY_LENGTH = 0x8741

	TEXTURE0 = 0x84C0

	TRIANGLES = 0x0004

	UNSIGNED_BYTE          = 0x1401
	INT                    = 0x1404
	UNSIGNED_INT           = 0x1405
	UNSIGNED_SHORT         = 0x1403
	FLOAT                  = 0x1406
	UNSIGNED_SHORT_5_6_5   = 0x8363
	UNSIGNED_SHORT_8_8_APL = 0x85BA

	RED             = 0x1903
	RG              = 0x8227
	RGB             = 0x1907
	RGBA            = 0x1908
	RED_INTEGER     = 0x8D94
	RG_INTEGER      = 0x8228
	RGB_INTEGER     = 0x8D98
	RGBA_INTEGER    = 0x8D99
	LUMINANCE       = 0x1909
	LUMINANCE_ALPHA = 0x190A
	RGB_422_APPLE   = 0x8A1F

	R8       = 0x8229
	RG8      = 0x822B
	RGB8     = 0x8051
	RGBA8    = 0x8058
	R16      = 0x822A
	RG16     = 0x822C
	RGBA16   = 0x805B
	R16F     = 0x822D
	RG16F    = 0x822F
	RGBA16F  = 0x881A
	R32F     = 0x822E
	RG32F    = 0x8230
	RGBA32F  = 0x8814
	R8UI     = 0x8232
	RG8UI    = 0x8238
	RGBA8UI  = 0x8D7C
	R16UI    = 0x8234
	RG16UI   = 0x823A
	RGBA16UI = 0x8D76
	RGB565   = 0x8D62

	ZERO                = 0
	ONE                 = 1
	SRC_ALPHA           = 0x0302
	ONE_MINUS_SRC_ALPHA = 0x0303

	WRITE_ONLY = 0x88B9

	TEXTURE_FETCH_BARRIER_BIT = 0x00000008
)
