package gl

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ra"
)

// fakeState records the GL calls a test cares about.
type fakeState struct {
	nextID uint32

	texImages   []texImageCall
	subImages   []subImageCall
	pixelStores []pixelStoreCall
	deletedTex  []uint32
	deletedFBOs []uint32
	fbStatus    uint32

	shaderSources  map[uint32]string
	compileFail    func(source string) bool
	linked         int
	rejectBinary   bool
	binaryFormat   uint32
	loadedBinaries [][]byte

	uniform1i []uniform1iCall
	draws     int

	clearColor  [4]float32
	scissor     ra.Rect
	scissorOn   bool
	boundFBO    uint32
	clearedWith uint32
}

type texImageCall struct {
	target         uint32
	internalFormat int
	w, h           int
	dataLen        int
}

type subImageCall struct {
	x, y, w, h int
	dataLen    int
}

type pixelStoreCall struct {
	pname uint32
	value int
}

type uniform1iCall struct {
	loc int
	v   int32
}

func (s *fakeState) genID() uint32 {
	s.nextID++
	return s.nextID
}

// newFakeFunctions builds a Functions table backed by an in-memory
// recorder. Optional entry points are left nil; tests fill them in as
// needed.
func newFakeFunctions(version, es, glslVersion int) (*Functions, *fakeState) {
	s := &fakeState{
		fbStatus:      FRAMEBUFFER_COMPLETE,
		shaderSources: make(map[uint32]string),
		binaryFormat:  0xbeef,
	}
	f := &Functions{
		Version:     version,
		ES:          es,
		GLSLVersion: glslVersion,

		ActiveTexture:      func(uint32) {},
		AttachShader:       func(uint32, uint32) {},
		BindAttribLocation: func(uint32, int, string) {},
		BindBuffer:         func(uint32, uint32) {},
		BindFramebuffer:    func(target, fbo uint32) { s.boundFBO = fbo },
		BindTexture:        func(uint32, uint32) {},
		BlendFuncSeparate:  func(uint32, uint32, uint32, uint32) {},
		BufferData:         func(uint32, []byte, uint32) {},
		CheckFramebufferStatus: func(uint32) uint32 {
			return s.fbStatus
		},
		Clear:      func(mask uint32) { s.clearedWith = mask },
		ClearColor: func(r, g, b, a float32) { s.clearColor = [4]float32{r, g, b, a} },
		CompileShader: func(uint32) {
		},
		CreateProgram: func() uint32 { return s.genID() },
		CreateShader:  func(uint32) uint32 { return s.genID() },
		DeleteBuffer:  func(uint32) {},
		DeleteFramebuffer: func(fbo uint32) {
			s.deletedFBOs = append(s.deletedFBOs, fbo)
		},
		DeleteProgram: func(uint32) {},
		DeleteShader:  func(uint32) {},
		DeleteTexture: func(tex uint32) {
			s.deletedTex = append(s.deletedTex, tex)
		},
		Disable: func(uint32) { s.scissorOn = false },
		Enable: func(capability uint32) {
			if capability == SCISSOR_TEST {
				s.scissorOn = true
			}
		},
		DisableVertexAttribArray: func(int) {},
		DrawArrays:               func(uint32, int, int) { s.draws++ },
		EnableVertexAttribArray:  func(int) {},
		FramebufferTexture2D:     func(uint32, uint32, uint32, uint32, int) {},
		GenBuffer:                func() uint32 { return s.genID() },
		GenFramebuffer:           func() uint32 { return s.genID() },
		GenTexture:               func() uint32 { return s.genID() },
		GetError:                 func() uint32 { return 0 },
		GetIntegerv: func(pname uint32) int {
			if pname == MAX_TEXTURE_SIZE {
				return 8192
			}
			return 0
		},
		GetProgramInfoLog: func(uint32) string { return "fake link log" },
		GetProgramiv: func(program, pname uint32) int {
			if pname == LINK_STATUS {
				return 1
			}
			return 0
		},
		GetShaderInfoLog: func(uint32) string { return "fake compile log" },
		GetShaderiv: func(shader, pname uint32) int {
			if pname != COMPILE_STATUS {
				return 0
			}
			if s.compileFail != nil && s.compileFail(s.shaderSources[shader]) {
				return 0
			}
			return 1
		},
		GetUniformLocation: func(_ uint32, name string) int { return len(name) },
		LinkProgram:        func(uint32) { s.linked++ },
		PixelStorei: func(pname uint32, value int) {
			s.pixelStores = append(s.pixelStores, pixelStoreCall{pname, value})
		},
		Scissor: func(x, y, w, h int) {
			s.scissor = ra.Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
		},
		ShaderSource: func(shader uint32, source string) {
			s.shaderSources[shader] = source
		},
		TexImage1D: func(target uint32, ifmt, w int, format, typ uint32, data []byte) {
			s.texImages = append(s.texImages, texImageCall{target, ifmt, w, 1, len(data)})
		},
		TexImage2D: func(target uint32, ifmt, w, h int, format, typ uint32, data []byte) {
			s.texImages = append(s.texImages, texImageCall{target, ifmt, w, h, len(data)})
		},
		TexImage3D: func(target uint32, ifmt, w, h, d int, format, typ uint32, data []byte) {
			s.texImages = append(s.texImages, texImageCall{target, ifmt, w, h, len(data)})
		},
		TexSubImage2D: func(target uint32, x, y, w, h int, format, typ uint32, data []byte) {
			s.subImages = append(s.subImages, subImageCall{x, y, w, h, len(data)})
		},
		TexParameteri:       func(uint32, uint32, int) {},
		Uniform1f:           func(int, float32) {},
		Uniform2f:           func(int, float32, float32) {},
		Uniform3f:           func(int, float32, float32, float32) {},
		Uniform4f:           func(int, float32, float32, float32, float32) {},
		Uniform1i:           func(loc int, v int32) { s.uniform1i = append(s.uniform1i, uniform1iCall{loc, v}) },
		UniformMatrix2fv:    func(int, []float32) {},
		UniformMatrix3fv:    func(int, []float32) {},
		UseProgram:          func(uint32) {},
		VertexAttribPointer: func(int, int, uint32, bool, int, int) {},
		Viewport:            func(int, int, int, int) {},
	}
	return f, s
}

func mustDevice(t *testing.T, f *Functions) ra.Device {
	t.Helper()
	d, err := New(f)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewVersionGate(t *testing.T) {
	tests := []struct {
		name        string
		version, es int
		wantErr     bool
	}{
		{"GL 2.0", 200, 0, true},
		{"GL 2.1", 210, 0, false},
		{"GL 4.4", 440, 0, false},
		{"ES 1.0", 0, 100, true},
		{"ES 2.0", 0, 200, false},
		{"ES 3.0", 0, 300, false},
	}
	for _, tt := range tests {
		f, _ := newFakeFunctions(tt.version, tt.es, 430)
		_, err := New(f)
		if tt.wantErr && !errors.Is(err, ra.ErrMinimumVersion) {
			t.Errorf("%s: err = %v, want ErrMinimumVersion", tt.name, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: err = %v", tt.name, err)
		}
	}
}

func TestFormatTableDesktop(t *testing.T) {
	f, _ := newFakeFunctions(440, 0, 430)
	d := mustDevice(t, f)

	if fmt := ra.FindUnormFormat(d, 2, 4); fmt == nil || fmt.Name != "rgba16" {
		t.Errorf("FindUnormFormat(2, 4) = %v, want rgba16", fmt)
	}
	f16 := ra.FindFloat16Format(d, 1)
	if f16 == nil || f16.Name != "r16f" {
		t.Fatalf("FindFloat16Format(1) = %v, want r16f", f16)
	}
	if f16.PixelSize != 4 || f16.ComponentDepth[0] != 16 {
		t.Errorf("r16f layout: pixelSize=%d depth=%d, want 4/16", f16.PixelSize, f16.ComponentDepth[0])
	}
	if fmt := ra.FindNamedFormat(d, "rgb565"); fmt == nil {
		t.Error("rgb565 missing from desktop table")
	}
}

func TestFormatTableES2(t *testing.T) {
	f, _ := newFakeFunctions(0, 200, 100)
	d := mustDevice(t, f)

	if fmt := ra.FindNamedFormat(d, "r8"); fmt != nil {
		t.Error("sized r8 present on an ES 2.0 context")
	}
	got := ra.FindUnormFormat(d, 1, 4)
	if got == nil || got.Name != "rgba" {
		t.Errorf("FindUnormFormat(1, 4) = %v, want legacy rgba", got)
	}
	if fmt := ra.FindUnormFormat(d, 2, 1); fmt != nil {
		t.Errorf("16-bit unorm %q present on ES 2.0", fmt.Name)
	}
}

func TestDepth16Probe(t *testing.T) {
	f, _ := newFakeFunctions(330, 0, 330)
	f.GetTexLevelParameteriv = func(target uint32, level int, pname uint32) int {
		return 10 // driver stores r16 with 10 meaningful bits
	}
	d := mustDevice(t, f)

	r16 := ra.FindNamedFormat(d, "r16")
	if r16 == nil {
		t.Fatal("r16 missing")
	}
	if r16.ComponentDepth[0] != 10 {
		t.Errorf("r16 depth = %d, want probed 10", r16.ComponentDepth[0])
	}
	// A format that does not deliver 16 bits must not satisfy a 16-bit
	// request.
	if fmt := ra.FindUnormFormat(d, 2, 1); fmt != nil {
		t.Errorf("FindUnormFormat(2, 1) = %q on 10-bit device", fmt.Name)
	}
}

func TestCaps(t *testing.T) {
	f, _ := newFakeFunctions(210, 0, 120)
	d := mustDevice(t, f)
	caps := d.Caps()
	if caps&ra.CapTex1D == 0 || caps&ra.CapTex3D == 0 {
		t.Error("desktop 2.1 missing 1D/3D texture caps")
	}
	for _, c := range []ra.Caps{ra.CapBlit, ra.CapCompute, ra.CapMappedBuffers, ra.CapNestedArray} {
		if caps&c != 0 {
			t.Errorf("optional cap %b set without its entry points", c)
		}
	}

	f2, _ := newFakeFunctions(440, 0, 430)
	f2.BlitFramebuffer = func(int, int, int, int, int, int, int, int, uint32, uint32) {}
	f2.DispatchCompute = func(int, int, int) {}
	f2.MemoryBarrier = func(uint32) {}
	f2.BindImageTexture = func(int, uint32, int, bool, int, uint32, uint32) {}
	f2.BindBufferBase = func(uint32, int, uint32) {}
	d2 := mustDevice(t, f2)
	caps = d2.Caps()
	if caps&ra.CapBlit == 0 || caps&ra.CapCompute == 0 || caps&ra.CapNestedArray == 0 {
		t.Errorf("caps = %b, want blit+compute+nested arrays", caps)
	}
	if caps&ra.CapMappedBuffers != 0 {
		t.Error("mapped buffers reported without buffer storage entry points")
	}
}

func TestTexCreateRenderTarget(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	tex, err := d.TexCreate(&ra.TexParams{
		Dimensions: 2, W: 64, H: 64, D: 1,
		Format: rgba8, RenderDst: true, RenderSrc: true,
	})
	if err != nil {
		t.Fatalf("TexCreate: %v", err)
	}
	if tex.Priv.(*glTex).fbo == 0 {
		t.Error("render target created without a framebuffer")
	}
	d.TexDestroy(tex)
	if len(s.deletedTex) != 1 || len(s.deletedFBOs) != 1 {
		t.Errorf("destroy deleted %d textures, %d FBOs, want 1/1",
			len(s.deletedTex), len(s.deletedFBOs))
	}
}

func TestTexCreateRejectsNonRenderableTarget(t *testing.T) {
	f, _ := newFakeFunctions(210, 0, 120)
	d := mustDevice(t, f)

	lum := ra.FindNamedFormat(d, "luminance")
	if lum == nil {
		t.Fatal("luminance missing from GL 2.1 table")
	}
	_, err := d.TexCreate(&ra.TexParams{
		Dimensions: 2, W: 64, H: 64, Format: lum, RenderDst: true,
	})
	if !errors.Is(err, ra.ErrBadFormat) {
		t.Errorf("err = %v, want ErrBadFormat", err)
	}
}

func TestTexCreateIncompleteFramebuffer(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	s.fbStatus = 0x8CD6 // incomplete attachment
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	_, err := d.TexCreate(&ra.TexParams{
		Dimensions: 2, W: 64, H: 64, Format: rgba8, RenderDst: true,
	})
	if !errors.Is(err, ra.ErrBadFormat) {
		t.Errorf("err = %v, want ErrBadFormat for incomplete framebuffer", err)
	}
}

func TestTexUploadStride(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	r8 := ra.FindNamedFormat(d, "r8")
	tex, err := d.TexCreate(&ra.TexParams{Dimensions: 2, W: 16, H: 4, Format: r8})
	if err != nil {
		t.Fatal(err)
	}

	// Stride wider than the row: row length must be communicated and
	// reset afterwards.
	src := make([]byte, 32*4)
	if err := d.TexUpload(tex, src, 32, nil, nil); err != nil {
		t.Fatal(err)
	}
	var sawRowLen, sawReset bool
	for _, ps := range s.pixelStores {
		if ps.pname == UNPACK_ROW_LENGTH && ps.value == 32 {
			sawRowLen = true
		}
		if ps.pname == UNPACK_ROW_LENGTH && ps.value == 0 && sawRowLen {
			sawReset = true
		}
	}
	if !sawRowLen || !sawReset {
		t.Errorf("row length set/reset = %v/%v, want true/true", sawRowLen, sawReset)
	}
	if len(s.subImages) != 1 || s.subImages[0].w != 16 || s.subImages[0].h != 4 {
		t.Errorf("sub image calls = %+v", s.subImages)
	}
}

func TestTexUploadRegion(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	r8 := ra.FindNamedFormat(d, "r8")
	tex, err := d.TexCreate(&ra.TexParams{Dimensions: 2, W: 16, H: 16, Format: r8})
	if err != nil {
		t.Fatal(err)
	}
	region := &ra.Rect{X0: 4, Y0: 4, X1: 12, Y1: 8}
	if err := d.TexUpload(tex, make([]byte, 8*4), 8, region, nil); err != nil {
		t.Fatal(err)
	}
	got := s.subImages[0]
	if got.x != 4 || got.y != 4 || got.w != 8 || got.h != 4 {
		t.Errorf("region upload = %+v, want 4,4 8x4", got)
	}
}

func TestMappedBufferUnsupported(t *testing.T) {
	f, _ := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)
	if _, err := d.CreateMappedBuffer(1 << 20); !errors.Is(err, ra.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestClear(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	tex, err := d.TexCreate(&ra.TexParams{
		Dimensions: 2, W: 64, H: 64, Format: rgba8, RenderDst: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	scissor := ra.Rect{X0: 8, Y0: 8, X1: 24, Y1: 40}
	err = d.Clear(tex, gputypes.Color{R: 1, G: 0.5, B: 0, A: 1}, scissor)
	if err != nil {
		t.Fatal(err)
	}
	if s.clearedWith != COLOR_BUFFER_BIT {
		t.Error("clear did not target the color buffer")
	}
	if s.scissor != scissor {
		t.Errorf("scissor = %+v, want %+v", s.scissor, scissor)
	}
	if s.clearColor != [4]float32{1, 0.5, 0, 1} {
		t.Errorf("clear color = %v", s.clearColor)
	}
	if s.scissorOn {
		t.Error("scissor test left enabled after clear")
	}
}

func TestBlitUnsupported(t *testing.T) {
	f, _ := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	tex, _ := d.TexCreate(&ra.TexParams{Dimensions: 2, W: 8, H: 8, Format: rgba8, RenderDst: true})
	err := d.Blit(tex, tex, 0, 0, ra.Rect{X1: 8, Y1: 8})
	if !errors.Is(err, ra.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported without BlitFramebuffer", err)
	}
}

func rasterParams() *ra.RenderPassParams {
	return &ra.RenderPassParams{
		Type: ra.RenderPassRaster,
		VertexAttribs: []ra.Input{
			{Name: "vertex_position", Type: ra.VarTypeFloat, DimV: 2, DimM: 1},
		},
		VertexStride: 8,
		VertexShader: "void main() { gl_Position = vec4(0.0); }",
		FragShader:   "void main() { gl_FragColor = vec4(1.0); }",
		Inputs: []ra.Input{
			{Name: "source", Type: ra.VarTypeTex, DimV: 1, DimM: 1, Binding: 1},
		},
	}
}

func TestRenderPassCompileFailure(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	s.compileFail = func(source string) bool { return true }
	d := mustDevice(t, f)

	_, err := d.RenderPassCreate(rasterParams())
	if !errors.Is(err, ra.ErrCompileFailed) {
		t.Errorf("err = %v, want ErrCompileFailed", err)
	}
}

func TestRenderPassBinaryExportAndReload(t *testing.T) {
	f, s := newFakeFunctions(440, 0, 430)
	f.GetProgramBinary = func(uint32) ([]byte, uint32) {
		return []byte("driver-binary"), s.binaryFormat
	}
	f.ProgramBinary = func(program, format uint32, data []byte) {
		if format == s.binaryFormat && string(data) == "driver-binary" && !s.rejectBinary {
			s.loadedBinaries = append(s.loadedBinaries, data)
			return
		}
		s.rejectBinary = true
	}
	d := mustDevice(t, f)

	pass, err := d.RenderPassCreate(rasterParams())
	if err != nil {
		t.Fatal(err)
	}
	if len(pass.Params.CachedProgram) == 0 {
		t.Fatal("no binary exported")
	}
	linkedFromSource := s.linked

	// Feeding the exported binary back skips source compilation.
	params := rasterParams()
	params.CachedProgram = pass.Params.CachedProgram
	if _, err := d.RenderPassCreate(params); err != nil {
		t.Fatal(err)
	}
	if s.linked != linkedFromSource {
		t.Error("binary reload went through a source link")
	}
	if len(s.loadedBinaries) != 1 {
		t.Errorf("binary loads = %d, want 1", len(s.loadedBinaries))
	}
}

func TestRenderPassBinaryRejectionFallsBack(t *testing.T) {
	f, s := newFakeFunctions(440, 0, 430)
	rejected := false
	f.ProgramBinary = func(program, format uint32, data []byte) {
		rejected = true
	}
	// Link status 0 right after ProgramBinary, 1 after a real link.
	f.GetProgramiv = func(program, pname uint32) int {
		if pname != LINK_STATUS {
			return 0
		}
		if rejected && s.linked == 0 {
			return 0
		}
		return 1
	}
	d := mustDevice(t, f)

	params := rasterParams()
	params.CachedProgram = []byte{1, 2, 3, 4, 5, 6}
	pass, err := d.RenderPassCreate(params)
	if err != nil {
		t.Fatalf("stale binary must fall back to source, got %v", err)
	}
	if !rejected {
		t.Error("binary load never attempted")
	}
	if s.linked != 1 {
		t.Errorf("source links = %d, want 1", s.linked)
	}
	if pass == nil {
		t.Fatal("no pass created")
	}
}

func TestRenderPassRunFirstRunBindsSamplers(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	target, _ := d.TexCreate(&ra.TexParams{Dimensions: 2, W: 8, H: 8, Format: rgba8, RenderDst: true})
	source, _ := d.TexCreate(&ra.TexParams{Dimensions: 2, W: 8, H: 8, Format: rgba8, RenderSrc: true})

	pass, err := d.RenderPassCreate(rasterParams())
	if err != nil {
		t.Fatal(err)
	}

	run := &ra.RenderPassRun{
		Pass:        pass,
		Values:      []ra.InputVal{{Index: 0, Data: source}},
		Target:      target,
		VertexData:  make([]byte, 8*6),
		VertexCount: 6,
		Viewport:    ra.Rect{X1: 8, Y1: 8},
		Scissors:    ra.Rect{X1: 8, Y1: 8},
	}
	d.RenderPassRun(run)
	d.RenderPassRun(run)

	if len(s.uniform1i) != 1 {
		t.Fatalf("sampler unit bound %d times, want once on first run", len(s.uniform1i))
	}
	if s.uniform1i[0].v != 1 {
		t.Errorf("sampler bound to unit %d, want 1", s.uniform1i[0].v)
	}
	if s.draws != 2 {
		t.Errorf("draws = %d, want 2", s.draws)
	}
}

func TestWrapFramebuffer(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	wrapped, err := WrapFramebuffer(d, 42, 1920, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if !wrapped.Params.RenderDst {
		t.Error("wrapped framebuffer not a render target")
	}
	if err := d.Clear(wrapped, gputypes.Color{A: 1}, ra.Rect{X1: 1920, Y1: 1080}); err != nil {
		t.Fatal(err)
	}

	// Destroying the wrapper never touches the host's GL object.
	d.TexDestroy(wrapped)
	if len(s.deletedTex) != 0 || len(s.deletedFBOs) != 0 {
		t.Error("destroying a wrapped framebuffer deleted foreign objects")
	}
}

func TestWrapTexture(t *testing.T) {
	f, s := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	rgba8 := ra.FindNamedFormat(d, "rgba8")
	wrapped, err := WrapTexture(d, &ra.TexParams{
		Dimensions: 2, W: 128, H: 128, Format: rgba8, RenderSrc: true,
	}, 77)
	if err != nil {
		t.Fatal(err)
	}
	if wrapped.Priv.(*glTex).texture != 77 {
		t.Error("wrapper lost the native texture name")
	}
	d.TexDestroy(wrapped)
	if len(s.deletedTex) != 0 {
		t.Error("destroying a wrapped texture deleted the foreign object")
	}
}

func TestWrapTextureResolvesSimilarFormat(t *testing.T) {
	f, _ := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	// A host-described format that is not from the device table but
	// matches a table entry's layout resolves to that entry.
	hostFormat := &ra.Format{
		Name:          "external_rgba",
		CType:         ra.CTypeUnorm,
		NumComponents: 4,
		PixelSize:     4,
		Class:         ra.Regular{},
	}
	wrapped, err := WrapTexture(d, &ra.TexParams{
		Dimensions: 2, W: 64, H: 64, Format: hostFormat, RenderSrc: true,
	}, 77)
	if err != nil {
		t.Fatal(err)
	}
	if wrapped.Params.Format.Name != "rgba" {
		t.Errorf("resolved format = %q, want first matching table entry rgba", wrapped.Params.Format.Name)
	}
	if err := d.TexUpload(wrapped, make([]byte, 64*64*4), 64*4, nil, nil); err != nil {
		t.Errorf("upload through resolved format failed: %v", err)
	}
}

func TestWrapTextureUnknownFormat(t *testing.T) {
	f, _ := newFakeFunctions(330, 0, 330)
	d := mustDevice(t, f)

	// Nothing in the table matches a 10-bit packed layout; wrapping
	// still succeeds with the dummy format so the texture can be
	// sampled.
	hostFormat := &ra.Format{
		Name:          "x2bgr10",
		CType:         ra.CTypeUnorm,
		NumComponents: 4,
		PixelSize:     5,
		Class:         ra.Regular{},
	}
	wrapped, err := WrapTexture(d, &ra.TexParams{
		Dimensions: 2, W: 64, H: 64, Format: hostFormat, RenderSrc: true,
	}, 78)
	if err != nil {
		t.Fatal(err)
	}
	if wrapped.Params.Format != TexDummyFormat {
		t.Fatalf("unmatched format resolved to %q, want the dummy", wrapped.Params.Format.Name)
	}
	if !wrapped.Params.Format.LinearFilter {
		t.Error("dummy texture format not filterable")
	}

	// The dummy carries no transfer layout: uploads fail cleanly.
	err = d.TexUpload(wrapped, make([]byte, 64*64*5), 64*5, nil, nil)
	if !errors.Is(err, ra.ErrBadFormat) {
		t.Errorf("upload through dummy format: err = %v, want ErrBadFormat", err)
	}
}

func TestBlendFactorMapping(t *testing.T) {
	tests := []struct {
		in   gputypes.BlendFactor
		want uint32
	}{
		{gputypes.BlendFactorZero, ZERO},
		{gputypes.BlendFactorOne, ONE},
		{gputypes.BlendFactorSrcAlpha, SRC_ALPHA},
		{gputypes.BlendFactorOneMinusSrcAlpha, ONE_MINUS_SRC_ALPHA},
	}
	for _, tt := range tests {
		if got := glBlendFactor(tt.in); got != tt.want {
			t.Errorf("glBlendFactor(%v) = 0x%x, want 0x%x", tt.in, got, tt.want)
		}
	}
}
