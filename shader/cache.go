// Package shader assembles GLSL shaders from text fragments and uniform
// declarations, compiles them through an ra.Device and memoizes the
// compiled passes by content.
//
// The cache is used in a strict accumulate/dispatch cycle: callers add
// body text and uniform values, then call DispatchDraw or
// DispatchCompute. Dispatch generates the final shader text, reuses a
// previously compiled pass when the generated text (and fixed-function
// state) is identical, runs it with only the uniform values that
// changed since the pass last ran, and resets the accumulation state
// for the next cycle.
//
// Identical generation is the common case in a render loop, so after
// the first few frames dispatch degenerates to a hash lookup plus a
// handful of uniform updates.
package shader

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ra"
)

// defaultMaxEntries bounds the number of memoized passes. The set of
// distinct shaders a renderer generates is small and stable; reaching
// the bound means configurations are churning, and everything is
// dropped at once rather than guessing at a victim.
const defaultMaxEntries = 48

// Options configures a Cache.
type Options struct {
	// Dir enables the disk cache for compiled program binaries when
	// non-empty. See SetCacheDir.
	Dir string

	// MaxEntries overrides the in-memory entry bound (default 48).
	MaxEntries int
}

// uniformVal is the raw storage for one pending or shadowed uniform
// value. Only the fields selected by the input type are meaningful.
type uniformVal struct {
	f   [9]float32
	i   [4]int32
	tex *ra.Tex
	buf uint32
}

// uniform is one accumulated uniform for the current cycle.
type uniform struct {
	input ra.Input

	// glslType is the declaration type name ("float", "vec2",
	// "sampler2D", ...).
	glslType string

	// imgFormat is the image layout format qualifier (storage images
	// only).
	imgFormat string

	// bufFormat is the storage block body (buffers only).
	bufFormat string

	v uniformVal
}

// entry is one memoized compiled pass.
type entry struct {
	pass *ra.RenderPass

	// failed entries are kept as negative results so a broken shader is
	// compiled (and reported) once, not once per frame.
	failed bool

	// cached shadows the uniform values last sent to the GPU, indexed
	// like the pass inputs.
	cached []uniformVal

	// total is the full cache key text; hash is its fnv-1a short
	// circuit.
	total string
	hash  uint64

	timer timer
}

// Cache accumulates shader fragments and dispatches compiled passes.
// A Cache is bound to one ra.Device and, like the device, confined to
// the rendering thread.
type Cache struct {
	dev        ra.Device
	maxEntries int
	cacheDir   string

	needsReset bool
	errState   error

	preludeText []byte
	headerText  []byte
	text        []byte

	uniforms []uniform
	exts     []string

	nextTextureUnit int
	nextImageUnit   int
	nextBufferBind  int

	blendEnabled  bool
	blendSrcRGB   gputypes.BlendFactor
	blendDstRGB   gputypes.BlendFactor
	blendSrcAlpha gputypes.BlendFactor
	blendDstAlpha gputypes.BlendFactor

	entries []*entry
}

// New creates a shader cache on dev.
func New(dev ra.Device, opts Options) *Cache {
	c := &Cache{
		dev:        dev,
		maxEntries: opts.MaxEntries,
		cacheDir:   opts.Dir,
	}
	if c.maxEntries <= 0 {
		c.maxEntries = defaultMaxEntries
	}
	c.reset()
	return c
}

// Destroy releases all compiled passes. The Cache must not be used
// afterwards.
func (c *Cache) Destroy() {
	if c == nil {
		return
	}
	c.evictAll()
	c.reset()
}

// SetCacheDir sets (or disables, with "") the directory for compiled
// program binaries. Takes effect for passes compiled afterwards.
func (c *Cache) SetCacheDir(dir string) {
	c.cacheDir = dir
}

// Error returns the latched compile error, if any. The latch survives
// dispatches so a caller polling once per frame observes failures that
// occurred in between; clear it with ResetError.
func (c *Cache) Error() error {
	return c.errState
}

// ResetError clears the error latch.
func (c *Cache) ResetError() {
	c.errState = nil
}

// reset discards the accumulation state of the current cycle. Compiled
// entries and their uniform shadows survive.
func (c *Cache) reset() {
	c.preludeText = c.preludeText[:0]
	c.headerText = c.headerText[:0]
	c.text = c.text[:0]
	c.uniforms = c.uniforms[:0]
	c.exts = c.exts[:0]
	c.nextTextureUnit = 1 // 0 stays free for the caller
	c.nextImageUnit = 1
	c.nextBufferBind = 1
	c.blendEnabled = false
	c.blendSrcRGB = 0
	c.blendDstRGB = 0
	c.blendSrcAlpha = 0
	c.blendDstAlpha = 0
	c.needsReset = false
}

func (c *Cache) checkAccumulate() {
	if c.needsReset {
		panic("shader: accumulation after dispatch without reset")
	}
}

// Add appends text to the main shader body.
func (c *Cache) Add(text string) {
	c.checkAccumulate()
	c.text = append(c.text, text...)
}

// Addf appends formatted text to the main shader body.
func (c *Cache) Addf(format string, args ...any) {
	c.checkAccumulate()
	c.text = fmt.Appendf(c.text, format, args...)
}

// AddHeaderf appends formatted text to the header section, emitted
// before main(). Function definitions go here.
func (c *Cache) AddHeaderf(format string, args ...any) {
	c.checkAccumulate()
	c.headerText = fmt.Appendf(c.headerText, format, args...)
}

// AddPreludef appends formatted text to the prelude section, emitted
// before the header. Macros the header depends on go here.
func (c *Cache) AddPreludef(format string, args ...any) {
	c.checkAccumulate()
	c.preludeText = fmt.Appendf(c.preludeText, format, args...)
}

// EnableExtension adds a #extension directive to the generated shader.
// Duplicates are merged.
func (c *Cache) EnableExtension(name string) {
	c.checkAccumulate()
	for _, e := range c.exts {
		if e == name {
			return
		}
	}
	c.exts = append(c.exts, name)
}

// SetBlend enables fixed-function blending for this cycle's draw.
func (c *Cache) SetBlend(srcRGB, dstRGB, srcAlpha, dstAlpha gputypes.BlendFactor) {
	c.checkAccumulate()
	c.blendEnabled = true
	c.blendSrcRGB = srcRGB
	c.blendDstRGB = dstRGB
	c.blendSrcAlpha = srcAlpha
	c.blendDstAlpha = dstAlpha
}

// findUniform returns the accumulated uniform with the given name,
// appending a new one on first use. Redeclaring a name with a different
// shape is a caller bug.
func (c *Cache) findUniform(name string, typ ra.VarType, dimV, dimM int) *uniform {
	c.checkAccumulate()
	for i := range c.uniforms {
		u := &c.uniforms[i]
		if u.input.Name == name {
			if u.input.Type != typ || u.input.DimV != dimV || u.input.DimM != dimM {
				panic("shader: uniform " + name + " redeclared with different type")
			}
			return u
		}
	}
	in := ra.Input{Name: name, Type: typ, DimV: dimV, DimM: dimM}
	switch typ {
	case ra.VarTypeTex:
		in.Binding = c.nextTextureUnit
		c.nextTextureUnit++
	case ra.VarTypeImgW:
		in.Binding = c.nextImageUnit
		c.nextImageUnit++
	case ra.VarTypeSSBO:
		in.Binding = c.nextBufferBind
		c.nextBufferBind++
	}
	c.uniforms = append(c.uniforms, uniform{input: in})
	return &c.uniforms[len(c.uniforms)-1]
}

// Uniform1f sets a float uniform.
func (c *Cache) Uniform1f(name string, v float32) {
	u := c.findUniform(name, ra.VarTypeFloat, 1, 1)
	u.glslType = "float"
	u.v.f[0] = v
}

// Uniform1i sets an int uniform.
func (c *Cache) Uniform1i(name string, v int32) {
	u := c.findUniform(name, ra.VarTypeInt, 1, 1)
	u.glslType = "int"
	u.v.i[0] = v
}

// UniformVec2 sets a vec2 uniform.
func (c *Cache) UniformVec2(name string, v [2]float32) {
	u := c.findUniform(name, ra.VarTypeFloat, 2, 1)
	u.glslType = "vec2"
	copy(u.v.f[:], v[:])
}

// UniformVec3 sets a vec3 uniform.
func (c *Cache) UniformVec3(name string, v [3]float32) {
	u := c.findUniform(name, ra.VarTypeFloat, 3, 1)
	u.glslType = "vec3"
	copy(u.v.f[:], v[:])
}

// UniformMat2 sets a mat2 uniform from 4 values. transpose indicates
// row-major input; the transposition happens here because GLSL ES
// forbids it at upload time.
func (c *Cache) UniformMat2(name string, transpose bool, v [4]float32) {
	u := c.findUniform(name, ra.VarTypeFloat, 2, 2)
	u.glslType = "mat2"
	copy(u.v.f[:], v[:])
	if transpose {
		u.v.f[1], u.v.f[2] = u.v.f[2], u.v.f[1]
	}
}

// UniformMat3 sets a mat3 uniform from 9 values, transposing row-major
// input like UniformMat2.
func (c *Cache) UniformMat3(name string, transpose bool, v [9]float32) {
	u := c.findUniform(name, ra.VarTypeFloat, 3, 3)
	u.glslType = "mat3"
	copy(u.v.f[:], v[:])
	if transpose {
		for i := 0; i < 3; i++ {
			for j := i + 1; j < 3; j++ {
				a, b := i*3+j, j*3+i
				u.v.f[a], u.v.f[b] = u.v.f[b], u.v.f[a]
			}
		}
	}
}

// UniformTexture binds a texture for sampling. The sampler type is
// derived from the texture's dimensionality and format; the texture
// unit is assigned automatically.
func (c *Cache) UniformTexture(name string, tex *ra.Tex) {
	u := c.findUniform(name, ra.VarTypeTex, 1, 1)
	u.glslType = samplerType(tex)
	u.v.tex = tex
}

// UniformImage2DWO binds a texture as a write-only storage image.
// Requires ra.CapCompute.
func (c *Cache) UniformImage2DWO(name string, tex *ra.Tex) {
	u := c.findUniform(name, ra.VarTypeImgW, 1, 1)
	u.glslType = "image2D"
	if tex.Params.Format.CType == ra.CTypeUint {
		u.glslType = "uimage2D"
	}
	u.imgFormat = tex.Params.Format.GLSLFormat
	u.v.tex = tex
}

// SSBO declares a std430 storage buffer block with the given body and
// binds the native buffer object to it. Requires ra.CapCompute.
func (c *Cache) SSBO(name string, buffer uint32, format string) {
	u := c.findUniform(name, ra.VarTypeSSBO, 1, 1)
	u.bufFormat = format
	u.v.buf = buffer
}

// samplerType returns the GLSL sampler type for a texture.
func samplerType(tex *ra.Tex) string {
	p := &tex.Params
	prefix := ""
	if p.Format.CType == ra.CTypeUint {
		prefix = "u"
	}
	switch {
	case p.NonNormalized:
		return prefix + "sampler2DRect"
	case p.ExternalOES:
		return "samplerExternalOES"
	}
	switch p.Dimensions {
	case 1:
		return prefix + "sampler1D"
	case 3:
		return prefix + "sampler3D"
	default:
		return prefix + "sampler2D"
	}
}

// uniformEqual reports whether the pending value matches the shadow.
// Opaque types (textures, images, buffers) never match; they are
// re-bound on every dispatch.
func uniformEqual(in *ra.Input, a, b *uniformVal) bool {
	size := ra.InputDataSize(in)
	if size == 0 {
		return false
	}
	switch in.Type {
	case ra.VarTypeInt:
		n := size / 4
		for i := 0; i < n; i++ {
			if a.i[i] != b.i[i] {
				return false
			}
		}
	default:
		n := size / 4
		for i := 0; i < n; i++ {
			if a.f[i] != b.f[i] {
				return false
			}
		}
	}
	return true
}

// inputData returns the value payload for the backend, aliasing the
// entry's shadow storage for primitives.
func inputData(in *ra.Input, v *uniformVal) any {
	switch in.Type {
	case ra.VarTypeInt:
		return v.i[:ra.InputDataSize(in)/4]
	case ra.VarTypeFloat:
		return v.f[:ra.InputDataSize(in)/4]
	case ra.VarTypeTex, ra.VarTypeImgW:
		return v.tex
	case ra.VarTypeSSBO:
		return v.buf
	}
	return nil
}

// updateUniforms diffs the accumulated values against the entry's
// shadows and returns only the changed ones.
func (c *Cache) updateUniforms(e *entry) []ra.InputVal {
	var values []ra.InputVal
	for n := range c.uniforms {
		u := &c.uniforms[n]
		un := &e.cached[n]
		if uniformEqual(&u.input, &u.v, un) {
			continue
		}
		*un = u.v
		values = append(values, ra.InputVal{Index: n, Data: inputData(&u.input, un)})
	}
	return values
}

// evictAll drops every memoized pass.
func (c *Cache) evictAll() {
	for _, e := range c.entries {
		if e.pass != nil {
			c.dev.RenderPassDestroy(e.pass)
		}
	}
	c.entries = nil
}

// hashTotal is the fnv-1a short circuit over the cache key text.
func hashTotal(total string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(total))
	return h.Sum64()
}

// DispatchDraw generates the accumulated fragment shader (plus a
// passthrough vertex shader for the given vertex layout), compiles or
// reuses the pass and draws vertexCount vertices covering the whole
// target. The accumulation state is reset afterwards regardless of the
// outcome.
func (c *Cache) DispatchDraw(target *ra.Tex, attribs []ra.Input, vertexStride int, vertices []byte, vertexCount int) (Timing, error) {
	defer c.reset()

	e, err := c.lookupOrCreate(ra.RenderPassRaster, attribs, vertexStride)
	if err != nil {
		return Timing{}, err
	}
	values := c.updateUniforms(e)

	full := ra.Rect{X1: target.Params.W, Y1: target.Params.H}
	start := time.Now()
	c.dev.RenderPassRun(&ra.RenderPassRun{
		Pass:        e.pass,
		Values:      values,
		Target:      target,
		VertexData:  vertices,
		VertexCount: vertexCount,
		Viewport:    full,
		Scissors:    full,
	})
	e.timer.record(time.Since(start))
	return e.timer.stats(), nil
}

// DispatchCompute generates the accumulated compute shader, compiles or
// reuses the pass and dispatches w*h*d work groups. The work group
// size must have been declared in the shader text. The accumulation
// state is reset afterwards regardless of the outcome.
func (c *Cache) DispatchCompute(w, h, d int) (Timing, error) {
	defer c.reset()

	e, err := c.lookupOrCreate(ra.RenderPassCompute, nil, 0)
	if err != nil {
		return Timing{}, err
	}
	values := c.updateUniforms(e)

	start := time.Now()
	c.dev.RenderPassRun(&ra.RenderPassRun{
		Pass:          e.pass,
		Values:        values,
		ComputeGroups: [3]int{w, h, d},
	})
	e.timer.record(time.Since(start))
	return e.timer.stats(), nil
}
