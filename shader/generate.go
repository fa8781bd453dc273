package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/ra"
)

// attribGLSLType returns the GLSL type of a vertex attribute.
// Normalized byte attributes arrive in the shader as floats.
func attribGLSLType(in *ra.Input) string {
	var kinds [5]string
	switch in.Type {
	case ra.VarTypeInt:
		kinds = [5]string{"", "int", "ivec2", "ivec3", "ivec4"}
	default:
		kinds = [5]string{"", "float", "vec2", "vec3", "vec4"}
	}
	return kinds[in.DimV]
}

// commonHeader emits the directives shared by all shader stages:
// version, extensions, precision and compatibility defines.
func (c *Cache) commonHeader(w *strings.Builder, typ ra.RenderPassType) {
	glsl := c.dev.GLSL()

	es := ""
	if glsl.ES && glsl.Version >= 300 {
		es = " es"
	}
	fmt.Fprintf(w, "#version %d%s\n", glsl.Version, es)
	if typ == ra.RenderPassCompute {
		w.WriteString("#extension GL_ARB_compute_shader : enable\n")
	}
	for _, ext := range c.exts {
		fmt.Fprintf(w, "#extension %s : enable\n", ext)
	}
	if glsl.ES {
		w.WriteString("precision mediump float;\n")
	}
	// tex1D/tex3D paper over the texture function renaming in GLSL 1.30;
	// body text uses these names and the plain texture() call for 2D.
	if glsl.Version >= 130 {
		w.WriteString("#define tex1D texture\n")
		w.WriteString("#define tex3D texture\n")
	} else {
		w.WriteString("#define tex1D texture1D\n")
		w.WriteString("#define tex3D texture3D\n")
		w.WriteString("#define texture texture2D\n")
	}
	// Sample position for a texture used as a lookup table: cell
	// centers, not cell edges.
	w.WriteString("#define LUT_POS(x, lut_size)" +
		" mix(0.5 / (lut_size), 1.0 - 0.5 / (lut_size), (x))\n")
}

// uniformDecls emits the declarations for all accumulated uniforms.
func (c *Cache) uniformDecls(w *strings.Builder) {
	for i := range c.uniforms {
		u := &c.uniforms[i]
		switch u.input.Type {
		case ra.VarTypeImgW:
			fmt.Fprintf(w, "layout (binding=%d, %s) writeonly uniform %s %s;\n",
				u.input.Binding, u.imgFormat, u.glslType, u.input.Name)
		case ra.VarTypeSSBO:
			fmt.Fprintf(w, "layout (std430, binding=%d) buffer %s { %s };\n",
				u.input.Binding, u.input.Name, u.bufFormat)
		default:
			fmt.Fprintf(w, "uniform %s %s;\n", u.glslType, u.input.Name)
		}
	}
}

// generateRaster assembles the passthrough vertex shader and the
// fragment shader for the accumulated state.
func (c *Cache) generateRaster(attribs []ra.Input) (vert, frag string) {
	glsl := c.dev.GLSL()

	var vertHead, vertBody, fragVary strings.Builder
	c.commonHeader(&vertHead, ra.RenderPassRaster)

	inKw, outKw, fragInKw := "in", "out", "in"
	if glsl.Version < 130 {
		inKw, outKw, fragInKw = "attribute", "varying", "varying"
	}
	for n := range attribs {
		e := &attribs[n]
		typ := attribGLSLType(e)
		loc := ""
		if glsl.Version >= 300 {
			loc = fmt.Sprintf("layout(location=%d) ", n)
		}
		if e.Name == "position" {
			if e.Type != ra.VarTypeFloat || e.DimV != 2 || e.DimM != 1 {
				panic("shader: position attribute must be a float vec2")
			}
			// The vertex stage does nothing but set the raster position.
			fmt.Fprintf(&vertHead, "%s%s %s vertex_position;\n", loc, inKw, typ)
			vertBody.WriteString("gl_Position = vec4(vertex_position, 1.0, 1.0);\n")
			continue
		}
		fmt.Fprintf(&vertHead, "%s%s %s vertex_%s;\n", loc, inKw, typ, e.Name)
		fmt.Fprintf(&vertHead, "%s%s %s %s;\n", loc, outKw, typ, e.Name)
		fmt.Fprintf(&fragVary, "%s%s %s %s;\n", loc, fragInKw, typ, e.Name)
		fmt.Fprintf(&vertBody, "%s = vertex_%s;\n", e.Name, e.Name)
	}
	vertHead.WriteString("void main() {\n")
	vertHead.WriteString(vertBody.String())
	vertHead.WriteString("}\n")
	vert = vertHead.String()

	var f strings.Builder
	c.commonHeader(&f, ra.RenderPassRaster)
	f.WriteString(fragVary.String())
	if glsl.Version >= 130 {
		f.WriteString("out vec4 out_color;\n")
	}
	c.uniformDecls(&f)
	f.Write(c.preludeText)
	f.Write(c.headerText)
	f.WriteString("void main() {\n")
	f.WriteString("vec4 color = vec4(0.0, 0.0, 0.0, 1.0);\n")
	f.Write(c.text)
	if glsl.Version >= 130 {
		f.WriteString("out_color = color;\n")
	} else {
		f.WriteString("gl_FragColor = color;\n")
	}
	f.WriteString("}\n")
	frag = f.String()
	return vert, frag
}

// generateCompute assembles the compute shader for the accumulated
// state. The caller's header text must declare the work group size.
func (c *Cache) generateCompute() string {
	var w strings.Builder
	c.commonHeader(&w, ra.RenderPassCompute)
	c.uniformDecls(&w)
	w.Write(c.preludeText)
	w.Write(c.headerText)
	w.WriteString("void main() {\n")
	w.Write(c.text)
	w.WriteString("}\n")
	return w.String()
}

// cacheTotal builds the full cache key: every input that influences the
// compiled pass, so textual identity implies behavioral identity.
func (c *Cache) cacheTotal(typ ra.RenderPassType, vert, frag, comp string) string {
	var t strings.Builder
	fmt.Fprintf(&t, "type %d\n", typ)
	t.WriteString(frag)
	t.WriteString("\n")
	t.WriteString(vert)
	t.WriteString("\n")
	t.WriteString(comp)
	t.WriteString("\n")
	fmt.Fprintf(&t, "%v %d %d %d %d\n", c.blendEnabled,
		c.blendSrcRGB, c.blendDstRGB, c.blendSrcAlpha, c.blendDstAlpha)
	return t.String()
}

// lookupOrCreate generates the shader text for the accumulated state
// and returns the matching memoized entry, compiling a new pass on
// miss. After this call the accumulation state is frozen until reset.
func (c *Cache) lookupOrCreate(typ ra.RenderPassType, attribs []ra.Input, vertexStride int) (*entry, error) {
	if c.needsReset {
		panic("shader: dispatch without reset")
	}
	c.needsReset = true

	var vert, frag, comp string
	switch typ {
	case ra.RenderPassRaster:
		vert, frag = c.generateRaster(attribs)
	case ra.RenderPassCompute:
		comp = c.generateCompute()
	}
	total := c.cacheTotal(typ, vert, frag, comp)
	hash := hashTotal(total)

	for _, e := range c.entries {
		if e.hash == hash && e.total == total {
			if e.failed {
				c.errState = ra.ErrCompileFailed
				return nil, ra.ErrCompileFailed
			}
			return e, nil
		}
	}

	if len(c.entries) >= c.maxEntries {
		ra.Logger().Debug("shader cache full, evicting all entries",
			"entries", len(c.entries))
		c.evictAll()
	}

	e := &entry{total: total, hash: hash}
	c.entries = append(c.entries, e)

	params := &ra.RenderPassParams{
		Type:          typ,
		VertexShader:  vert,
		FragShader:    frag,
		ComputeShader: comp,
		VertexStride:  vertexStride,
		EnableBlend:   c.blendEnabled,
		BlendSrcRGB:   c.blendSrcRGB,
		BlendDstRGB:   c.blendDstRGB,
		BlendSrcAlpha: c.blendSrcAlpha,
		BlendDstAlpha: c.blendDstAlpha,
	}
	params.Inputs = make([]ra.Input, len(c.uniforms))
	for n := range c.uniforms {
		params.Inputs[n] = c.uniforms[n].input
	}
	// Attribute names are mangled so the passthrough outputs can reuse
	// the caller's names.
	params.VertexAttribs = make([]ra.Input, len(attribs))
	for n, a := range attribs {
		a.Name = "vertex_" + a.Name
		params.VertexAttribs[n] = a
	}

	key := c.diskKey(total)
	loaded := false
	if c.cacheDir != "" {
		params.CachedProgram = c.loadCachedProgram(key)
		loaded = len(params.CachedProgram) > 0
	}

	pass, err := c.dev.RenderPassCreate(params)
	if err != nil {
		e.failed = true
		c.errState = err
		log := ra.Logger()
		log.Error("shader pass creation failed", "err", err)
		for _, src := range []struct{ name, text string }{
			{"vertex", vert}, {"fragment", frag}, {"compute", comp},
		} {
			if src.text != "" {
				log.Debug("failed shader", "stage", src.name,
					"source", numberLines(src.text))
			}
		}
		return nil, err
	}
	e.pass = pass
	e.cached = make([]uniformVal, len(c.uniforms))

	if c.cacheDir != "" && !loaded && len(pass.Params.CachedProgram) > 0 {
		c.saveCachedProgram(key, pass.Params.CachedProgram)
	}
	return e, nil
}

// numberLines prefixes each source line with its number, the way
// drivers report compile errors.
func numberLines(src string) string {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	var w strings.Builder
	for n, line := range lines {
		fmt.Fprintf(&w, "[%3d] %s\n", n+1, line)
	}
	return w.String()
}
