package gl

import (
	"encoding/binary"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ra"
)

// glPass is the backend data behind ra.RenderPass.Priv.
type glPass struct {
	program uint32

	// uniformLoc holds the GL uniform location per pass input, -1 for
	// inputs resolved by binding point alone (images, buffers).
	uniformLoc []int

	// vbo is the streaming vertex buffer (raster passes only).
	vbo uint32

	// firstRun defers sampler-to-unit binding until the first execution.
	firstRun bool
}

func (d *device) compileShader(typ uint32, source string) (uint32, bool) {
	gl := d.gl
	shader := gl.CreateShader(typ)
	gl.ShaderSource(shader, source)
	gl.CompileShader(shader)
	ok := gl.GetShaderiv(shader, COMPILE_STATUS) != 0
	if !ok {
		ra.Logger().Error("shader compilation failed",
			"log", gl.GetShaderInfoLog(shader))
		ra.Logger().Debug("failed shader source", "source", source)
		gl.DeleteShader(shader)
		return 0, false
	}
	return shader, true
}

func (d *device) linkProgram(params *ra.RenderPassParams) (uint32, bool) {
	gl := d.gl
	program := gl.CreateProgram()

	var shaders []uint32
	attach := func(typ uint32, source string) bool {
		shader, ok := d.compileShader(typ, source)
		if !ok {
			return false
		}
		gl.AttachShader(program, shader)
		shaders = append(shaders, shader)
		return true
	}

	ok := false
	switch params.Type {
	case ra.RenderPassRaster:
		ok = attach(VERTEX_SHADER, params.VertexShader) &&
			attach(FRAGMENT_SHADER, params.FragShader)
		for n, attr := range params.VertexAttribs {
			gl.BindAttribLocation(program, n, attr.Name)
		}
	case ra.RenderPassCompute:
		ok = attach(COMPUTE_SHADER, params.ComputeShader)
	}

	if ok {
		gl.LinkProgram(program)
		ok = gl.GetProgramiv(program, LINK_STATUS) != 0
		if !ok {
			ra.Logger().Error("program link failed",
				"log", gl.GetProgramInfoLog(program))
		}
	}
	for _, s := range shaders {
		gl.DeleteShader(s)
	}
	if !ok {
		gl.DeleteProgram(program)
		return 0, false
	}
	return program, true
}

// loadProgramBinary restores a program from a previously exported
// binary. The first 4 bytes carry the driver's binary format tag.
func (d *device) loadProgramBinary(cached []byte) (uint32, bool) {
	gl := d.gl
	if gl.ProgramBinary == nil || len(cached) < 4 {
		return 0, false
	}
	format := binary.LittleEndian.Uint32(cached)
	program := gl.CreateProgram()
	gl.ProgramBinary(program, format, cached[4:])
	if gl.GetProgramiv(program, LINK_STATUS) == 0 {
		// Driver updates invalidate old binaries; recompiling from
		// source is the normal recovery.
		ra.Logger().Warn("cached program binary rejected, recompiling")
		gl.DeleteProgram(program)
		return 0, false
	}
	return program, true
}

// exportProgramBinary serializes the linked program for the disk cache,
// prefixed with the driver's binary format tag.
func (d *device) exportProgramBinary(program uint32) []byte {
	gl := d.gl
	if gl.GetProgramBinary == nil {
		return nil
	}
	data, format := gl.GetProgramBinary(program)
	if len(data) == 0 {
		return nil
	}
	out := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(out, format)
	copy(out[4:], data)
	return out
}

func (d *device) RenderPassCreate(params *ra.RenderPassParams) (*ra.RenderPass, error) {
	gl := d.gl
	if params.Type == ra.RenderPassCompute && d.caps&ra.CapCompute == 0 {
		return nil, ra.ErrUnsupported
	}

	pass := &ra.RenderPass{Params: *params.Copy()}
	priv := &glPass{firstRun: true}
	pass.Priv = priv

	program, ok := d.loadProgramBinary(params.CachedProgram)
	if !ok {
		program, ok = d.linkProgram(params)
		if !ok {
			return nil, ra.ErrCompileFailed
		}
		pass.Params.CachedProgram = d.exportProgramBinary(program)
	}
	priv.program = program

	priv.uniformLoc = make([]int, len(params.Inputs))
	for n := range params.Inputs {
		in := &params.Inputs[n]
		switch in.Type {
		case ra.VarTypeImgW, ra.VarTypeSSBO:
			// Resolved by the binding point in the shader text.
			priv.uniformLoc[n] = -1
		default:
			priv.uniformLoc[n] = gl.GetUniformLocation(program, in.Name)
		}
	}

	if params.Type == ra.RenderPassRaster {
		priv.vbo = gl.GenBuffer()
	}
	return pass, nil
}

func (d *device) RenderPassDestroy(pass *ra.RenderPass) {
	if pass == nil {
		return
	}
	priv := pass.Priv.(*glPass)
	if priv.vbo != 0 {
		d.gl.DeleteBuffer(priv.vbo)
	}
	d.gl.DeleteProgram(priv.program)
	pass.Priv = nil
}

// glBlendFactor maps the portable blend factor to the GL enum.
func glBlendFactor(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorZero:
		return ZERO
	case gputypes.BlendFactorOne:
		return ONE
	case gputypes.BlendFactorSrcAlpha:
		return SRC_ALPHA
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ONE_MINUS_SRC_ALPHA
	}
	ra.Logger().Warn("unsupported blend factor", "factor", int(f))
	return ZERO
}

// updateInput applies one changed input value.
func (d *device) updateInput(priv *glPass, in *ra.Input, loc int, data any) {
	gl := d.gl
	switch in.Type {
	case ra.VarTypeInt:
		v := data.([]int32)
		gl.Uniform1i(loc, v[0])
	case ra.VarTypeFloat:
		v := data.([]float32)
		switch {
		case in.DimM == 1:
			switch in.DimV {
			case 1:
				gl.Uniform1f(loc, v[0])
			case 2:
				gl.Uniform2f(loc, v[0], v[1])
			case 3:
				gl.Uniform3f(loc, v[0], v[1], v[2])
			case 4:
				gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
			}
		case in.DimM == 2 && in.DimV == 2:
			gl.UniformMatrix2fv(loc, v)
		case in.DimM == 3 && in.DimV == 3:
			gl.UniformMatrix3fv(loc, v)
		}
	case ra.VarTypeTex:
		tex := data.(*ra.Tex)
		tp := tex.Priv.(*glTex)
		gl.ActiveTexture(uint32(TEXTURE0 + in.Binding))
		gl.BindTexture(tp.target, tp.texture)
	case ra.VarTypeImgW:
		tex := data.(*ra.Tex)
		tp := tex.Priv.(*glTex)
		fmtp := tex.Params.Format.Priv.(*texFormat)
		gl.BindImageTexture(in.Binding, tp.texture, 0, false, 0,
			WRITE_ONLY, uint32(fmtp.internalFormat))
	case ra.VarTypeSSBO:
		buffer := data.(uint32)
		gl.BindBufferBase(SHADER_STORAGE_BUFFER, in.Binding, buffer)
	}
}

// unbindInput clears the binding established by updateInput so no state
// leaks past the run.
func (d *device) unbindInput(in *ra.Input, data any) {
	gl := d.gl
	switch in.Type {
	case ra.VarTypeTex:
		tex := data.(*ra.Tex)
		tp := tex.Priv.(*glTex)
		gl.ActiveTexture(uint32(TEXTURE0 + in.Binding))
		gl.BindTexture(tp.target, 0)
	case ra.VarTypeImgW:
		gl.BindImageTexture(in.Binding, 0, 0, false, 0, WRITE_ONLY, R8)
	case ra.VarTypeSSBO:
		gl.BindBufferBase(SHADER_STORAGE_BUFFER, in.Binding, 0)
	}
}

func vertexAttribGLType(t ra.VarType) (typ uint32, normalized bool) {
	switch t {
	case ra.VarTypeInt:
		return INT, false
	case ra.VarTypeByteUnorm:
		return UNSIGNED_BYTE, true
	default:
		return FLOAT, false
	}
}

func (d *device) RenderPassRun(run *ra.RenderPassRun) {
	gl := d.gl
	pass := run.Pass
	priv := pass.Priv.(*glPass)

	gl.UseProgram(priv.program)

	if priv.firstRun {
		// Sampler uniforms are bound to their units once; the units
		// never change over the pass lifetime.
		for n := range pass.Params.Inputs {
			in := &pass.Params.Inputs[n]
			if in.Type == ra.VarTypeTex {
				gl.Uniform1i(priv.uniformLoc[n], int32(in.Binding))
			}
		}
		priv.firstRun = false
	}

	for _, val := range run.Values {
		in := &pass.Params.Inputs[val.Index]
		d.updateInput(priv, in, priv.uniformLoc[val.Index], val.Data)
	}

	switch pass.Params.Type {
	case ra.RenderPassRaster:
		target := run.Target.Priv.(*glTex)
		gl.BindFramebuffer(FRAMEBUFFER, target.fbo)
		gl.Viewport(run.Viewport.X0, run.Viewport.Y0,
			run.Viewport.W(), run.Viewport.H())
		gl.Enable(SCISSOR_TEST)
		gl.Scissor(run.Scissors.X0, run.Scissors.Y0,
			run.Scissors.W(), run.Scissors.H())

		if pass.Params.EnableBlend {
			gl.Enable(BLEND)
			gl.BlendFuncSeparate(
				glBlendFactor(pass.Params.BlendSrcRGB),
				glBlendFactor(pass.Params.BlendDstRGB),
				glBlendFactor(pass.Params.BlendSrcAlpha),
				glBlendFactor(pass.Params.BlendDstAlpha))
		}

		gl.BindBuffer(ARRAY_BUFFER, priv.vbo)
		gl.BufferData(ARRAY_BUFFER, run.VertexData, STREAM_DRAW)
		for n, attr := range pass.Params.VertexAttribs {
			typ, normalized := vertexAttribGLType(attr.Type)
			gl.EnableVertexAttribArray(n)
			gl.VertexAttribPointer(n, attr.DimV, typ, normalized,
				pass.Params.VertexStride, attr.Offset)
		}

		gl.DrawArrays(TRIANGLES, 0, run.VertexCount)

		for n := range pass.Params.VertexAttribs {
			gl.DisableVertexAttribArray(n)
		}
		gl.BindBuffer(ARRAY_BUFFER, 0)
		if pass.Params.EnableBlend {
			gl.Disable(BLEND)
		}
		gl.Disable(SCISSOR_TEST)
		gl.BindFramebuffer(FRAMEBUFFER, 0)

	case ra.RenderPassCompute:
		gl.DispatchCompute(run.ComputeGroups[0], run.ComputeGroups[1],
			run.ComputeGroups[2])
		gl.MemoryBarrier(TEXTURE_FETCH_BARRIER_BIT)
	}

	for _, val := range run.Values {
		d.unbindInput(&pass.Params.Inputs[val.Index], val.Data)
	}
	gl.ActiveTexture(TEXTURE0)
	gl.UseProgram(0)
}
