package ra

import "github.com/gogpu/gputypes"

// VarType is the type of a render pass input (uniform, texture, buffer
// or vertex attribute).
type VarType int

// Input variable types.
const (
	// VarTypeInt is a single int.
	VarTypeInt VarType = iota

	// VarTypeFloat is a float scalar, vector or matrix.
	VarTypeFloat

	// VarTypeByteUnorm is a normalized unsigned byte vector (vertex
	// attributes only).
	VarTypeByteUnorm

	// VarTypeTex is a sampled texture.
	VarTypeTex

	// VarTypeImgW is a write-only storage image.
	VarTypeImgW

	// VarTypeSSBO is a read/write shader storage buffer.
	VarTypeSSBO
)

// varTypeSize returns the byte size of one element, or 0 for
// non-primitive types such as textures.
func varTypeSize(t VarType) int {
	switch t {
	case VarTypeInt:
		return 4
	case VarTypeFloat:
		return 4
	case VarTypeByteUnorm:
		return 1
	default:
		return 0
	}
}

// Input declares one render pass input or vertex attribute.
type Input struct {
	// Name is the GLSL identifier.
	Name string

	// Type is the variable type.
	Type VarType

	// DimV is the vector dimension (1..4).
	DimV int

	// DimM is the number of matrix rows (1 for non-matrices, 2..3 for
	// mat2/mat3).
	DimM int

	// Binding is the texture unit, image unit or buffer binding for
	// opaque types; unused for primitives.
	Binding int

	// Offset is the byte offset of a vertex attribute within one
	// vertex; unused for uniforms.
	Offset int
}

// InputDataSize returns the byte size of the value data an InputVal
// carries for this input. It returns 0 for non-primitive types.
func InputDataSize(in *Input) int {
	return varTypeSize(in.Type) * in.DimV * in.DimM
}

// RenderPassType selects rasterization or compute execution.
type RenderPassType int

// Render pass types.
const (
	// RenderPassRaster is a vertex+fragment draw.
	RenderPassRaster RenderPassType = iota + 1

	// RenderPassCompute is a compute dispatch.
	RenderPassCompute
)

// RenderPassParams is the immutable description of a draw or compute
// program. Pass it to Device.RenderPassCreate; the device deep-copies
// it, so the caller may reuse or free its buffers afterwards.
type RenderPassParams struct {
	// Type selects raster or compute.
	Type RenderPassType

	// Inputs declares the uniform/texture/buffer inputs, in the index
	// order used by InputVal.Index.
	Inputs []Input

	// VertexAttribs declares the vertex layout (raster only).
	VertexAttribs []Input

	// VertexStride is the byte size of one vertex (raster only).
	VertexStride int

	// VertexShader and FragShader are the raster shader sources.
	VertexShader string
	FragShader   string

	// ComputeShader is the compute shader source.
	ComputeShader string

	// CachedProgram optionally carries a previously exported compiled
	// binary. After RenderPassCreate, the created pass's params hold
	// the binary exported by the backend (if it can export binaries).
	CachedProgram []byte

	// EnableBlend enables fixed-function blending with the factors
	// below (raster only).
	EnableBlend    bool
	BlendSrcRGB    gputypes.BlendFactor
	BlendDstRGB    gputypes.BlendFactor
	BlendSrcAlpha  gputypes.BlendFactor
	BlendDstAlpha  gputypes.BlendFactor
}

// Copy returns a deep copy of p.
func (p *RenderPassParams) Copy() *RenderPassParams {
	res := *p
	res.Inputs = append([]Input(nil), p.Inputs...)
	res.VertexAttribs = append([]Input(nil), p.VertexAttribs...)
	res.CachedProgram = append([]byte(nil), p.CachedProgram...)
	return &res
}

// RenderPass is a compiled, backend-resident program with resolved
// input bindings. Created by Device.RenderPassCreate, destroyed with
// Device.RenderPassDestroy.
type RenderPass struct {
	// Params is the device's deep copy of the creation parameters, with
	// CachedProgram replaced by the exported binary (if any).
	Params RenderPassParams

	// Priv is backend-private data.
	Priv any
}

// InputVal carries one changed input value for a render pass run.
type InputVal struct {
	// Index selects the input in RenderPassParams.Inputs.
	Index int

	// Data holds the value: []float32 for floats/vectors/matrices
	// (column-major), []int32 for ints, *Tex for textures and storage
	// images, uint32 (native buffer object) for storage buffers.
	Data any
}

// RenderPassRun describes one execution of a compiled render pass.
type RenderPassRun struct {
	// Pass is the compiled program to run.
	Pass *RenderPass

	// Values lists the input values that changed since the previous run
	// of this pass. Unchanged inputs keep their GPU-side state.
	Values []InputVal

	// Target is the render target (raster only). Must be RenderDst.
	Target *Tex

	// VertexData and VertexCount supply the vertex stream (raster
	// only), laid out per Params.VertexAttribs/VertexStride.
	VertexData  []byte
	VertexCount int

	// Viewport and Scissors bound the raster output.
	Viewport Rect
	Scissors Rect

	// ComputeGroups is the dispatch size (compute only).
	ComputeGroups [3]int
}
