package ra

// TexParams describes a texture to create. All fields are fixed at
// creation time.
type TexParams struct {
	// Dimensions is 1, 2 or 3.
	Dimensions int

	// W, H, D are the texture extents. H and D are 1 for lower
	// dimensionalities.
	W, H, D int

	// Format is the texture format, taken from the device's format
	// table (or a dummy format for wrapped foreign objects).
	Format *Format

	// RenderSrc marks the texture as usable as a sampling source.
	RenderSrc bool

	// RenderDst marks the texture as usable as a render target. The
	// format must be Renderable.
	RenderDst bool

	// SrcLinear enables linear filtering when sampling.
	SrcLinear bool

	// SrcRepeat enables coordinate wrapping when sampling.
	SrcRepeat bool

	// NonNormalized marks a rectangle texture addressed by pixel
	// coordinates instead of [0,1]. 2D only.
	NonNormalized bool

	// ExternalOES marks an external/opaque image source (e.g. a video
	// decoder surface). 2D only.
	ExternalOES bool

	// InitialData optionally initializes the texture at creation; it is
	// consumed by TexCreate and not retained.
	InitialData []byte
}

// Tex is a GPU-owned texture. Ownership is exclusive to the component
// that created it; use TexFree to destroy it and nil the handle in one
// step.
type Tex struct {
	// Params is the creation description. InitialData is cleared after
	// creation.
	Params TexParams

	// Priv is backend-private data.
	Priv any
}

// MappedBuffer is a CPU-visible, persistently-mapped GPU upload buffer.
// After an upload sourced from the buffer, it becomes reusable only
// once its completion fence signals; poll with Device.PollMappedBuffer
// from the render loop, never block.
type MappedBuffer struct {
	// Data is the persistently mapped memory. Valid until
	// DestroyMappedBuffer.
	Data []byte

	// Priv is backend-private data (buffer object and fence).
	Priv any
}
