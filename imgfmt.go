package ra

// Channel indices used in plane component mappings. 0 means "unused".
const (
	ChanR = 1 + iota
	ChanG
	ChanB
	ChanA
)

// For planar YUV the luma/chroma channels reuse the RGBA slots: Y=1,
// U=2, V=3, alpha=4.

// PixelPlane describes one plane of a regular pixel format: which image
// channels it carries, in texture component order.
type PixelPlane struct {
	// Components lists the image channels (ChanR..ChanA) stored in this
	// plane, one entry per texture component.
	Components []uint8
}

// PixelFormat describes a regular multi-plane CPU pixel format: every
// component has the same byte size in every plane, with optional
// padding bits and chroma subsampling.
type PixelFormat struct {
	// Name is the canonical format name, e.g. "yuv420p".
	Name string

	// ComponentSize is the byte size of one component.
	ComponentSize int

	// ComponentPad is the number of padding bits per component. 0 for
	// fully used components; negative when the most significant bits
	// are unused (e.g. -6 for 10-bit samples in 16-bit storage).
	ComponentPad int

	// Planes lists the planes in memory order.
	Planes []PixelPlane

	// ChromaW and ChromaH are the chroma subsampling factors
	// (1 = no subsampling, 2 = half resolution).
	ChromaW, ChromaH int
}

// ImageFormatDesc maps a pixel format onto 1..4 texture formats, one
// per plane, with per-plane channel order. It is the contract between
// CPU-side image memory and what a shader samples.
type ImageFormatDesc struct {
	// NumPlanes is the number of planes/textures.
	NumPlanes int

	// Planes holds the selected texture format for each plane.
	Planes [4]*Format

	// Components maps, for each plane, texture component index to image
	// channel (ChanR..ChanA, 0 = unused).
	Components [4][4]uint8

	// ComponentBits is the storage bit width of one component as
	// uploaded (ComponentSize * 8 of the source format).
	ComponentBits int

	// ComponentPad is carried over from the source format; negative
	// when meaningful bits do not fill the storage width.
	ComponentPad int

	// ChromaW and ChromaH are the chroma subsampling factors.
	ChromaW, ChromaH int
}

// Stock pixel formats. The set mirrors what video sources commonly
// deliver; hosts may extend it with RegisterPixelFormat.
var (
	PixelFormatGray8 = &PixelFormat{
		Name: "gray8", ComponentSize: 1,
		Planes:  []PixelPlane{{Components: []uint8{ChanR}}},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatGray16 = &PixelFormat{
		Name: "gray16", ComponentSize: 2,
		Planes:  []PixelPlane{{Components: []uint8{ChanR}}},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatRGBA = &PixelFormat{
		Name: "rgba", ComponentSize: 1,
		Planes:  []PixelPlane{{Components: []uint8{ChanR, ChanG, ChanB, ChanA}}},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatBGRA = &PixelFormat{
		Name: "bgra", ComponentSize: 1,
		Planes:  []PixelPlane{{Components: []uint8{ChanB, ChanG, ChanR, ChanA}}},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatRGBA64 = &PixelFormat{
		Name: "rgba64", ComponentSize: 2,
		Planes:  []PixelPlane{{Components: []uint8{ChanR, ChanG, ChanB, ChanA}}},
		ChromaW: 1, ChromaH: 1,
	}
	// RGB with an unused fourth byte. The fourth texture component is
	// uploaded but not mapped to any image channel.
	PixelFormatRGB0 = &PixelFormat{
		Name: "rgb0", ComponentSize: 1,
		Planes:  []PixelPlane{{Components: []uint8{ChanR, ChanG, ChanB, 0}}},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatYUV420P = &PixelFormat{
		Name: "yuv420p", ComponentSize: 1,
		Planes: []PixelPlane{
			{Components: []uint8{1}},
			{Components: []uint8{2}},
			{Components: []uint8{3}},
		},
		ChromaW: 2, ChromaH: 2,
	}
	PixelFormatYUV420P10 = &PixelFormat{
		Name: "yuv420p10", ComponentSize: 2, ComponentPad: -6,
		Planes: []PixelPlane{
			{Components: []uint8{1}},
			{Components: []uint8{2}},
			{Components: []uint8{3}},
		},
		ChromaW: 2, ChromaH: 2,
	}
	PixelFormatYUV420P16 = &PixelFormat{
		Name: "yuv420p16", ComponentSize: 2,
		Planes: []PixelPlane{
			{Components: []uint8{1}},
			{Components: []uint8{2}},
			{Components: []uint8{3}},
		},
		ChromaW: 2, ChromaH: 2,
	}
	PixelFormatYUV444P = &PixelFormat{
		Name: "yuv444p", ComponentSize: 1,
		Planes: []PixelPlane{
			{Components: []uint8{1}},
			{Components: []uint8{2}},
			{Components: []uint8{3}},
		},
		ChromaW: 1, ChromaH: 1,
	}
	PixelFormatNV12 = &PixelFormat{
		Name: "nv12", ComponentSize: 1,
		Planes: []PixelPlane{
			{Components: []uint8{1}},
			{Components: []uint8{2, 3}},
		},
		ChromaW: 2, ChromaH: 2,
	}

	// Packed formats without a regular per-plane layout. These resolve
	// only through a Special texture format carrying a literal
	// descriptor.
	PixelFormatRGB565 = &PixelFormat{Name: "rgb565"}
	PixelFormatUYVY   = &PixelFormat{Name: "uyvy"}
)

var pixelFormats = []*PixelFormat{
	PixelFormatGray8, PixelFormatGray16,
	PixelFormatRGBA, PixelFormatBGRA, PixelFormatRGBA64, PixelFormatRGB0,
	PixelFormatYUV420P, PixelFormatYUV420P10, PixelFormatYUV420P16,
	PixelFormatYUV444P, PixelFormatNV12,
	PixelFormatRGB565, PixelFormatUYVY,
}

// RegisterPixelFormat adds a host-defined pixel format to the registry
// consulted by PixelFormatByName and LogImageFormats. Call during
// initialization, before any device use; the registry is not locked.
func RegisterPixelFormat(pf *PixelFormat) {
	pixelFormats = append(pixelFormats, pf)
}

// PixelFormatByName returns the registered pixel format with the given
// name, or nil.
func PixelFormatByName(name string) *PixelFormat {
	for _, pf := range pixelFormats {
		if pf.Name == name {
			return pf
		}
	}
	return nil
}

// isRegular reports whether the pixel format carries a derivable plane
// layout.
func (pf *PixelFormat) isRegular() bool {
	return len(pf.Planes) > 0 && pf.ComponentSize > 0
}

// ImageFormatDescriptor selects the texture formats needed to represent
// pf in a shader, one per plane, with textures using the same memory
// organization as on the CPU. For >8 bit sources this may select
// integer formats when the device has no normalized 16-bit formats.
//
// The second return value is false when no mapping exists. This is an
// expected negative result: callers must treat it as a normal miss and
// take a fallback path.
func ImageFormatDescriptor(d Device, pf *PixelFormat) (ImageFormatDesc, bool) {
	var res ImageFormatDesc

	if pf.isRegular() {
		ctype := CTypeUnknown
		res.NumPlanes = len(pf.Planes)
		res.ComponentBits = pf.ComponentSize * 8
		res.ComponentPad = pf.ComponentPad
		for n, plane := range pf.Planes {
			res.Planes[n] = findPlaneFormat(d, pf.ComponentSize, len(plane.Components))
			if res.Planes[n] == nil {
				return ImageFormatDesc{}, false
			}
			for i, c := range plane.Components {
				res.Components[n][i] = c
			}
			// Dropping LSBs when shifting would lead to dropped MSBs.
			if res.ComponentBits > res.Planes[n].ComponentDepth[0] &&
				res.ComponentPad < 0 {
				return ImageFormatDesc{}, false
			}
			// Renderer restriction: all planes of one image must share
			// one channel type.
			if ctype != CTypeUnknown && ctype != res.Planes[n].CType {
				return ImageFormatDesc{}, false
			}
			ctype = res.Planes[n].CType
		}
		res.ChromaW = pf.ChromaW
		res.ChromaH = pf.ChromaH
		return res, true
	}

	for _, f := range d.Formats() {
		if sp, ok := f.Class.(Special); ok && sp.PixelFormat == pf.Name {
			return *sp.Desc, true
		}
	}

	return ImageFormatDesc{}, false
}

// LogImageFormats dumps, at debug level, how every registered pixel
// format resolves on the device.
func LogImageFormats(d Device) {
	log := Logger()
	for _, pf := range pixelFormats {
		desc, ok := ImageFormatDescriptor(d, pf)
		if !ok {
			log.Debug("image format unsupported", "name", pf.Name)
			continue
		}
		planes := make([]string, desc.NumPlanes)
		for n := 0; n < desc.NumPlanes; n++ {
			planes[n] = desc.Planes[n].Name
		}
		log.Debug("image format",
			"name", pf.Name,
			"planes", planes,
			"componentBits", desc.ComponentBits,
			"componentPad", desc.ComponentPad,
			"chroma", [2]int{desc.ChromaW, desc.ChromaH},
		)
	}
}
