package gl

import (
	"github.com/gogpu/ra"
)

type glFormatFlags uint32

const (
	// fmtFilter marks formats that support linear filtering.
	fmtFilter glFormatFlags = 1 << iota

	// fmtRender marks color-renderable formats.
	fmtRender

	// fmtF16 marks formats stored as float16 but uploaded as float32.
	fmtF16

	// fmtLA marks legacy LUMINANCE_ALPHA semantics.
	fmtLA
)

type glAvail uint32

const (
	// availGL2 is desktop OpenGL 2.1 (legacy unsized/luminance formats).
	availGL2 glAvail = 1 << iota

	// availGL3 is desktop OpenGL 3.0 and later (sized core formats).
	availGL3

	// availES2 is OpenGL ES 2.0.
	availES2

	// availES3 is OpenGL ES 3.0 and later.
	availES3

	// availAppleRGB422 requires the GL_APPLE_rgb_422 extension.
	availAppleRGB422
)

// glFormat is one row of the static format table. componentBits is the
// storage size per component for regular formats; packed formats
// override the layout in buildFormats.
type glFormat struct {
	name           string
	internalFormat int
	format         uint32
	typ            uint32
	componentBits  int
	ctype          ra.CType
	flags          glFormatFlags
	avail          glAvail
}

var glFormats = []glFormat{
	// Legacy unsized formats. These are the only filterable formats on
	// GL 2.1 and ES 2.0 class hardware.
	{"luminance", LUMINANCE, LUMINANCE, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter, availGL2 | availES2},
	{"luminance_alpha", LUMINANCE_ALPHA, LUMINANCE_ALPHA, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtLA, availGL2 | availES2},
	{"rgb", RGB, RGB, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL2 | availES2},
	{"rgba", RGBA, RGBA, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL2 | availES2},

	// Sized 8-bit unorm.
	{"r8", R8, RED, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3 | availES3},
	{"rg8", RG8, RG, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3 | availES3},
	{"rgb8", RGB8, RGB, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3 | availES3},
	{"rgba8", RGBA8, RGBA, UNSIGNED_BYTE, 8, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3 | availES3},

	// 16-bit unorm. Desktop only; the delivered depth is probed at
	// device creation and may be lower than the storage size.
	{"r16", R16, RED, UNSIGNED_SHORT, 16, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3},
	{"rg16", RG16, RG, UNSIGNED_SHORT, 16, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3},
	{"rgba16", RGBA16, RGBA, UNSIGNED_SHORT, 16, ra.CTypeUnorm, fmtFilter | fmtRender, availGL3},

	// Half float, transferred as float32 so uploads skip CPU-side
	// conversion.
	{"r16f", R16F, RED, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender | fmtF16, availGL3},
	{"rg16f", RG16F, RG, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender | fmtF16, availGL3},
	{"rgba16f", RGBA16F, RGBA, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender | fmtF16, availGL3},

	// Full float.
	{"r32f", R32F, RED, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender, availGL3},
	{"rg32f", RG32F, RG, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender, availGL3},
	{"rgba32f", RGBA32F, RGBA, FLOAT, 32, ra.CTypeFloat, fmtFilter | fmtRender, availGL3},

	// Unsigned integer. Not filterable; the plane-matching fallback when
	// no unorm variant exists.
	{"r8ui", R8UI, RED_INTEGER, UNSIGNED_BYTE, 8, ra.CTypeUint, fmtRender, availGL3 | availES3},
	{"rg8ui", RG8UI, RG_INTEGER, UNSIGNED_BYTE, 8, ra.CTypeUint, fmtRender, availGL3 | availES3},
	{"rgba8ui", RGBA8UI, RGBA_INTEGER, UNSIGNED_BYTE, 8, ra.CTypeUint, fmtRender, availGL3 | availES3},
	{"r16ui", R16UI, RED_INTEGER, UNSIGNED_SHORT, 16, ra.CTypeUint, fmtRender, availGL3 | availES3},
	{"rg16ui", RG16UI, RG_INTEGER, UNSIGNED_SHORT, 16, ra.CTypeUint, fmtRender, availGL3 | availES3},
	{"rgba16ui", RGBA16UI, RGBA_INTEGER, UNSIGNED_SHORT, 16, ra.CTypeUint, fmtRender, availGL3 | availES3},

	// Packed formats mapping one pixel format natively. Their layouts
	// are overridden below.
	{"rgb565", RGB565, RGB, UNSIGNED_SHORT_5_6_5, 0, ra.CTypeUnorm, fmtFilter | fmtRender, availGL2 | availES2},
	{"appleyp", RGB, RGB_422_APPLE, UNSIGNED_SHORT_8_8_APL, 0, ra.CTypeUnorm, fmtFilter, availAppleRGB422},
}

// formatComponents returns the component count implied by the GL pixel
// transfer format.
func formatComponents(format uint32) int {
	switch format {
	case RED, RED_INTEGER, LUMINANCE:
		return 1
	case RG, RG_INTEGER, LUMINANCE_ALPHA:
		return 2
	case RGB, RGB_INTEGER, RGB_422_APPLE:
		return 3
	case RGBA, RGBA_INTEGER:
		return 4
	}
	return 0
}

// availMask computes the context-class availability mask of f.
func availMask(f *Functions) glAvail {
	var m glAvail
	if f.ES == 0 {
		if f.Version >= 210 {
			m |= availGL2
		}
		if f.Version >= 300 {
			m |= availGL3
		}
	} else {
		if f.ES >= 200 {
			m |= availES2
		}
		if f.ES >= 300 {
			m |= availES3
		}
	}
	if f.HasExtension("GL_APPLE_rgb_422") {
		m |= availAppleRGB422
	}
	return m
}

// texFormat is the backend-private data hung off ra.Format.Priv.
type texFormat struct {
	internalFormat int
	format         uint32
	typ            uint32
}

// buildFormats enumerates the ra formats supported by this context.
// depth16 is the probed delivered depth of 16-bit unorm formats;
// canRender reports whether framebuffer objects are usable at all.
func buildFormats(f *Functions, depth16 int, canRender bool) []*ra.Format {
	avail := availMask(f)
	var res []*ra.Format
	for i := range glFormats {
		g := &glFormats[i]
		if g.avail&avail == 0 {
			continue
		}
		fmt := &ra.Format{
			Name:           g.name,
			CType:          g.ctype,
			NumComponents:  formatComponents(g.format),
			LuminanceAlpha: g.flags&fmtLA != 0,
			LinearFilter:   g.flags&fmtFilter != 0,
			Renderable:     g.flags&fmtRender != 0 && canRender,
			Class:          ra.Regular{},
			Priv:           &texFormat{g.internalFormat, g.format, g.typ},
		}
		switch g.name {
		case "rgb565":
			fmt.PixelSize = 2
			fmt.ComponentSize = [4]int{5, 6, 5}
			fmt.ComponentDepth = fmt.ComponentSize
			fmt.Class = rgb565Class()
		case "appleyp":
			// Packed UYVY; one macropixel carries a shared chroma pair.
			fmt.PixelSize = 2
			fmt.ComponentSize = [4]int{8, 8, 8}
			fmt.ComponentDepth = fmt.ComponentSize
			fmt.Class = appleypClass()
		default:
			// Sized 1/2/4-component formats double as image layout
			// qualifiers; legacy unsized and 3-component formats cannot
			// back storage images.
			if g.avail&(availGL3|availES3) != 0 && fmt.NumComponents != 3 {
				fmt.GLSLFormat = g.name
			}
			fmt.PixelSize = g.componentBits / 8 * fmt.NumComponents
			for n := 0; n < fmt.NumComponents; n++ {
				fmt.ComponentSize[n] = g.componentBits
				depth := g.componentBits
				if g.flags&fmtF16 != 0 {
					depth = 16
				}
				if g.ctype == ra.CTypeUnorm && depth > depth16 {
					depth = depth16
				}
				fmt.ComponentDepth[n] = depth
			}
		}
		// The literal descriptors resolve to the carrying format itself.
		if sp, ok := fmt.Class.(ra.Special); ok {
			sp.Desc.Planes[0] = fmt
		}
		res = append(res, fmt)
	}
	return res
}

// rgb565Class is the literal plane mapping for the rgb565 pixel format.
func rgb565Class() ra.FormatClass {
	return ra.Special{
		PixelFormat: "rgb565",
		Desc: &ra.ImageFormatDesc{
			NumPlanes: 1,
			Components: [4][4]uint8{
				{ra.ChanR, ra.ChanG, ra.ChanB},
			},
			ComponentBits: 5,
			ChromaW:       1,
			ChromaH:       1,
		},
	}
}

// appleypClass is the literal plane mapping for packed UYVY via the
// Apple rgb_422 extension. Sampling yields the luma in G and the chroma
// pair in R/B.
func appleypClass() ra.FormatClass {
	return ra.Special{
		PixelFormat: "uyvy",
		Desc: &ra.ImageFormatDesc{
			NumPlanes: 1,
			Components: [4][4]uint8{
				{ra.ChanG, ra.ChanB, ra.ChanR},
			},
			ComponentBits: 8,
			ChromaW:       2,
			ChromaH:       1,
		},
	}
}

// determine16BitDepth probes how many bits of a 16-bit normalized
// texture the driver actually delivers. Some drivers store r16 as 8
// bits internally; plane matching must know the real depth.
func determine16BitDepth(f *Functions) int {
	if f.ES != 0 || f.Version < 300 {
		// No 16-bit normalized formats in the table anyway.
		return 8
	}
	if f.GetTexLevelParameteriv == nil {
		return 16
	}
	tex := f.GenTexture()
	f.BindTexture(TEXTURE_2D, tex)
	f.TexImage2D(TEXTURE_2D, R16, 16, 16, RED, UNSIGNED_SHORT, nil)
	depth := f.GetTexLevelParameteriv(TEXTURE_2D, 0, TEXTURE_RED_SIZE)
	f.BindTexture(TEXTURE_2D, 0)
	f.DeleteTexture(tex)
	if depth <= 0 || depth > 16 {
		return 16
	}
	return depth
}
