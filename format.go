package ra

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// CType classifies the channel representation of a texture format.
type CType int

// Channel types.
const (
	// CTypeUnknown marks dummy formats wrapped around foreign objects.
	CTypeUnknown CType = iota

	// CTypeUnorm is unsigned normalized (sampled as [0,1] float).
	CTypeUnorm

	// CTypeUint is unsigned integer (sampled as integer, not filterable
	// on most hardware).
	CTypeUint

	// CTypeFloat is floating point (including reduced-precision float16
	// storage).
	CTypeFloat
)

// String returns the channel type name used in format dumps.
func (c CType) String() string {
	switch c {
	case CTypeUnorm:
		return "unorm"
	case CTypeUint:
		return "uint"
	case CTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// FormatClass is the plane-mapping behavior of a Format. A format is
// either Regular, in which case image-format plane mapping is derived
// algorithmically, or Special, in which case it carries a literal
// override descriptor for one packed pixel format.
type FormatClass interface {
	formatClass()
}

// Regular marks a format whose plane mapping is computed from its
// component layout.
type Regular struct{}

func (Regular) formatClass() {}

// Special marks a hardware-native packed format (e.g. RGB565) that maps
// one pixel format directly, bypassing the per-plane matching algorithm.
type Special struct {
	// PixelFormat names the pixel format this texture format represents
	// natively.
	PixelFormat string

	// Desc is the literal plane/channel mapping for PixelFormat.
	Desc *ImageFormatDesc
}

func (Special) formatClass() {}

// Format is an immutable texture format descriptor, enumerated once at
// device initialization and shared by reference afterwards.
type Format struct {
	// Name is the backend's canonical format name, e.g. "rgba8", "r16f".
	Name string

	// CType is the channel representation shared by all components.
	CType CType

	// NumComponents is the number of components per pixel (1..4).
	NumComponents int

	// PixelSize is the total byte size of one pixel, including padding.
	PixelSize int

	// ComponentSize is the storage bit size of each component.
	ComponentSize [4]int

	// ComponentDepth is the number of meaningful bits per component.
	// May be lower than ComponentSize when the driver stores wider than
	// the precision it actually delivers.
	ComponentDepth [4]int

	// LuminanceAlpha marks legacy LUMINANCE_ALPHA two-component formats
	// whose components replicate across channels when sampled.
	LuminanceAlpha bool

	// GLSLFormat is the image layout format qualifier for this format
	// ("rgba8", "r16f", ...), or empty when the format cannot back a
	// storage image.
	GLSLFormat string

	// LinearFilter reports whether the format supports linear filtering.
	LinearFilter bool

	// Renderable reports whether the format can back a render target.
	Renderable bool

	// Class is Regular or Special.
	Class FormatClass

	// Priv is backend-private data, owned by the Device that enumerated
	// the format.
	Priv any
}

// IsRegular reports whether the format is tightly packed with no
// external padding and the same bit size and depth in all components.
// Only regular formats participate in plane matching.
func (f *Format) IsRegular() bool {
	if f.PixelSize == 0 || f.NumComponents == 0 {
		return false
	}
	if _, special := f.Class.(Special); special {
		return false
	}
	for n := 1; n < f.NumComponents; n++ {
		if f.ComponentSize[n] != f.ComponentSize[0] ||
			f.ComponentDepth[n] != f.ComponentDepth[0] {
			return false
		}
	}
	return f.ComponentSize[0]*f.NumComponents == f.PixelSize*8
}

// FindUnormFormat returns a regular, linearly filterable unsigned
// normalized format with the requested layout, or nil.
func FindUnormFormat(d Device, bytesPerComponent, nComponents int) *Format {
	for _, f := range d.Formats() {
		if f.CType == CTypeUnorm && f.NumComponents == nComponents &&
			f.PixelSize == bytesPerComponent*nComponents &&
			f.ComponentDepth[0] == bytesPerComponent*8 &&
			f.LinearFilter && f.IsRegular() {
			return f
		}
	}
	return nil
}

// FindUintFormat returns a regular unsigned integer format with the
// requested layout, or nil. Integer formats are not filterable.
func FindUintFormat(d Device, bytesPerComponent, nComponents int) *Format {
	for _, f := range d.Formats() {
		if f.CType == CTypeUint && f.NumComponents == nComponents &&
			f.PixelSize == bytesPerComponent*nComponents &&
			f.ComponentDepth[0] == bytesPerComponent*8 &&
			f.IsRegular() {
			return f
		}
	}
	return nil
}

// FindFloat16Format returns a filterable regular format that stores
// float16 internally but transfers 32-bit floats, so uploads need no
// 32→16 bit conversion on the CPU. Returns nil if none exists.
func FindFloat16Format(d Device, nComponents int) *Format {
	for _, f := range d.Formats() {
		if f.CType == CTypeFloat && f.NumComponents == nComponents &&
			f.PixelSize == 4*nComponents &&
			f.ComponentDepth[0] == 16 &&
			f.LinearFilter && f.IsRegular() {
			return f
		}
	}
	return nil
}

// FindNamedFormat returns the format with the given canonical name, or
// nil.
func FindNamedFormat(d Device, name string) *Format {
	for _, f := range d.Formats() {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// findPlaneFormat is FindUnormFormat with a degraded fallback: when no
// normalized variant exists, an unsigned integer format of identical
// layout is accepted (unfiltered, but correct).
func findPlaneFormat(d Device, bytes, nChannels int) *Format {
	if f := FindUnormFormat(d, bytes, nChannels); f != nil {
		return f
	}
	return FindUintFormat(d, bytes, nChannels)
}

// LogTexFormats dumps the device's format table at debug level.
func LogTexFormats(d Device) {
	log := Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	log.Debug("texture formats", "count", len(d.Formats()))
	for _, f := range d.Formats() {
		var comps strings.Builder
		for i := 0; i < f.NumComponents; i++ {
			if i > 0 {
				comps.WriteByte(' ')
			}
			fmt.Fprintf(&comps, "%d", f.ComponentSize[i])
			if f.ComponentSize[i] != f.ComponentDepth[i] {
				fmt.Fprintf(&comps, "/%d", f.ComponentDepth[i])
			}
		}
		log.Debug("format",
			"name", f.Name,
			"ctype", f.CType.String(),
			"components", f.NumComponents,
			"pixelSize", f.PixelSize,
			"layout", comps.String(),
			"linearFilter", f.LinearFilter,
			"renderable", f.Renderable,
			"luminanceAlpha", f.LuminanceAlpha,
		)
	}
}
