package gl

import (
	"github.com/gogpu/ra"
)

// fboDummyFormat describes wrapped foreign framebuffers, whose real
// format is unknown to the wrapper. It never appears in Device.Formats
// and never matches plane lookups.
var fboDummyFormat = &ra.Format{
	Name:       "unknown_fbo",
	CType:      ra.CTypeUnknown,
	Renderable: true,
	Class:      ra.Regular{},
}

// TexDummyFormat stands in for wrapped foreign textures whose native
// format has no counterpart in the device table. It is filterable, so
// such textures can still be sampled, but it carries no transfer
// layout: uploads through it are rejected, and it never appears in
// Device.Formats or matches plane lookups.
var TexDummyFormat = &ra.Format{
	Name:         "unknown_tex",
	CType:        ra.CTypeUnknown,
	LinearFilter: true,
	Class:        ra.Regular{},
}

// findSimilarFormat resolves a host-described format against the
// device's table. Formats already enumerated by this device pass
// through; otherwise the first table entry with the same channel type
// and layout is chosen.
func (d *device) findSimilarFormat(f *ra.Format) *ra.Format {
	if f == nil {
		return nil
	}
	if _, ok := f.Priv.(*texFormat); ok {
		return f
	}
	for _, cand := range d.formats {
		if cand.CType == f.CType && cand.NumComponents == f.NumComponents &&
			cand.PixelSize == f.PixelSize {
			return cand
		}
	}
	return nil
}

// WrapTexture wraps a foreign GL texture the host created (for example
// a hardware decoder output) as an ra.Tex on d. params carries the
// texture's real extents; its format is resolved against d's format
// table, falling back to TexDummyFormat when nothing similar exists
// (the texture stays samplable but cannot be uploaded to). The
// underlying GL object stays owned by the host and is not deleted when
// the wrapper is destroyed.
//
// d must be a device created by this package.
func WrapTexture(d ra.Device, params *ra.TexParams, glTexture uint32) (*ra.Tex, error) {
	dev, ok := d.(*device)
	if !ok {
		return nil, ra.ErrUnsupported
	}
	target, err := dev.texTarget(params)
	if err != nil {
		return nil, err
	}
	format := dev.findSimilarFormat(params.Format)
	if format == nil {
		format = TexDummyFormat
	}
	tex := &ra.Tex{Params: *params}
	tex.Params.Format = format
	tex.Params.InitialData = nil
	tex.Priv = &glTex{
		target:  target,
		texture: glTexture,
	}
	return tex, nil
}

// WrapFramebuffer wraps a foreign GL framebuffer (including the default
// framebuffer 0) as a render-target ra.Tex of the given size. The
// wrapper carries a dummy format; it can be cleared and drawn to but
// not sampled. The underlying object stays owned by the host.
//
// d must be a device created by this package.
func WrapFramebuffer(d ra.Device, glFBO uint32, w, h int) (*ra.Tex, error) {
	if _, ok := d.(*device); !ok {
		return nil, ra.ErrUnsupported
	}
	return &ra.Tex{
		Params: ra.TexParams{
			Dimensions: 2,
			W:          w,
			H:          h,
			D:          1,
			Format:     fboDummyFormat,
			RenderDst:  true,
		},
		Priv: &glTex{
			target: TEXTURE_2D,
			fbo:    glFBO,
		},
	}, nil
}
