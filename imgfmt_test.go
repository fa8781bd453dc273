package ra

import "testing"

func TestImageFormatDescriptorPlanar(t *testing.T) {
	d := &fakeDevice{formats: standardFormats()}

	tests := []struct {
		pf         *PixelFormat
		wantPlanes []string
	}{
		{PixelFormatGray8, []string{"r8"}},
		{PixelFormatGray16, []string{"r16"}},
		{PixelFormatRGBA, []string{"rgba8"}},
		{PixelFormatRGBA64, []string{"rgba16"}},
		{PixelFormatRGB0, []string{"rgba8"}},
		{PixelFormatYUV420P, []string{"r8", "r8", "r8"}},
		{PixelFormatYUV420P16, []string{"r16", "r16", "r16"}},
		{PixelFormatNV12, []string{"r8", "rg8"}},
	}
	for _, tt := range tests {
		desc, ok := ImageFormatDescriptor(d, tt.pf)
		if !ok {
			t.Errorf("%s: no descriptor", tt.pf.Name)
			continue
		}
		if desc.NumPlanes != len(tt.wantPlanes) {
			t.Errorf("%s: %d planes, want %d", tt.pf.Name, desc.NumPlanes, len(tt.wantPlanes))
			continue
		}
		for n, want := range tt.wantPlanes {
			if desc.Planes[n].Name != want {
				t.Errorf("%s: plane %d = %q, want %q", tt.pf.Name, n, desc.Planes[n].Name, want)
			}
		}
	}
}

func TestImageFormatDescriptorChroma(t *testing.T) {
	d := &fakeDevice{formats: standardFormats()}

	desc, ok := ImageFormatDescriptor(d, PixelFormatYUV420P)
	if !ok {
		t.Fatal("yuv420p: no descriptor")
	}
	if desc.ChromaW != 2 || desc.ChromaH != 2 {
		t.Errorf("yuv420p chroma = %dx%d, want 2x2", desc.ChromaW, desc.ChromaH)
	}

	desc, ok = ImageFormatDescriptor(d, PixelFormatYUV444P)
	if !ok {
		t.Fatal("yuv444p: no descriptor")
	}
	if desc.ChromaW != 1 || desc.ChromaH != 1 {
		t.Errorf("yuv444p chroma = %dx%d, want 1x1", desc.ChromaW, desc.ChromaH)
	}
}

func TestImageFormatDescriptorComponentMapping(t *testing.T) {
	d := &fakeDevice{formats: standardFormats()}

	desc, ok := ImageFormatDescriptor(d, PixelFormatBGRA)
	if !ok {
		t.Fatal("bgra: no descriptor")
	}
	want := [4]uint8{ChanB, ChanG, ChanR, ChanA}
	if desc.Components[0] != want {
		t.Errorf("bgra components = %v, want %v", desc.Components[0], want)
	}
}

func TestImageFormatDescriptorRejectsDepthTruncation(t *testing.T) {
	// A 10-bit-in-16 source (negative pad) must not resolve on a device
	// whose 16-bit formats deliver only 8 meaningful bits: the MSBs of
	// the samples would be dropped.
	formats := []*Format{
		regularFormat("r8", CTypeUnorm, 1, 1, 8, true),
		regularFormat("r16", CTypeUnorm, 2, 1, 8, true),
	}
	d := &fakeDevice{formats: formats}

	if _, ok := ImageFormatDescriptor(d, PixelFormatYUV420P10); ok {
		t.Error("yuv420p10 resolved on a device with 8-bit deep 16-bit formats")
	}

	// Full 16-bit sources survive: truncation only loses LSBs there.
	if _, ok := ImageFormatDescriptor(d, PixelFormatYUV420P16); !ok {
		t.Error("yuv420p16 did not resolve on a device with 8-bit deep 16-bit formats")
	}
}

func TestImageFormatDescriptorUintFallback(t *testing.T) {
	// Without normalized 16-bit formats the planes degrade to unsigned
	// integer formats of the same layout.
	formats := []*Format{
		regularFormat("r16ui", CTypeUint, 2, 1, 16, false),
	}
	d := &fakeDevice{formats: formats}

	desc, ok := ImageFormatDescriptor(d, PixelFormatYUV420P16)
	if !ok {
		t.Fatal("yuv420p16: no descriptor with uint formats available")
	}
	for n := 0; n < desc.NumPlanes; n++ {
		if desc.Planes[n].Name != "r16ui" {
			t.Errorf("plane %d = %q, want r16ui", n, desc.Planes[n].Name)
		}
	}
}

func TestImageFormatDescriptorRejectsMixedCTypes(t *testing.T) {
	// Luma resolves to unorm, the two-channel chroma plane only to
	// uint; one image must not mix sampling types across planes.
	formats := []*Format{
		regularFormat("r8", CTypeUnorm, 1, 1, 8, true),
		regularFormat("rg8ui", CTypeUint, 1, 2, 8, false),
	}
	d := &fakeDevice{formats: formats}

	if _, ok := ImageFormatDescriptor(d, PixelFormatNV12); ok {
		t.Error("nv12 resolved with mixed unorm/uint planes")
	}
}

func TestImageFormatDescriptorSpecial(t *testing.T) {
	want := &ImageFormatDesc{
		NumPlanes:     1,
		Components:    [4][4]uint8{{ChanR, ChanG, ChanB}},
		ComponentBits: 5,
		ChromaW:       1,
		ChromaH:       1,
	}
	rgb565 := &Format{
		Name:          "rgb565",
		CType:         CTypeUnorm,
		NumComponents: 3,
		PixelSize:     2,
		LinearFilter:  true,
		Class:         Special{PixelFormat: "rgb565", Desc: want},
	}
	d := &fakeDevice{formats: []*Format{rgb565}}

	desc, ok := ImageFormatDescriptor(d, PixelFormatRGB565)
	if !ok {
		t.Fatal("rgb565: no descriptor")
	}
	if desc.NumPlanes != 1 || desc.Components != want.Components {
		t.Errorf("rgb565 descriptor = %+v, want %+v", desc, *want)
	}

	// Packed formats resolve only through a special texture format.
	empty := &fakeDevice{formats: standardFormats()}
	if _, ok := ImageFormatDescriptor(empty, PixelFormatRGB565); ok {
		t.Error("rgb565 resolved without a special format in the table")
	}
}

func TestRegisterPixelFormat(t *testing.T) {
	pf := &PixelFormat{
		Name: "test-gbrp", ComponentSize: 1,
		Planes: []PixelPlane{
			{Components: []uint8{ChanG}},
			{Components: []uint8{ChanB}},
			{Components: []uint8{ChanR}},
		},
		ChromaW: 1, ChromaH: 1,
	}
	RegisterPixelFormat(pf)
	if PixelFormatByName("test-gbrp") != pf {
		t.Fatal("registered pixel format not found by name")
	}

	d := &fakeDevice{formats: standardFormats()}
	desc, ok := ImageFormatDescriptor(d, pf)
	if !ok || desc.NumPlanes != 3 {
		t.Errorf("test-gbrp descriptor = %+v, ok=%v", desc, ok)
	}
}
