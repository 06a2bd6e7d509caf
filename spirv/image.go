package spirv

import "cmp"

// ImageDescriptor is the shape of an image type. Descriptors are totally
// ordered so callers can use them as keys of an image type table.
type ImageDescriptor struct {
	Dim     Dim
	Depth   uint32
	Arrayed uint32
	MS      uint32
	Sampled uint32
	Format  ImageFormat
}

// Compare orders descriptors lexicographically by Dim, Depth, Arrayed, MS,
// Sampled and Format. It returns -1, 0 or +1.
func (d ImageDescriptor) Compare(o ImageDescriptor) int {
	if c := cmp.Compare(d.Dim, o.Dim); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Depth, o.Depth); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Arrayed, o.Arrayed); c != 0 {
		return c
	}
	if c := cmp.Compare(d.MS, o.MS); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Sampled, o.Sampled); c != 0 {
		return c
	}
	return cmp.Compare(d.Format, o.Format)
}

// IsOCLImage reports whether the descriptor leaves sampling and format
// unspecified, as OpenCL image types do.
func (d ImageDescriptor) IsOCLImage() bool {
	return d.Sampled == 0 && d.Format == ImageFormatUnknown
}

var oclImageDescriptors = map[string]ImageDescriptor{
	"image1d_t":                  {Dim: Dim1D},
	"image1d_buffer_t":           {Dim: DimBuffer},
	"image1d_array_t":            {Dim: Dim1D, Arrayed: 1},
	"image2d_t":                  {Dim: Dim2D},
	"image2d_array_t":            {Dim: Dim2D, Arrayed: 1},
	"image2d_depth_t":            {Dim: Dim2D, Depth: 1},
	"image2d_array_depth_t":      {Dim: Dim2D, Depth: 1, Arrayed: 1},
	"image2d_msaa_t":             {Dim: Dim2D, MS: 1},
	"image2d_array_msaa_t":       {Dim: Dim2D, Arrayed: 1, MS: 1},
	"image2d_msaa_depth_t":       {Dim: Dim2D, Depth: 1, MS: 1},
	"image2d_array_msaa_depth_t": {Dim: Dim2D, Depth: 1, Arrayed: 1, MS: 1},
	"image3d_t":                  {Dim: Dim3D},
}

// OCLImageDescriptor returns the descriptor of an OpenCL C image type name
// such as "image2d_depth_t".
func OCLImageDescriptor(name string) (ImageDescriptor, bool) {
	d, ok := oclImageDescriptors[name]
	return d, ok
}
