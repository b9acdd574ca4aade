// Package imagemeta decodes embedded images and derives descriptive metadata
// from their pixels.
//
// The analysis covers exposure (brightness, contrast), color (dominant colors,
// diversity, temperature), structure (edges, texture, symmetry, composition)
// and quality (sharpness, noise, compression artifacts), and combines them
// into a coarse content classification:
//
//	img, err := imagemeta.Decode(data)
//	if err != nil {
//		return err
//	}
//	md, err := imagemeta.New(imagemeta.DefaultConfig()).Analyze(img)
//
// Analysis is pure and deterministic. Large images are downscaled before
// analysis; dimension-derived fields always describe the original image.
package imagemeta
