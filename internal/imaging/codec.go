// Package imaging wraps raster decode/encode behind a small surface so the
// pipeline never touches codec details directly. All functions are stateless
// and safe for concurrent use.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is a supported output format.
type Format string

const (
	FormatPNG  Format = "PNG"
	FormatWEBP Format = "WEBP"
)

// ParseFormat parses a caller-supplied format string (case-insensitive).
// Empty input selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "PNG":
		return FormatPNG, nil
	case "WEBP":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (use PNG or WEBP)", s)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatWEBP {
		return "image/webp"
	}
	return "image/png"
}

// Ext returns the lowercase file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatWEBP {
		return "webp"
	}
	return "png"
}

// Decode decodes raster bytes into a pixel buffer. Registered formats:
// jpeg, png, gif, bmp, tiff, webp.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EnsureAlpha returns img as an NRGBA buffer, adding a transparency channel
// when the source lacks one. The pixel dimensions are preserved.
func EnsureAlpha(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Encode re-encodes a pixel buffer per the requested format.
// PNG output is lossless at the default (mid-range) compression level.
// WEBP output is lossy at the given quality, switching to lossless when
// quality is 100.
func Encode(img image.Image, f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch f {
	case FormatWEBP:
		opts := &webp.Options{Quality: float32(quality)}
		if quality >= 100 {
			opts.Lossless = true
		}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode webp: %w", err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// OutputFilename derives the suggested download filename from the original
// upload name: the stem with a no_bg_ prefix and the output extension.
func OutputFilename(original string, f Format) string {
	name := filepath.Base(original)
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "image"
	}
	return "no_bg_" + stem + "." + f.Ext()
}
