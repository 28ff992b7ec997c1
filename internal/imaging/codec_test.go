package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{"png", FormatPNG, false},
		{" png ", FormatPNG, false},
		{"WEBP", FormatWEBP, false},
		{"webp", FormatWEBP, false},
		{"jpeg", "", true},
		{"gif", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): want error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatContentTypeAndExt(t *testing.T) {
	if ct := FormatPNG.ContentType(); ct != "image/png" {
		t.Fatalf("png content type = %q", ct)
	}
	if ct := FormatWEBP.ContentType(); ct != "image/webp" {
		t.Fatalf("webp content type = %q", ct)
	}
	if ext := FormatPNG.Ext(); ext != "png" {
		t.Fatalf("png ext = %q", ext)
	}
	if ext := FormatWEBP.Ext(); ext != "webp" {
		t.Fatalf("webp ext = %q", ext)
	}
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeEnsureAlphaEncodeRoundTrip(t *testing.T) {
	src := testJPEG(t, 40, 24)

	img, err := Decode(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	buf := EnsureAlpha(img)
	if got := buf.Bounds(); got.Dx() != 40 || got.Dy() != 24 {
		t.Fatalf("dimensions changed: %v", got)
	}
	buf.SetNRGBA(0, 0, color.NRGBA{})

	out, err := Encode(buf, FormatPNG, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("re-decode png: %v", err)
	}
	if _, ok := decoded.(*image.NRGBA); !ok {
		t.Fatalf("png did not keep the alpha channel, got %T", decoded)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("want decode error for garbage input")
	}
}

func TestEnsureAlphaPreservesTransparency(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 0})
	img.SetNRGBA(1, 1, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	out := EnsureAlpha(img)
	if out != img {
		t.Fatal("NRGBA input should pass through unchanged")
	}
	if _, _, _, a := out.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("transparent pixel lost its alpha: %d", a)
	}
}

func TestEncodeWEBPSignature(t *testing.T) {
	img, err := Decode(testJPEG(t, 32, 32))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := Encode(EnsureAlpha(img), FormatWEBP, 80)
	if err != nil {
		t.Fatalf("encode webp: %v", err)
	}
	if len(out) < 12 || string(out[:4]) != "RIFF" || string(out[8:12]) != "WEBP" {
		t.Fatalf("bad webp container header")
	}
}

func TestOutputFilename(t *testing.T) {
	cases := []struct {
		original string
		format   Format
		want     string
	}{
		{"photo.jpg", FormatPNG, "no_bg_photo.png"},
		{"photo.jpeg", FormatWEBP, "no_bg_photo.webp"},
		{"archive.tar.png", FormatPNG, "no_bg_archive.tar.png"},
		{"/uploads/cat.bmp", FormatPNG, "no_bg_cat.png"},
		{"noext", FormatPNG, "no_bg_noext.png"},
		{".png", FormatPNG, "no_bg_image.png"},
		{"", FormatWEBP, "no_bg_image.webp"},
	}
	for _, tc := range cases {
		if got := OutputFilename(tc.original, tc.format); got != tc.want {
			t.Errorf("OutputFilename(%q, %s) = %q, want %q", tc.original, tc.format, got, tc.want)
		}
	}
}
