package e2e

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rembgd/internal/httpapi"
	"rembgd/internal/imaging"
	"rembgd/internal/pipeline"
	"rembgd/pkg/types"
)

// stubSession re-encodes the input as PNG with one cleared pixel, standing
// in for a real segmentation runtime.
type stubSession struct {
	delay time.Duration
}

func (s *stubSession) Remove(ctx context.Context, data []byte) ([]byte, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	buf := imaging.EnsureAlpha(img)
	if b := buf.Bounds(); !b.Empty() {
		buf.SetNRGBA(b.Min.X, b.Min.Y, color.NRGBA{})
	}
	return imaging.Encode(buf, imaging.FormatPNG, 0)
}

func (s *stubSession) Close() error { return nil }

type stubAdapter struct{ session *stubSession }

func (a *stubAdapter) Open(string) (pipeline.Session, error) { return a.session, nil }

// newServer builds a full HTTP server around a pipeline backed by the stub
// engine. The mutate func may adjust the pipeline config.
func newServer(t *testing.T, sess *stubSession, mutate func(*pipeline.Config)) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "u2net.onnx")
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write temp model %s: %v", path, err)
	}
	if sess == nil {
		sess = &stubSession{}
	}
	cfg := pipeline.Config{
		Registry: []types.Model{{ID: "u2net", Name: "u2net", Path: path}},
		Model:    "u2net",
		Adapter:  &stubAdapter{session: sess},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(p))
	t.Cleanup(func() {
		srv.Close()
		p.Close()
	})
	return srv
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// postUpload performs a real multipart POST against the server.
func postUpload(t *testing.T, url, filename string, data []byte, fields map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	return resp
}
