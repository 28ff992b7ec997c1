package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"rembgd/internal/imaging"
	"rembgd/pkg/types"
)

// fakeAdapter opens fakeSession instances for tests; no real model runtime.
type fakeAdapter struct {
	openErr error
	session *fakeSession
}

func (a *fakeAdapter) Open(modelPath string) (Session, error) {
	if a.openErr != nil {
		return nil, a.openErr
	}
	if a.session == nil {
		a.session = &fakeSession{}
	}
	a.session.modelPath = modelPath
	return a.session, nil
}

// fakeSession is a deterministic engine that re-encodes the input as PNG
// with an alpha channel. It asserts that no two units are inside Remove
// concurrently and records call accounting for the tests.
type fakeSession struct {
	modelPath string

	removeErr error
	rawOutput []byte // overrides the re-encode when set (e.g. garbage bytes)
	delay     time.Duration
	panicMsg  string

	calls      int64
	inside     int64
	overlapped int64
	lastDone   atomic.Int64 // unix nanos of the last Remove return
	closed     atomic.Bool
	closedAt   atomic.Int64
}

func (s *fakeSession) Remove(ctx context.Context, data []byte) ([]byte, error) {
	atomic.AddInt64(&s.calls, 1)
	if !atomic.CompareAndSwapInt64(&s.inside, 0, 1) {
		atomic.AddInt64(&s.overlapped, 1)
	}
	defer func() {
		atomic.StoreInt64(&s.inside, 0)
		s.lastDone.Store(time.Now().UnixNano())
	}()
	if s.closed.Load() {
		return nil, errors.New("session used after close")
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.removeErr != nil {
		return nil, s.removeErr
	}
	if s.rawOutput != nil {
		return s.rawOutput, nil
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	// Simulate a cutout by clearing the top-left pixel, so the encoded
	// PNG keeps its alpha channel.
	buf := imaging.EnsureAlpha(img)
	if b := buf.Bounds(); !b.Empty() {
		buf.SetNRGBA(b.Min.X, b.Min.Y, color.NRGBA{})
	}
	return imaging.Encode(buf, imaging.FormatPNG, 0)
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	s.closedAt.Store(time.Now().UnixNano())
	return nil
}

func (s *fakeSession) callCount() int64 { return atomic.LoadInt64(&s.calls) }

// helper: create a model file under a temp dir and return a registry for it.
func testRegistry(t *testing.T, id string) []types.Model {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, id+".onnx")
	if err := os.WriteFile(p, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	return []types.Model{{ID: id, Name: id, Path: p}}
}

// newTestPipeline builds a ready Pipeline backed by a fake engine. The
// mutate func may adjust the Config before construction.
func newTestPipeline(t *testing.T, mutate func(*Config)) (*Pipeline, *fakeSession) {
	t.Helper()
	sess := &fakeSession{}
	cfg := Config{
		Registry: testRegistry(t, "u2net"),
		Model:    "u2net",
		Adapter:  &fakeAdapter{session: sess},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	p, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p, sess
}

// makeJPEG returns an opaque JPEG of the given dimensions.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}
