package pipeline

import (
	"errors"
	"testing"

	"rembgd/pkg/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	if p.workers != defaultWorkers {
		t.Fatalf("expected default workers=%d got %d", defaultWorkers, p.workers)
	}
	if cap(p.queueCh) != defaultMaxQueueDepth {
		t.Fatalf("expected default queue depth=%d got %d", defaultMaxQueueDepth, cap(p.queueCh))
	}
	if p.maxWait != defaultMaxWait {
		t.Fatalf("expected default maxWait=%v got %v", defaultMaxWait, p.maxWait)
	}
	if p.maxUploadSize != defaultMaxUploadSize {
		t.Fatalf("expected default maxUploadSize=%d got %d", defaultMaxUploadSize, p.maxUploadSize)
	}
	if cap(p.engineCh) != 1 {
		t.Fatalf("engine exclusivity channel must have capacity 1, got %d", cap(p.engineCh))
	}
}

func TestNewReadyAfterInit(t *testing.T) {
	p, _ := newTestPipeline(t, nil)
	if !p.Ready() {
		t.Fatalf("expected pipeline ready after construction")
	}
	if p.Model().ID != "u2net" {
		t.Fatalf("unexpected model: %+v", p.Model())
	}
}

func TestNewModelNotFound(t *testing.T) {
	_, err := NewWithConfig(Config{
		Registry: []types.Model{{ID: "other", Path: "/nope/other.onnx"}},
		Model:    "u2net",
		Adapter:  &fakeAdapter{},
	})
	if err == nil || !IsEngineInit(err) {
		t.Fatalf("expected engine init error, got %v", err)
	}
}

func TestNewAdapterOpenFailure(t *testing.T) {
	reg := testRegistry(t, "u2net")
	_, err := NewWithConfig(Config{
		Registry: reg,
		Model:    "u2net",
		Adapter:  &fakeAdapter{openErr: errors.New("model file corrupt")},
	})
	if err == nil || !IsEngineInit(err) {
		t.Fatalf("expected engine init error, got %v", err)
	}
	if !IsEngine(err) {
		t.Fatalf("init failures must classify as engine errors, got %v", err)
	}
}

func TestNewInitEventsPublished(t *testing.T) {
	pub := NewMemoryPublisher()
	newTestPipeline(t, func(c *Config) { c.Publisher = pub })
	events := pub.Events()
	var names []string
	for _, e := range events {
		names = append(names, e.Name)
	}
	if len(names) < 2 || names[0] != "engine_init_start" || names[len(names)-1] != "engine_init_done" {
		t.Fatalf("unexpected init events: %v", names)
	}
}

func TestResolveModelEmptyIDSingleEntry(t *testing.T) {
	reg := testRegistry(t, "u2net")
	p, err := NewWithConfig(Config{Registry: reg, Adapter: &fakeAdapter{}})
	if err != nil {
		t.Fatalf("empty model id with single registry entry should resolve: %v", err)
	}
	if p.Model().ID != "u2net" {
		t.Fatalf("unexpected model: %+v", p.Model())
	}
}
