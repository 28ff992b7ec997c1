package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"rembgd/pkg/types"
)

// Pipeline owns the single engine session and the bounded worker pool.
// It is created before the HTTP layer accepts work and closed after the
// server has stopped, draining in-flight units before the engine handle
// is released.
type Pipeline struct {
	mu      sync.RWMutex
	state   State
	lastErr string

	model   types.Model
	session Session

	// queueCh holds waiting units (FIFO), slotCh the executing ones,
	// engineCh the single unit allowed inside the engine.
	queueCh  chan struct{}
	slotCh   chan struct{}
	engineCh chan struct{}

	workers      int
	maxWait      time.Duration
	drainTimeout time.Duration

	maxUploadSize int64
	allowedExts   map[string]struct{}
	allowedList   []string

	processedTotal uint64
	failedTotal    uint64

	publisher EventPublisher
	log       zerolog.Logger
	startTime time.Time
}

// New constructs a Pipeline and loads the model synchronously. A nil error
// means the engine handle is live and the pool accepts work.
func New(cfg Config) (*Pipeline, error) {
	return NewWithConfig(cfg)
}

// NewWithConfig constructs a Pipeline from Config, applying package defaults
// for unset fields. The engine session is opened exactly once here; callers
// must treat an error as fatal and not serve requests.
func NewWithConfig(cfg Config) (*Pipeline, error) {
	cfg.applyDefaults()

	p := &Pipeline{
		state:         StateLoading,
		queueCh:       make(chan struct{}, cfg.MaxQueueDepth),
		slotCh:        make(chan struct{}, cfg.Workers),
		engineCh:      make(chan struct{}, 1),
		workers:       cfg.Workers,
		maxWait:       cfg.MaxWait,
		drainTimeout:  cfg.DrainTimeout,
		maxUploadSize: cfg.MaxUploadSize,
		allowedExts:   make(map[string]struct{}, len(cfg.AllowedExts)),
		publisher:     cfg.Publisher,
		log:           cfg.Logger,
		startTime:     time.Now(),
	}
	for _, ext := range cfg.AllowedExts {
		e := strings.ToLower(strings.TrimPrefix(ext, "."))
		if _, dup := p.allowedExts[e]; dup {
			continue
		}
		p.allowedExts[e] = struct{}{}
		p.allowedList = append(p.allowedList, e)
	}

	mdl, ok := resolveModel(cfg.Registry, cfg.Model)
	if !ok {
		err := engineError{stage: stageInit, msg: fmt.Sprintf("model %q not found in registry", cfg.Model)}
		p.fail(err)
		return nil, err
	}
	p.model = mdl

	p.publisher.Publish(Event{Name: "engine_init_start", Model: mdl.ID})
	sess, err := cfg.Adapter.Open(mdl.Path)
	if err != nil {
		werr := engineError{stage: stageInit, msg: err.Error()}
		p.publisher.Publish(Event{Name: "engine_init_fail", Model: mdl.ID, Fields: map[string]any{"error": err.Error()}})
		p.fail(werr)
		return nil, werr
	}
	p.session = sess

	p.mu.Lock()
	p.state = StateReady
	p.mu.Unlock()
	p.publisher.Publish(Event{Name: "engine_init_done", Model: mdl.ID})
	p.log.Info().Str("model", mdl.ID).Int("workers", p.workers).Msg("pipeline ready")
	return p, nil
}

// Ready reports whether the engine handle and pool can take new work.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateReady
}

// Model returns the model backing the engine session.
func (p *Pipeline) Model() types.Model {
	return p.model
}

func (p *Pipeline) fail(err error) {
	p.mu.Lock()
	p.state = StateError
	p.lastErr = err.Error()
	p.mu.Unlock()
}

// resolveModel looks up id in the registry. An empty id selects the sole
// registry entry when there is exactly one.
func resolveModel(reg []types.Model, id string) (types.Model, bool) {
	if id == "" && len(reg) == 1 {
		return reg[0], true
	}
	for _, m := range reg {
		if m.ID == id {
			return m, true
		}
	}
	return types.Model{}, false
}
