package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"rembgd/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultWorkers       = 4
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultDrainTimeout  = 30 * time.Second
	defaultMaxUploadSize = 10 << 20 // 10 MiB
	defaultQuality       = 95
)

// defaultAllowedExts mirrors the upload allow-set of the public API.
var defaultAllowedExts = []string{"jpg", "jpeg", "png", "bmp", "tiff", "webp"}

// Config encapsulates all tunables for Pipeline construction.
type Config struct {
	// Registry of discoverable model files; Model selects one by ID.
	Registry []types.Model
	Model    string

	// Pool sizing and admission.
	Workers       int
	MaxQueueDepth int
	MaxWait       time.Duration

	// Drain deadline applied during Close.
	DrainTimeout time.Duration

	// Validation gate tunables.
	MaxUploadSize int64
	AllowedExts   []string

	// Adapter overrides the default engine runtime (used by tests).
	Adapter Adapter

	// Publisher receives lifecycle events; nil means drop them.
	Publisher EventPublisher

	// Logger for pipeline-level logging; zero value means no output.
	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = defaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = defaultDrainTimeout
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = defaultMaxUploadSize
	}
	if len(c.AllowedExts) == 0 {
		c.AllowedExts = defaultAllowedExts
	}
	if c.Adapter == nil {
		c.Adapter = newDefaultAdapter()
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
}
