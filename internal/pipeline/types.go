package pipeline

import (
	"time"

	"rembgd/internal/imaging"
)

// State represents the lifecycle state of the pipeline.
type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDraining State = "draining"
	StateClosed   State = "closed"
	StateError    State = "error"
)

// Upload carries the metadata of an inbound file, inspected by the
// validation gate before any bytes are processed.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
}

// Request is one validated unit of work for the pool. Immutable once built.
type Request struct {
	Data    []byte
	Format  imaging.Format
	Quality int
}

// Result is the outcome of one processed Request.
type Result struct {
	Data    []byte
	Size    int
	Elapsed time.Duration
	Format  imaging.Format
}
