package pipeline

import "context"

// Adapter abstracts the segmentation model runtime. Open loads the model
// once and returns the process-wide session.
type Adapter interface {
	Open(modelPath string) (Session, error)
}

// Session is one loaded model instance. Remove takes encoded image bytes
// and returns encoded image bytes whose alpha channel marks the foreground.
// Implementations are NOT assumed safe for concurrent calls; the pipeline
// serializes entry. Close releases the model.
type Session interface {
	Remove(ctx context.Context, img []byte) ([]byte, error)
	Close() error
}
