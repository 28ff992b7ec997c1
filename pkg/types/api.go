package types

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Overall service status.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Human-readable detail.
	// example: All services are operational - Ready to process images
	Message string `json:"message" example:"All services are operational - Ready to process images"`
	// Service version.
	// example: 1.0.1
	Version string `json:"version" example:"1.0.1"`
}

// RemoveBackgroundResponse is the JSON envelope returned by
// POST /remove-background-base64. Business failures are reported inside
// the envelope (success=false) rather than via HTTP status codes.
type RemoveBackgroundResponse struct {
	// Whether background removal succeeded.
	// example: true
	Success bool `json:"success" example:"true"`
	// Outcome description; on failure, the cause.
	// example: Background removed successfully from photo.jpg
	Message string `json:"message" example:"Background removed successfully from photo.jpg"`
	// Base64-encoded output image. Empty on failure.
	Base64Image string `json:"base64_image"`
	// Wall-clock processing time in seconds.
	// example: 1.42
	ProcessingTime float64 `json:"processing_time" example:"1.42"`
	// Output format (lowercase), e.g. png or webp. Empty on failure.
	// example: png
	OutputFormat string `json:"output_format" example:"png"`
	// Uploaded image size in bytes. Zero on failure.
	// example: 482133
	OriginalSize int `json:"original_size" example:"482133"`
	// Output image size in bytes. Zero on failure.
	// example: 130587
	OutputSize int `json:"output_size" example:"130587"`
	// Size reduction percentage, rounded to 2 decimals; 0 when the output
	// is not smaller than the input.
	// example: 72.91
	CompressionRatio float64 `json:"compression_ratio" example:"72.91"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unsupported file format
	Error string `json:"error" example:"unsupported file format"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall pipeline state (loading, ready, draining, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// ID of the segmentation model backing the engine.
	// example: u2net
	Model string `json:"model" example:"u2net"`
	// Number of worker slots in the pool.
	// example: 4
	Workers int `json:"workers" example:"4"`
	// Units of work waiting for a slot.
	// example: 2
	QueueLen int `json:"queue_len" example:"2"`
	// Units of work currently executing.
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued units before backpressure triggers.
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total units processed successfully.
	// example: 1042
	ProcessedTotal uint64 `json:"processed_total" example:"1042"`
	// Total units that failed.
	// example: 3
	FailedTotal uint64 `json:"failed_total" example:"3"`
	// Last error observed by the pipeline (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
