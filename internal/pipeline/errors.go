package pipeline

// Validation failure kinds. Client-caused; never retried.
const (
	kindUnsupportedFormat  = "unsupported_format"
	kindInvalidContentType = "invalid_content_type"
	kindPayloadTooLarge    = "payload_too_large"
)

// validationError signals an upload rejected before any expensive work ran.
type validationError struct {
	kind string
	msg  string
}

func (e validationError) Error() string { return e.msg }

// IsValidation reports whether err is any upload validation failure.
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// IsUnsupportedFormat reports a file extension outside the allow-set.
func IsUnsupportedFormat(err error) bool {
	v, ok := err.(validationError)
	return ok && v.kind == kindUnsupportedFormat
}

// IsInvalidContentType reports a missing or non-image content type.
func IsInvalidContentType(err error) bool {
	v, ok := err.(validationError)
	return ok && v.kind == kindInvalidContentType
}

// IsPayloadTooLarge reports an upload exceeding the size ceiling (maps to 413).
func IsPayloadTooLarge(err error) bool {
	v, ok := err.(validationError)
	return ok && v.kind == kindPayloadTooLarge
}

// Engine failure stages.
const (
	stageInit   = "init"
	stageInvoke = "invoke"
	stageDecode = "decode"
	stageEncode = "encode"
)

// engineError wraps any fault from the engine or codec stages of a unit of
// work so it surfaces as a classified server-side failure, never a panic.
type engineError struct {
	stage string
	msg   string
}

func (e engineError) Error() string { return "engine " + e.stage + ": " + e.msg }

// IsEngine reports whether err is a server-side processing failure (500).
func IsEngine(err error) bool {
	_, ok := err.(engineError)
	return ok
}

// IsEngineInit reports a model load failure at startup.
func IsEngineInit(err error) bool {
	e, ok := err.(engineError)
	return ok && e.stage == stageInit
}

// tooBusyError signals admission timeout or a draining pool for 429 mapping.
type tooBusyError struct{}

func (tooBusyError) Error() string { return "service busy: worker pool at capacity" }

// IsTooBusy reports whether err indicates backpressure (retryable).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// notReadyError signals the engine handle or pool is not ready yet (503).
type notReadyError struct{ state State }

func (e notReadyError) Error() string { return "pipeline not ready: state " + string(e.state) }

// IsNotReady reports whether err indicates the service cannot take work yet.
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}
