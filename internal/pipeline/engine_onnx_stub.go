//go:build !onnx

package pipeline

// This file provides a stub for the ONNX engine adapter. It is compiled when
// the 'onnx' build tag is NOT set, keeping default builds free of the
// onnxruntime shared-library requirement. The real adapter lives in
// engine_onnx.go (tagged 'onnx').

type onnxAdapter struct{}

func newDefaultAdapter() Adapter { return onnxAdapter{} }

func (onnxAdapter) Open(modelPath string) (Session, error) {
	return nil, errOnnxNotBuilt{}
}

type errOnnxNotBuilt struct{}

func (errOnnxNotBuilt) Error() string {
	return "onnx engine support not built (missing 'onnx' build tag)"
}
