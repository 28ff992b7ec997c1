package types

// Model represents a discoverable segmentation model file on disk.
type Model struct {
	// Stable identifier for the model (filename stem).
	// example: u2net
	ID string `json:"id" example:"u2net"`
	// Human-friendly name.
	// example: u2net
	Name string `json:"name" example:"u2net"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/u2net.onnx
	Path string `json:"path" example:"/home/user/models/u2net.onnx"`
}
