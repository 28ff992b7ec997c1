//go:build onnx

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"rembgd/internal/imaging"
)

// u2net export constants: the model takes one 320x320 RGB tensor and its
// first output is a 320x320 saliency map used as the alpha mask.
const (
	u2netSide       = 320
	u2netInputName  = "input.1"
	u2netOutputName = "1959"
)

// ImageNet normalization applied by the u2net preprocessing.
var (
	u2netMean = [3]float32{0.485, 0.456, 0.406}
	u2netStd  = [3]float32{0.229, 0.224, 0.225}
)

// ortEnvOnce guards process-wide ONNX Runtime environment setup. The
// environment stays up for the life of the process; only sessions close.
var ortEnvOnce sync.Once

func initORTEnv() error {
	var err error
	ortEnvOnce.Do(func() {
		if runtime.GOOS == "windows" {
			ort.SetSharedLibraryPath("onnxruntime.dll")
		} else {
			ort.SetSharedLibraryPath("libonnxruntime.so")
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

type onnxAdapter struct{}

func newDefaultAdapter() Adapter { return onnxAdapter{} }

func (onnxAdapter) Open(modelPath string) (Session, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	if err := initORTEnv(); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}
	sess, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{u2netInputName},
		[]string{u2netOutputName},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	return &onnxSession{sess: sess}, nil
}

// onnxSession owns the loaded model.
type onnxSession struct {
	sess *ort.DynamicAdvancedSession
}

func (s *onnxSession) Remove(ctx context.Context, data []byte) ([]byte, error) {
	src, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, 3, u2netSide, u2netSide), imageToTensor(src))
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	outputs := make([]ort.Value, 1)
	if err := s.sess.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}
	mask := outputs[0].(*ort.Tensor[float32])
	defer mask.Destroy()

	cut := applyMask(src, mask.GetData())
	var buf bytes.Buffer
	if err := png.Encode(&buf, cut); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *onnxSession) Close() error {
	s.sess.Destroy()
	return nil
}

// imageToTensor scales src to the model side length and lays it out as a
// normalized CHW float32 tensor.
func imageToTensor(src image.Image) []float32 {
	dst := image.NewRGBA(image.Rect(0, 0, u2netSide, u2netSide))
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Bounds(), draw.Over, nil)

	plane := u2netSide * u2netSide
	out := make([]float32, 3*plane)
	for y := 0; y < u2netSide; y++ {
		for x := 0; x < u2netSide; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			i := y*u2netSide + x
			out[i] = (float32(r)/65535 - u2netMean[0]) / u2netStd[0]
			out[plane+i] = (float32(g)/65535 - u2netMean[1]) / u2netStd[1]
			out[2*plane+i] = (float32(b)/65535 - u2netMean[2]) / u2netStd[2]
		}
	}
	return out
}

// applyMask min-max normalizes the saliency map, scales it back to the
// source dimensions, and writes it into the alpha channel.
func applyMask(src image.Image, mask []float32) *image.NRGBA {
	lo, hi := mask[0], mask[0]
	for _, v := range mask {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	small := image.NewGray(image.Rect(0, 0, u2netSide, u2netSide))
	for i, v := range mask[:u2netSide*u2netSide] {
		small.Pix[i] = uint8((v - lo) / span * 255)
	}

	b := src.Bounds()
	big := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.CatmullRom.Scale(big, big.Rect, small, small.Bounds(), draw.Over, nil)

	out := imaging.EnsureAlpha(src)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			a := big.GrayAt(x, y).Y
			c := out.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
		}
	}
	return out
}
