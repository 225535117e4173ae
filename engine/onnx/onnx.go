// Package onnx adapts ONNX Runtime, loaded through purego bindings, to
// the posekit Worker boundary so the example programs can run exported
// YOLO pose and hand landmark models without cgo.
package onnx

import (
	"fmt"

	vision "github.com/getcharzp/go-vision"
	ort "github.com/getcharzp/onnxruntime_purego"
	"gocv.io/x/gocv"

	posekit "github.com/posekit/go-posekit"
)

// Options configure how a models inputs and outputs are bound.  ONNX
// Runtime reports output buffers flat, so the tensor axis sizes for
// each named output are declared up front.
type Options struct {
	// InputName is the models input tensor name, "images" for the
	// ultralytics exports
	InputName string
	// InputSize is the square input tensor width and height
	InputSize int
	// Outputs maps each output tensor name to its [batch, channels,
	// detections] axis sizes
	Outputs map[string][3]int
}

// Engine implements the posekit Engine boundary over ONNX Runtime
type Engine struct {
	cfg  *vision.OnnxConfig
	opts Options
}

// NewEngine initialises the ONNX Runtime library.  An empty libPath
// uses the platform default location.
func NewEngine(libPath string, opts Options) (*Engine, error) {

	if libPath == "" {
		libPath = vision.DefaultLibraryPath()
	}

	cfg := new(vision.OnnxConfig)
	cfg.OnnxRuntimeLibPath = libPath

	if err := cfg.New(); err != nil {
		return nil, fmt.Errorf("error initialising onnx runtime: %w", err)
	}

	return &Engine{
		cfg:  cfg,
		opts: opts,
	}, nil
}

// model is an opaque handle to a loaded model file.  Sessions are per
// worker, the model only records the asset location.
type model struct {
	file string
}

func (m *model) Close() error {
	return nil
}

// LoadModel loads the given ONNX model file
func (e *Engine) LoadModel(modelFile string) (posekit.Model, error) {

	if modelFile[len(modelFile)-5:] != ".onnx" {
		return nil, fmt.Errorf("onnx engine only supports .onnx models, got %q", modelFile)
	}

	return &model{file: modelFile}, nil
}

// NewWorker creates a session running inference on the model.  The
// backend hint is ignored, device selection is done through the ONNX
// Runtime session options.
func (e *Engine) NewWorker(m posekit.Model, backend posekit.Backend) (posekit.Worker, error) {

	om, ok := m.(*model)

	if !ok {
		return nil, fmt.Errorf("model was not loaded by the onnx engine")
	}

	session, err := e.cfg.OnnxEngine.NewSession(om.file, e.cfg.SessionOptions)

	if err != nil {
		return nil, fmt.Errorf("error creating onnx session: %w", err)
	}

	return &worker{
		session: session,
		opts:    e.opts,
	}, nil
}

// worker wraps an ONNX Runtime session as a blocking Worker
type worker struct {
	session *ort.Session
	opts    Options
}

// Run performs inference on the given preprocessed image.  The image
// is expected at the models input size already, it is converted to a
// normalised NCHW float tensor here.
func (w *worker) Run(input gocv.Mat) (*posekit.Outputs, error) {

	data, err := matToNCHW(input, w.opts.InputSize)

	if err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewTensor(
		[]int64{1, 3, int64(w.opts.InputSize), int64(w.opts.InputSize)}, data)

	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}

	defer inputTensor.Destroy()

	outputValues, err := w.session.Run(map[string]*ort.Value{
		w.opts.InputName: inputTensor,
	})

	if err != nil {
		return nil, fmt.Errorf("error running onnx session: %w", err)
	}

	outputs := posekit.NewOutputs()

	for name, value := range outputValues {

		buf, err := ort.GetTensorData[float32](value)

		if err != nil {
			value.Destroy()
			return nil, fmt.Errorf("error reading output tensor %q: %w", name, err)
		}

		// copy out before the runtime buffer is destroyed
		data := make([]float32, len(buf))
		copy(data, buf)
		value.Destroy()

		dims, ok := w.opts.Outputs[name]

		if !ok {
			// undeclared output, keep it as a flat vector
			dims = [3]int{1, len(data), 1}
		}

		outputs.Add(name, posekit.NewTensor(data, dims[0], dims[1], dims[2]))
	}

	return outputs, nil
}

// Close frees the session
func (w *worker) Close() error {
	w.session.Destroy()
	return nil
}

// matToNCHW converts a BGR byte Mat into a normalised RGB channels
// first float buffer
func matToNCHW(img gocv.Mat, size int) ([]float32, error) {

	rgb := gocv.NewMat()
	defer rgb.Close()

	gocv.CvtColor(img, &rgb, gocv.ColorBGRToRGB)

	if !rgb.IsContinuous() {
		rgb = rgb.Clone()
	}

	raw, err := rgb.DataPtrUint8()

	if err != nil {
		return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
	}

	area := size * size
	data := make([]float32, 3*area)

	// HWC bytes to CHW floats scaled to [0,1]
	for i := 0; i < area; i++ {
		data[i] = float32(raw[i*3]) / 255.0
		data[area+i] = float32(raw[i*3+1]) / 255.0
		data[2*area+i] = float32(raw[i*3+2]) / 255.0
	}

	return data, nil
}
