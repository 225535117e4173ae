package posekit

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Backend is a hint to the inference engine about which compute device
// a Worker should be scheduled on.  Engines are free to ignore it.
type Backend int

const (
	BackendAuto Backend = iota
	BackendCPU
	BackendGPU
)

// String returns a readable description of the Backend
func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendCPU:
		return "cpu"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Engine loads model assets and creates Workers for running inference.
// A failure to load a model or create a worker is fatal at startup,
// model assets are static so there is nothing to retry.
type Engine interface {
	// LoadModel loads the given model file
	LoadModel(modelFile string) (Model, error)
	// NewWorker creates a worker for running inference on the model
	NewWorker(model Model, backend Backend) (Worker, error)
}

// Model is an opaque handle to a loaded model asset
type Model interface {
	Close() error
}

// Worker runs model inference.  Run is a blocking call, schedule plus
// immediate synchronous readback, the engine may parallelise internally
// but callers treat it as a plain function from input to outputs.
type Worker interface {
	// Run performs inference on the given preprocessed image
	Run(input gocv.Mat) (*Outputs, error)
	// Close frees resources held by the worker
	Close() error
}

// Outputs holds the named output tensors produced by one inference run
type Outputs struct {
	tensors map[string]*Tensor
	names   []string
}

// NewOutputs returns an empty Outputs set
func NewOutputs() *Outputs {
	return &Outputs{
		tensors: make(map[string]*Tensor),
	}
}

// Add records an output tensor under the given name
func (o *Outputs) Add(name string, t *Tensor) {
	if _, exists := o.tensors[name]; !exists {
		o.names = append(o.names, name)
	}
	o.tensors[name] = t
}

// Peek returns the output tensor with the given name, or nil when the
// model has no output by that name.
func (o *Outputs) Peek(name string) *Tensor {
	return o.tensors[name]
}

// First returns the first output tensor added, which for the single
// output detection models is the only one.
func (o *Outputs) First() *Tensor {

	if len(o.names) == 0 {
		return nil
	}

	return o.tensors[o.names[0]]
}

// Names returns the output tensor names in the order added
func (o *Outputs) Names() []string {
	return o.names
}

// MustPeek returns the named output tensor or an error when missing,
// for callers that require a specific model output to exist.
func (o *Outputs) MustPeek(name string) (*Tensor, error) {

	t, ok := o.tensors[name]

	if !ok {
		return nil, fmt.Errorf("model has no output tensor named %q", name)
	}

	return t, nil
}
