/*
Example code showing the two stage hand capture flow, detect body
wrists with a pose model, crop the source frame around each wrist, then
run a hand landmark model on the crops
*/
package main

import (
	"flag"
	"fmt"
	"log"

	"gocv.io/x/gocv"

	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/coordmap"
	"github.com/posekit/go-posekit/engine/onnx"
	"github.com/posekit/go-posekit/pipeline"
	"github.com/posekit/go-posekit/postprocess"
	"github.com/posekit/go-posekit/preprocess"
	"github.com/posekit/go-posekit/render"
)

const (
	// Tensor input size for the pose model
	PoseInputSize = 640
	// Number of candidate columns the 640 ultralytics pose export emits
	PoseColumns = 8400
	// Tensor input size for the hand landmark model
	HandInputSize = 224
	// Side of the square source region cropped around each wrist
	WristCropSize = 300
	// Minimum spacing between wrist crops in model space pixels
	WristSpacing = 60
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	poseModelFile := flag.String("m", "../data/yolov8n-pose-640.onnx", "ONNX pose estimation model file")
	handModelFile := flag.String("n", "../data/hand-landmark-224.onnx", "ONNX hand landmark model file")
	imgFile := flag.String("i", "../data/people.jpg", "Image file to run hand detection on")
	saveFile := flag.String("o", "../data/people-hands-out.jpg", "The output JPG file with hand markers")
	libPath := flag.String("x", "", "Path to the ONNX Runtime shared library, blank for platform default")

	flag.Parse()

	poseWorker := newWorker(*libPath, *poseModelFile, onnx.Options{
		InputName: "images",
		InputSize: PoseInputSize,
		Outputs: map[string][3]int{
			"output0": {1, 56, PoseColumns},
		},
	})

	handWorker := newWorker(*libPath, *handModelFile, onnx.Options{
		InputName: "input",
		InputSize: HandInputSize,
		Outputs: map[string][3]int{
			"landmarks": {1, 63, 1},
			"score":     {1, 1, 1},
		},
	})

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(),
		coordmap.ModelSize, coordmap.ModelSize)

	cfg := pipeline.DefaultConfig()
	cfg.Display = resizer.Transform()
	cfg.Second = &pipeline.SecondStage{
		Wrist:             postprocess.WristCOCOParams(),
		DistanceThreshold: WristSpacing,
		CropSize:          WristCropSize,
		Hand:              postprocess.HandDefaultParams(),
		InputSize:         HandInputSize,
		LandmarksOutput:   "landmarks",
		ScoreOutput:       "score",
		// this landmark model emits raw logit scores
		ApplySigmoid: true,
	}

	_ = resizer.Close()

	p, err := pipeline.NewPipeline(cfg, poseWorker, handWorker, img.Cols(), img.Rows())

	if err != nil {
		log.Fatal("Error creating pipeline: ", err)
	}

	defer p.Close()

	res, err := p.Process(img)

	if err != nil {
		log.Fatal("Error processing image: ", err)
	}

	if res.SecondErr != nil {
		log.Println("Hand stage failed, keeping pose detections: ", res.SecondErr)
	}

	for _, det := range res.Body {
		fmt.Printf("person @ (%d %d %d %d) %f\n",
			int(det.Box.Left()), int(det.Box.Top()),
			int(det.Box.Right()), int(det.Box.Bottom()), det.Confidence)
	}

	for _, det := range res.Hands {
		fmt.Printf("hand @ (%d %d %d %d) %f\n",
			int(det.Box.Left()), int(det.Box.Top()),
			int(det.Box.Right()), int(det.Box.Bottom()), det.Confidence)
	}

	// draw skeletons first so the box labels stay on top
	render.KeyPoints(&img, res.Body, postprocess.COCO17Schema(), 0.3, 2)
	render.KeyPoints(&img, res.Hands, postprocess.Hand21Schema(), 0.3, 1)
	render.DetectionBoxes(&img, res.Hands, "hand", render.DefaultFont(), 2)

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved hand detection result to %s\n", *saveFile)

	_ = poseWorker.Close()
	_ = handWorker.Close()

	log.Println("done")
}

// newWorker creates an onnx engine for the model file and returns a
// worker running it
func newWorker(libPath, modelFile string, opts onnx.Options) posekit.Worker {

	eng, err := onnx.NewEngine(libPath, opts)

	if err != nil {
		log.Fatal("Error initializing ONNX engine: ", err)
	}

	model, err := eng.LoadModel(modelFile)

	if err != nil {
		log.Fatal("Error loading model: ", err)
	}

	worker, err := eng.NewWorker(model, posekit.BackendAuto)

	if err != nil {
		log.Fatal("Error creating worker: ", err)
	}

	return worker
}
