/*
Example code showing how to run the pose pipeline over a video file and
write out an annotated copy
*/
package main

import (
	"flag"
	"log"
	"time"

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
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/yolov8n-pose-640.onnx", "ONNX pose estimation model file")
	vidFile := flag.String("v", "../data/palace.mp4", "Video file to run pose estimation on")
	saveFile := flag.String("o", "../data/palace-pose-out.mp4", "The output video file with pose markers")
	libPath := flag.String("x", "", "Path to the ONNX Runtime shared library, blank for platform default")
	fps := flag.Float64("r", 30, "Frame rate of the output video")

	flag.Parse()

	eng, err := onnx.NewEngine(*libPath, onnx.Options{
		InputName: "images",
		InputSize: PoseInputSize,
		Outputs: map[string][3]int{
			"output0": {1, 56, PoseColumns},
		},
	})

	if err != nil {
		log.Fatal("Error initializing ONNX engine: ", err)
	}

	model, err := eng.LoadModel(*modelFile)

	if err != nil {
		log.Fatal("Error loading model: ", err)
	}

	worker, err := eng.NewWorker(model, posekit.BackendAuto)

	if err != nil {
		log.Fatal("Error creating worker: ", err)
	}

	defer worker.Close()

	src, err := pipeline.OpenVideoSource(*vidFile)

	if err != nil {
		log.Fatal("Error opening video: ", err)
	}

	defer src.Close()

	// map detections from model space back onto the video frames
	resizer := preprocess.NewResizer(src.Width(), src.Height(),
		coordmap.ModelSize, coordmap.ModelSize)

	cfg := pipeline.DefaultConfig()
	cfg.Display = resizer.Transform()

	_ = resizer.Close()

	p, err := pipeline.NewPipeline(cfg, worker, nil, src.Width(), src.Height())

	if err != nil {
		log.Fatal("Error creating pipeline: ", err)
	}

	defer p.Close()

	writer, err := gocv.VideoWriterFile(*saveFile, "avc1", *fps,
		src.Width(), src.Height(), true)

	if err != nil {
		log.Fatal("Error opening video writer: ", err)
	}

	defer writer.Close()

	frames := 0
	start := time.Now()

	err = pipeline.Run(src, p, func(frame gocv.Mat, res *pipeline.FrameResult) bool {

		render.KeyPoints(&frame, res.Body, postprocess.COCO17Schema(), 0.3, 2)
		render.DetectionBoxes(&frame, res.Body, "person", render.DefaultFont(), 2)

		if err := writer.Write(frame); err != nil {
			log.Println("Error writing frame: ", err)
			return false
		}

		frames++
		return true
	})

	if err != nil {
		log.Fatal("Error processing video: ", err)
	}

	elapsed := time.Since(start)

	log.Printf("Processed %d frames in %s, average %.1f FPS\n",
		frames, elapsed.Round(time.Millisecond),
		float64(frames)/elapsed.Seconds())

	log.Printf("Saved annotated video to %s\n", *saveFile)

	log.Println("done")
}
