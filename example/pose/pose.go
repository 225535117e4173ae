/*
Example code showing how to run pose estimation on an image file and
render the detected skeletons
*/
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"os"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

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
	// Size of banner TTF font
	TTFFontSize = 16
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "../data/yolov8n-pose-640.onnx", "ONNX pose estimation model file")
	imgFile := flag.String("i", "../data/people.jpg", "Image file to run pose estimation on")
	saveFile := flag.String("o", "../data/people-pose-out.jpg", "The output JPG file with pose markers")
	libPath := flag.String("x", "", "Path to the ONNX Runtime shared library, blank for platform default")
	ttfFont := flag.String("f", "", "Optional TTF font used to render the summary banner")

	flag.Parse()

	// create onnx inference engine
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

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	// map detections from model space back onto the source image for
	// rendering, undoing the letterbox the pipeline applies
	resizer := preprocess.NewResizer(img.Cols(), img.Rows(),
		coordmap.ModelSize, coordmap.ModelSize)

	cfg := pipeline.DefaultConfig()
	cfg.Display = resizer.Transform()

	_ = resizer.Close()

	p, err := pipeline.NewPipeline(cfg, worker, nil, img.Cols(), img.Rows())

	if err != nil {
		log.Fatal("Error creating pipeline: ", err)
	}

	defer p.Close()

	start := time.Now()

	res, err := p.Process(img)

	if err != nil {
		log.Fatal("Error processing image: ", err)
	}

	elapsed := time.Since(start)

	for _, det := range res.Body {
		fmt.Printf("person @ (%d %d %d %d) %f\n",
			int(det.Box.Left()), int(det.Box.Top()),
			int(det.Box.Right()), int(det.Box.Bottom()), det.Confidence)
	}

	// draw skeletons first so the box labels stay on top
	render.KeyPoints(&img, res.Body, postprocess.COCO17Schema(), 0.3, 2)
	render.DetectionBoxes(&img, res.Body, "person", render.DefaultFont(), 2)

	banner := fmt.Sprintf("%d people, %s", len(res.Body), elapsed.Round(time.Millisecond))

	if *ttfFont != "" {
		err = putBannerText(&img, banner, *ttfFont)

		if err != nil {
			log.Fatal("Error rendering banner: ", err)
		}
	} else {
		gocv.PutText(&img, banner, image.Pt(8, 24), gocv.FontHersheyDuplex,
			0.6, render.White, 1)
	}

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Fatal("Failed to save the image")
	}

	log.Printf("Saved pose estimation result to %s\n", *saveFile)

	err = worker.Close()

	if err != nil {
		log.Fatal("Error closing worker: ", err)
	}

	log.Println("done")
}

// putBannerText writes the summary text onto the image using a TTF
// font, which supports characters outside the Hershey latin set
func putBannerText(img *gocv.Mat, text string, fontPath string) error {

	// load font data
	fontBytes, err := os.ReadFile(fontPath)

	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	// parse the font
	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}

	// create a type face
	fontFace, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TTFFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return fmt.Errorf("failed to create type face: %w", err)
	}

	// create image with text writing
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: fontFace,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(8 * 64),
			Y: fixed.Int26_6(24 * 64),
		},
	}
	dr.DrawString(text)

	// Convert image.RGBA to gocv.Mat
	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if imgRGBA.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer imgRGBA.Close()

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)

	return nil
}
