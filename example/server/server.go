/*
Example code running pose estimation as an HTTP service with a worker
pool, request logging and process metrics
*/
package main

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gocv.io/x/gocv"
	"gopkg.in/yaml.v3"

	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/coordmap"
	"github.com/posekit/go-posekit/engine/onnx"
	"github.com/posekit/go-posekit/pipeline"
	"github.com/posekit/go-posekit/preprocess"
)

const (
	// Tensor input size for the pose model
	PoseInputSize = 640
	// Number of candidate columns the 640 ultralytics pose export emits
	PoseColumns = 8400
)

type configStruct struct {
	Port       int    `yaml:"port"`
	WorkersNum int    `yaml:"workersNum"`
	ModelFile  string `yaml:"modelFile"`
	OnnxLib    string `yaml:"onnxLib"`
}

// keyPointJSON is one landmark in a detection response
type keyPointJSON struct {
	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Score float32 `json:"score"`
}

// detectionJSON is one detection in a detection response, box
// coordinates are in source image pixels
type detectionJSON struct {
	ID         int64          `json:"id"`
	Confidence float32        `json:"confidence"`
	Left       int            `json:"left"`
	Top        int            `json:"top"`
	Right      int            `json:"right"`
	Bottom     int            `json:"bottom"`
	KeyPoints  []keyPointJSON `json:"keypoints"`
}

var (
	framesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frames_processed_total",
		Help: "Number of frames run through the pipeline",
	})
	detectionsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "detections_found_total",
		Help: "Number of pose detections emitted",
	})
	inferenceSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inference_duration_seconds",
		Help:    "Time spent processing one frame",
		Buckets: prometheus.DefBuckets,
	})
	memUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memory_usage_megabytes",
		Help: "Memory usage in Megabytes",
	})
	cpuUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpu_usage_percent",
		Help: "CPU usage in percent",
	})
)

func main() {

	logger := initLogger()
	defer logger.Sync()

	config, err := loadConfig("config.yaml")

	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	eng, err := onnx.NewEngine(config.OnnxLib, onnx.Options{
		InputName: "images",
		InputSize: PoseInputSize,
		Outputs: map[string][3]int{
			"output0": {1, 56, PoseColumns},
		},
	})

	if err != nil {
		logger.Fatal("failed to initialize onnx engine", zap.Error(err))
	}

	model, err := eng.LoadModel(config.ModelFile)

	if err != nil {
		logger.Fatal("failed to load model", zap.Error(err))
	}

	pool, err := posekit.NewPool(config.WorkersNum, eng, model)

	if err != nil {
		logger.Fatal("failed to create worker pool", zap.Error(err))
	}

	defer pool.Close()

	logger.Info("worker pool ready",
		zap.Int("workers", config.WorkersNum),
		zap.String("model", config.ModelFile))

	registry := prometheus.NewRegistry()
	registry.MustRegister(framesProcessed, detectionsFound, inferenceSeconds,
		memUsage, cpuUsage)

	go sampleProcessStats(logger)

	r := gin.Default()

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry,
		promhttp.HandlerOpts{Registry: registry})))

	r.POST("/api/detect", func(c *gin.Context) {
		handleDetect(c, pool, logger)
	})

	logger.Info("starting server", zap.Int("port", config.Port))

	if err := r.Run(addr(config.Port)); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// handleDetect runs pose estimation on an uploaded image and returns
// the detections in source image coordinates
func handleDetect(c *gin.Context, pool *posekit.Pool, logger *zap.Logger) {

	requestID := uuid.New().String()

	fileHeader, err := c.FormFile("image")

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}

	defer file.Close()

	buf, err := io.ReadAll(file)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	img, err := gocv.IMDecode(buf, gocv.IMReadColor)

	if err != nil || img.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to decode image"})
		return
	}

	defer img.Close()

	worker := pool.Get()
	defer pool.Return(worker)

	// detections map back onto the uploaded image for the response
	resizer := preprocess.NewResizer(img.Cols(), img.Rows(),
		coordmap.ModelSize, coordmap.ModelSize)

	cfg := pipeline.DefaultConfig()
	cfg.Display = resizer.Transform()

	_ = resizer.Close()

	p, err := pipeline.NewPipeline(cfg, worker, nil, img.Cols(), img.Rows())

	if err != nil {
		logger.Error("failed to create pipeline",
			zap.String("requestID", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline setup failed"})
		return
	}

	defer p.Close()

	start := time.Now()

	res, err := p.Process(img)

	if err != nil {
		logger.Error("inference failed",
			zap.String("requestID", requestID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "inference failed"})
		return
	}

	elapsed := time.Since(start)

	framesProcessed.Inc()
	detectionsFound.Add(float64(len(res.Body)))
	inferenceSeconds.Observe(elapsed.Seconds())

	logger.Info("frame processed",
		zap.String("requestID", requestID),
		zap.Int("detections", len(res.Body)),
		zap.Duration("elapsed", elapsed))

	dets := make([]detectionJSON, 0, len(res.Body))

	for _, det := range res.Body {

		keyPoints := make([]keyPointJSON, len(det.KeyPoints))

		for i, kp := range det.KeyPoints {
			keyPoints[i] = keyPointJSON{X: kp.X, Y: kp.Y, Score: kp.Score}
		}

		dets = append(dets, detectionJSON{
			ID:         det.ID,
			Confidence: det.Confidence,
			Left:       int(det.Box.Left()),
			Top:        int(det.Box.Top()),
			Right:      int(det.Box.Right()),
			Bottom:     int(det.Box.Bottom()),
			KeyPoints:  keyPoints,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"requestID":  requestID,
		"detections": dets,
	})
}

// initLogger builds the production zap logger and installs it as the
// global instance
func initLogger() *zap.Logger {

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()

	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(logger)

	return logger
}

// loadConfig reads the yaml config file and applies defaults
func loadConfig(file string) (*configStruct, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, err
	}

	config := &configStruct{}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.Port <= 0 {
		config.Port = 8080
	}

	if config.WorkersNum <= 0 {
		config.WorkersNum = 1
	}

	return config, nil
}

// sampleProcessStats feeds the process memory and cpu gauges
func sampleProcessStats(logger *zap.Logger) {

	proc, err := process.NewProcess(int32(os.Getpid()))

	if err != nil {
		logger.Warn("process stats unavailable", zap.Error(err))
		return
	}

	for {
		if memInfo, err := proc.MemoryInfo(); err == nil {
			memUsage.Set(float64(memInfo.RSS) / 1024 / 1024)
		}

		if cpuPercent, err := proc.CPUPercent(); err == nil {
			cpuUsage.Set(cpuPercent)
		}

		time.Sleep(500 * time.Millisecond)
	}
}

// addr formats the listen address for the given port
func addr(port int) string {
	return ":" + strconv.Itoa(port)
}
