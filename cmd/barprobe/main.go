// Command barprobe runs the bar detector over a video file or camera and
// prints the smoothed bar row for every frame.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/banshee-data/reps.report/internal/bar"
	"github.com/banshee-data/reps.report/internal/bar/cvedge"
	"github.com/banshee-data/reps.report/internal/config"
	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/timeutil"
	"github.com/banshee-data/reps.report/internal/version"
)

var (
	videoPath   = flag.String("video", "", "video file to probe")
	cameraID    = flag.Int("camera", -1, "camera device index (used when -video is empty)")
	configPath  = flag.String("config", "", "tuning config JSON")
	maxFrames   = flag.Int("max", 0, "stop after this many frames (0 = all)")
	show        = flag.Bool("show", false, "display frames with the detected bar")
	logLevel    = flag.String("log-level", "info", "log level")
	showVersion = flag.Bool("version", false, "print version and exit")
)

var barColor = color.RGBA{R: 0, G: 200, B: 255, A: 0}

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String("barprobe"))
		return
	}
	monitoring.Setup(monitoring.Options{Level: *logLevel})
	logrus.SetOutput(os.Stderr)

	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(*configPath); err != nil {
			logrus.Fatalf("load config: %v", err)
		}
	}

	var capture *gocv.VideoCapture
	var err error
	switch {
	case *videoPath != "":
		capture, err = gocv.VideoCaptureFile(*videoPath)
	case *cameraID >= 0:
		capture, err = gocv.VideoCaptureDevice(*cameraID)
	default:
		logrus.Fatal("one of -video or -camera is required")
	}
	if err != nil {
		logrus.Fatalf("open capture: %v", err)
	}
	defer capture.Close()

	edgeCfg := cvedge.DefaultConfig()
	edgeCfg.ROIFraction = cfg.GetBarROIFraction()
	edgeCfg.MinLengthFraction = cfg.GetBarMinLengthFraction()
	extractor := cvedge.New(edgeCfg)

	det := bar.NewDetector(bar.Config{
		MaxAge:    cfg.GetBarMaxAge(),
		Smoothing: cfg.GetBarSmoothing(),
		Scoring: bar.ScoringConfig{
			MaxRowDeltaPx:     cfg.GetBarMaxRowDeltaPx(),
			MinLengthFraction: cfg.GetBarMinLengthFraction(),
		},
	}, extractor)

	var window *gocv.Window
	if *show {
		window = gocv.NewWindow("barprobe")
		defer window.Close()
	}

	clock := timeutil.RealClock{}
	start := clock.Now()
	frame := gocv.NewMat()
	defer frame.Close()

	found := 0
	n := 0
	for ; *maxFrames == 0 || n < *maxFrames; n++ {
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			break
		}
		// Files carry their own clock; live cameras use the wall clock.
		ts := clock.Since(start).Seconds()
		if *videoPath != "" {
			ts = capture.Get(gocv.VideoCapturePosMsec) / 1000
		}

		ef, err := extractor.ExtractMat(frame)
		if err != nil {
			logrus.Warnf("frame %d: %v", n, err)
			continue
		}
		row, ok := det.Observe(ef, ts)
		if ok {
			found++
			fmt.Printf("%d\t%.3f\t%.4f\n", n, ts, row)
		} else {
			fmt.Printf("%d\t%.3f\t-\n", n, ts)
		}

		if window != nil {
			if ok {
				y := int(row * float64(frame.Rows()))
				gocv.Line(&frame, image.Pt(0, y), image.Pt(frame.Cols(), y), barColor, 3)
			}
			window.IMShow(frame)
			if window.WaitKey(1) == 27 {
				break
			}
		}
	}
	logrus.Infof("barprobe: bar found in %d of %d frames in %s", found, n, clock.Since(start).Round(time.Millisecond))
}
