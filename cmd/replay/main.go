// Command replay feeds a recorded pose stream through one exercise counter
// and reports what it counted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/banshee-data/reps.report/internal/monitoring"
	"github.com/banshee-data/reps.report/internal/version"
)

var (
	input       = flag.String("input", "", "JSON-lines pose stream to replay")
	dbPath      = flag.String("db", "", "SQLite recording store")
	recordingID = flag.String("recording", "", "recording UUID to replay from -db")
	importFlag  = flag.Bool("import", false, "store -input in -db as a new recording before replaying")
	listFlag    = flag.Bool("list", false, "list recordings in -db and exit")
	exerciseArg = flag.String("exercise", "Squat", "exercise name or slug, e.g. \"Pull-Up\" or pull_up")
	htmlOut     = flag.String("html", "", "write an HTML timeline to this path")
	pngOut      = flag.String("png", "", "write a PNG timeline to this path")
	realtime    = flag.Bool("realtime", false, "pace frames by their timestamps")
	speed       = flag.Float64("speed", 1, "playback speed with -realtime")
	metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	configPath  = flag.String("config", "", "tuning config JSON (defaults when empty)")
	logLevel    = flag.String("log-level", "info", "log level")
	logJSON     = flag.Bool("log-json", false, "log as JSON")
	logFile     = flag.String("log-file", "", "also log to this size-rotated file")
	showVersion = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("replay"))
		return
	}

	monitoring.Setup(monitoring.Options{
		Level:  *logLevel,
		JSON:   *logJSON,
		File:   *logFile,
		Stdout: *logFile != "",
	})
	if *logFile == "" {
		logrus.SetOutput(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:       *input,
		DBPath:      *dbPath,
		RecordingID: *recordingID,
		Import:      *importFlag,
		List:        *listFlag,
		Exercise:    *exerciseArg,
		HTMLPath:    *htmlOut,
		PNGPath:     *pngOut,
		Realtime:    *realtime,
		Speed:       *speed,
		MetricsAddr: *metricsAddr,
		ConfigPath:  *configPath,
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		logrus.Fatalf("replay: %v", err)
	}
}
