// Package monitoring holds the process-wide diagnostic logger.
//
// Library packages log through Logf so tests can mute or capture output;
// binaries call Setup once to route it through logrus.
package monitoring

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf until
// Setup or SetLogger replaces it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Options configures the process logger.
type Options struct {
	Level   string // trace, debug, info, warn, error, fatal
	JSON    bool
	File    string // optional; rotated by size
	Stdout  bool   // also write to stdout when File is set
	MaxSize int    // megabytes per file before rotation
}

// Setup configures logrus and routes Logf through it.
func Setup(opts Options) {
	if opts.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(opts.Level))
	logrus.SetOutput(output(opts))
	SetLogger(logrus.Infof)
}

func output(opts Options) io.Writer {
	if opts.File == "" {
		return os.Stdout
	}
	name := opts.File
	if !strings.HasSuffix(name, ".log") {
		name += ".log"
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = 50
	}
	rotating := &lumberjack.Logger{
		Filename: name,
		MaxSize:  maxSize, // megabytes
		Compress: true,
	}
	if opts.Stdout {
		return io.MultiWriter(os.Stdout, rotating)
	}
	return rotating
}

// GetLevel parses a level name; unknown names map to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}
