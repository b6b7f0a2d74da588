package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"docucontrol/internal/config"
)

// Log is the process wide logger.
var Log = logrus.New()

// Init points Log at stdout and {tmp}/docucontrol.log. The returned closer
// releases the log file.
func Init(cfg config.Config) (io.Closer, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("invalid log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	if err := os.MkdirAll(cfg.TmpDir, 0o755); err != nil {
		Log.SetOutput(os.Stdout)
		return io.NopCloser(nil), err
	}
	f, err := os.OpenFile(filepath.Join(cfg.TmpDir, "docucontrol.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		Log.SetOutput(os.Stdout)
		return io.NopCloser(nil), err
	}
	Log.SetOutput(io.MultiWriter(os.Stdout, f))
	return f, nil
}
