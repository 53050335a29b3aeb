package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/syncgate/config"
	"github.com/grovetools/syncgate/pkg/paths"
	"github.com/grovetools/syncgate/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// isInteractive reports whether stderr is a terminal.
	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	}
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := newLogger(component, logCfg)
	loggers[component] = entry
	return entry
}

// Reset drops every cached component logger.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	loggers = make(map[string]*logrus.Entry)
}

func newLogger(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("SYNCGATE_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("SYNCGATE_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	formatter := formatterFor(logCfg.Format)
	logger.AddHook(RedactHook{})

	// The logger's own output is the file sink; the console is a hook so it
	// can carry a narrower level set than the file.
	logger.SetOutput(io.Discard)
	if file := openFileSink(component, logCfg.File, logger); file != nil {
		logger.SetOutput(file)
		if logCfg.File.Format == "json" {
			logger.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logger.SetFormatter(formatter)
		}
	}

	if levels := consoleLevels(logCfg.Format.StructuredToStderr, level); len(levels) > 0 {
		logger.AddHook(&consoleHook{
			writer:    GetGlobalOutput(),
			formatter: formatter,
			levels:    levels,
		})
	}

	return logger.WithField("component", component)
}

func formatterFor(f FormatConfig) logrus.Formatter {
	switch f.Preset {
	case "json":
		return &logrus.JSONFormatter{}
	case "simple":
		return &TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}}
	default:
		return &TextFormatter{Config: f}
	}
}

// consoleLevels decides which levels reach stderr.
//
//	always: everything the logger emits
//	never:  nothing
//	auto:   everything when debugging or not on a terminal, otherwise
//	        warnings and errors only
func consoleLevels(mode string, level logrus.Level) []logrus.Level {
	if mode == "" {
		mode = "auto"
	}
	switch mode {
	case "never":
		return nil
	case "always":
		return logrus.AllLevels
	}
	isDebug := os.Getenv("SYNCGATE_DEBUG") == "1" || level >= logrus.DebugLevel
	if isDebug || !isInteractive() {
		return logrus.AllLevels
	}
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

// openFileSink opens the configured log file, or the default
// <state>/logs/<component>-<date>.log. Failures on the default path are silent.
func openFileSink(component string, sink FileSinkConfig, logger *logrus.Logger) io.Writer {
	var logFilePath string
	if sink.Enabled && sink.Path != "" {
		expanded, err := pathutil.Expand(sink.Path)
		if err != nil {
			logger.Warnf("Failed to expand log file path %s: %v", sink.Path, err)
			return nil
		}
		logFilePath = expanded
	} else if dir := paths.LogsDir(); dir != "" {
		dateStr := time.Now().Format("2006-01-02")
		logFilePath = filepath.Join(dir, fmt.Sprintf("%s-%s.log", component, dateStr))
	}
	if logFilePath == "" {
		return nil
	}

	dir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		if sink.Enabled {
			logger.Warnf("Failed to create log directory %s: %v", dir, err)
		}
		return nil
	}
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		if sink.Enabled {
			logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
		}
		return nil
	}
	return file
}

// consoleHook writes formatted entries to the console sink.
type consoleHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *consoleHook) Levels() []logrus.Level {
	return h.levels
}

func (h *consoleHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(line)
	return err
}
