package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogDir     = "./logs/"
	defaultLogFile    = "qledger.log"
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 28
)

// Options controls where log lines go. Zero values fall back to the
// LOGFILE* environment variables, then to package defaults.
type Options struct {
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	Console    bool
}

var (
	mu            sync.RWMutex
	logger, rotor = newLogger(Options{})
)

// Configure replaces the active logger. Safe to call at any time.
func Configure(opts Options) {
	l, r := newLogger(opts)
	mu.Lock()
	defer mu.Unlock()
	_ = rotor.Close()
	logger, rotor = l, r
}

func newLogger(opts Options) (*log.Logger, *lumberjack.Logger) {
	if opts.Filename == "" {
		opts.Filename = getLogFilename()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = getEnvInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB)
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = getEnvInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays)
	}
	if !opts.Console {
		opts.Console = os.Getenv("LOG_CONSOLE") == "1"
	}

	rotor := &lumberjack.Logger{
		Filename: opts.Filename,
		MaxSize:  opts.MaxSizeMB,  // megabytes
		MaxAge:   opts.MaxAgeDays, // days
	}

	var out io.Writer = rotor
	if opts.Console {
		out = io.MultiWriter(rotor, os.Stderr)
	}
	return log.New(out, "", log.Ldate|log.Ltime|log.Lmicroseconds), rotor
}

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return defaultLogDir + logFile
	}
	return defaultLogDir + defaultLogFile
}

func getEnvInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func printf(color, level, category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	defer mu.RUnlock()
	logger.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	printf(ColorGreen, "INFO", category, content...)
}

func Error(category string, content ...interface{}) {
	printf(ColorRed, "ERROR", category, content...)
}

func Warn(category string, content ...interface{}) {
	printf(ColorYellow, "WARN", category, content...)
}

func Debug(category string, content ...interface{}) {
	printf(ColorBlue, "DEBUG", category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
