// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

const flags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

// logFile is the currently open log file, if any.
var logFile *os.File

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures dir exists.
// - Creates a timestamped log file in dir.
// - Writes logs to both the file and stdout.
// An empty dir logs to stdout only.
func InitLogger(dir string) error {
	if dir == "" {
		setOutput(os.Stdout)
		return nil
	}

	// ensure logs directory exists
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	// create a timestamped log file
	logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return err
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file

	setOutput(io.MultiWriter(os.Stdout, file))
	return nil
}

// setOutput configures each logger with consistent prefixes & flags.
func setOutput(w io.Writer) {
	Info = log.New(w, "INFO: ", flags)
	Warn = log.New(w, "WARN: ", flags)
	Error = log.New(w, "ERROR: ", flags)
	Debug = log.New(w, "DEBUG: ", flags)
}

// SetLogLevel adjusts the Debug logger's output depending on environment.
// In production debug output is discarded entirely.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// SetOutput redirects every logger to w. Tests use it to capture or silence logs.
func SetOutput(w io.Writer) {
	setOutput(w)
}

// init makes the loggers usable before InitLogger is called (stdout only).
func init() {
	setOutput(os.Stdout)
}
