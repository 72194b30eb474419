// Package logging points the standard logger at stderr and, optionally, a
// size-rotated log file.
package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 20
	maxBackups = 5
	maxAgeDays = 14
)

// Setup configures the standard logger. With an empty path it only sets the
// flags. The returned closer flushes and closes the file, if any.
func Setup(path string) io.Closer {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
