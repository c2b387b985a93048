package common

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func DefaultLogConfig() LogConfig {
	return LogConfig{
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
}

// SetupLogging points the standard logger at stderr, tee'd to a rotated file
// when FilePath is set. The returned func closes the file.
func SetupLogging(cfg LogConfig) (func() error, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.FilePath == "" {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
		LocalTime:  true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, lj))
	return func() error {
		log.SetOutput(os.Stderr)
		return lj.Close()
	}, nil
}
