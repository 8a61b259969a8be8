package core

import (
	"go.uber.org/zap"
)

// Options contains the settings used to open a database.
type Options struct {
	// Logger receives handler and collection events.
	Logger *zap.SugaredLogger
	// ExportDir is the directory relative export and import file names resolve against.
	ExportDir string
}

type Option func(*Options)

// WithLogger sets the logger used by the database.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithExportDir sets the directory used for relative export and import file names.
func WithExportDir(dir string) Option {
	return func(o *Options) {
		o.ExportDir = dir
	}
}

func defaultOptions() Options {
	return Options{
		Logger: zap.NewNop().Sugar(),
	}
}
