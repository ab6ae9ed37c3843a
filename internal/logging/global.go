package logging

import (
	"fmt"
	"sync"

	"jobscout/internal/logging/adapters"
	"jobscout/internal/logging/types"
)

// Options configures the process-wide logger. The zero value yields a JSON
// stdout logger at info level.
type Options struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`    // json or text
	Colorized bool   `yaml:"colorized"` // stdout only
	FilePath  string `yaml:"file_path"` // enables the file adapter when set
	MaxSize   int64  `yaml:"max_size"`  // file rotation threshold in bytes
}

var (
	globalLogger types.Logger
	globalMu     sync.RWMutex
)

// Initialize builds the global logger from the given options. Called once at
// process start, before any component logs.
func Initialize(opts Options) (types.Logger, error) {
	logger := NewMultiLogger()
	logger.SetLevel(types.ParseLevel(opts.Level))

	stdout := adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{
		Format:    opts.Format,
		Colorized: opts.Colorized,
	})
	if err := logger.AddAdapter(stdout); err != nil {
		return nil, fmt.Errorf("failed to add stdout adapter: %w", err)
	}

	if opts.FilePath != "" {
		file, err := adapters.NewFileAdapter("file", adapters.FileConfig{
			FilePath:   opts.FilePath,
			Format:     opts.Format,
			MaxSize:    opts.MaxSize,
			CreateDirs: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create file adapter: %w", err)
		}
		if err := logger.AddAdapter(file); err != nil {
			return nil, fmt.Errorf("failed to add file adapter: %w", err)
		}
	}

	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
	return logger, nil
}

// GetGlobalLogger returns the process-wide logger, falling back to a plain
// stdout logger when Initialize has not run (tests, mostly).
func GetGlobalLogger() types.Logger {
	globalMu.RLock()
	logger := globalLogger
	globalMu.RUnlock()
	if logger != nil {
		return logger
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		fallback := NewMultiLogger()
		fallback.AddAdapter(adapters.NewStdoutAdapter("stdout", adapters.StdoutConfig{Format: "text"}))
		globalLogger = fallback
	}
	return globalLogger
}
