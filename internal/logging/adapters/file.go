package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobscout/internal/logging/types"
)

// FileAdapter implements the LogAdapter interface for file output with
// size-based rotation.
type FileAdapter struct {
	name        string
	config      FileConfig
	currentFile *os.File
	currentSize int64
	mu          sync.Mutex
}

// FileConfig represents configuration for the file adapter
type FileConfig struct {
	FilePath   string `yaml:"file_path"`   // path to log file
	Format     string `yaml:"format"`      // json or text
	MaxSize    int64  `yaml:"max_size"`    // max file size in bytes (0 = no limit)
	MaxBackups int    `yaml:"max_backups"` // max number of rotated files to keep
	CreateDirs bool   `yaml:"create_dirs"` // create parent directories if missing
}

// NewFileAdapter creates a new file adapter
func NewFileAdapter(name string, config FileConfig) (*FileAdapter, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required for file adapter")
	}
	if config.MaxBackups == 0 {
		config.MaxBackups = 5
	}

	adapter := &FileAdapter{name: name, config: config}
	if err := adapter.openFile(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return adapter, nil
}

// Write writes a log entry to the file, rotating first when over the limit.
func (a *FileAdapter) Write(entry *types.LogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var output string
	var err error
	switch a.config.Format {
	case "text":
		output = formatText(entry, false)
	default:
		output, err = formatJSON(entry)
	}
	if err != nil {
		return fmt.Errorf("failed to format log entry: %w", err)
	}
	output += "\n"

	if a.config.MaxSize > 0 && a.currentSize+int64(len(output)) > a.config.MaxSize {
		if err := a.rotate(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	n, err := a.currentFile.WriteString(output)
	a.currentSize += int64(n)
	return err
}

// Close closes the underlying file
func (a *FileAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.currentFile == nil {
		return nil
	}
	err := a.currentFile.Close()
	a.currentFile = nil
	return err
}

// Name returns the name of the adapter
func (a *FileAdapter) Name() string {
	return a.name
}

func (a *FileAdapter) openFile() error {
	if a.config.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(a.config.FilePath), 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(a.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	a.currentFile = f
	a.currentSize = info.Size()
	return nil
}

// rotate renames the current file with a timestamp suffix and reopens a
// fresh one, pruning the oldest backups beyond MaxBackups.
func (a *FileAdapter) rotate() error {
	if a.currentFile != nil {
		a.currentFile.Close()
		a.currentFile = nil
	}

	rotated := fmt.Sprintf("%s.%s", a.config.FilePath, time.Now().Format("20060102T150405"))
	if err := os.Rename(a.config.FilePath, rotated); err != nil && !os.IsNotExist(err) {
		return err
	}

	a.pruneBackups()
	return a.openFile()
}

func (a *FileAdapter) pruneBackups() {
	matches, err := filepath.Glob(a.config.FilePath + ".*")
	if err != nil || len(matches) <= a.config.MaxBackups {
		return
	}
	// Glob results are lexically sorted; timestamp suffixes keep that in
	// chronological order, so the head of the list is oldest.
	for _, old := range matches[:len(matches)-a.config.MaxBackups] {
		os.Remove(old)
	}
}
