package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RunLog is a timestamped log file for one CLI run.
type RunLog struct {
	file     *os.File
	filePath string
}

// OpenRunLog creates a timestamped log file under logDir.
// Returns nil if logDir is empty.
func OpenRunLog(logDir string) (*RunLog, error) {
	if logDir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	filename := fmt.Sprintf("cuepoint_run_%s.log", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	return &RunLog{file: file, filePath: filePath}, nil
}

// Close closes the log file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *RunLog) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Writer returns the log file, or io.Discard for a nil RunLog.
func (l *RunLog) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
