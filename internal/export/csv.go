// Package export writes the surviving characters to local files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/character"
)

// csvHeader is the stable column order consumers depend on.
var csvHeader = []string{"Name", "Location", "Image"}

// CSVSink saves characters as an RFC 4180 CSV file. The file is built in
// memory and written in one shot, so a failed run never leaves a truncated
// file behind.
type CSVSink struct {
	path   string
	logger *zap.Logger
}

// NewCSVSink returns a sink writing to path. An existing file at path is
// overwritten on save.
func NewCSVSink(path string, logger *zap.Logger) *CSVSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSink{path: path, logger: logger}
}

// Save writes the header row plus one row per character, in order. A run
// with zero characters produces a header-only file.
func (s *CSVSink) Save(ctx context.Context, chars []character.Character) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, c := range chars {
		if err := w.Write([]string{c.Name, c.Location, c.Image}); err != nil {
			return fmt.Errorf("write csv row for %q: %w", c.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create csv dir %s: %w", dir, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write csv %s: %w", s.path, err)
	}

	s.logger.Info("saved characters",
		zap.Int("count", len(chars)),
		zap.String("path", s.path),
	)
	return nil
}
