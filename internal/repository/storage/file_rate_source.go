package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// FileRateSource reads a TOML rate document from disk on every load,
// so edits to the file are picked up by the next refresh.
type FileRateSource struct {
	path string
}

var _ domain.RateSource = (*FileRateSource)(nil)

// NewFileRateSource creates a source for the given path
func NewFileRateSource(path string) *FileRateSource {
	return &FileRateSource{path: path}
}

func (s *FileRateSource) Name() string {
	return "file:" + s.path
}

// Load reads and parses the file
func (s *FileRateSource) Load(ctx context.Context) (map[string]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrRateSourceUnavailable, s.path, err)
	}
	return parseRateDocument(data)
}
