package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/rescue/internal/document"
	"github.com/MikeSquared-Agency/rescue/internal/screenplay"
)

// ErrUnsupported is returned by LoadFile for extensions it does not read.
var ErrUnsupported = errors.New("unsupported file type")

// Supported reports whether LoadFile can read path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".txt", ".html", ".htm":
		return true
	}
	return false
}

// LoadFile reads one scraped script. JSON files decode as a RawScript,
// either raw text or pre-segmented scenes. Text and HTML files become a
// RawScript slugged after the file name.
func LoadFile(path string) (screenplay.RawScript, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return screenplay.RawScript{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return screenplay.RawScript{}, fmt.Errorf("read %s: %w", path, err)
	}
	stem := document.Slugify(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	if ext == ".json" {
		var raw screenplay.RawScript
		if err := json.Unmarshal(data, &raw); err != nil {
			return screenplay.RawScript{}, fmt.Errorf("decode %s: %w", path, err)
		}
		if raw.Slug == "" && raw.Title == "" {
			raw.Slug = stem
		}
		return raw, nil
	}

	return screenplay.RawScript{
		Slug:   stem,
		Format: strings.TrimPrefix(ext, "."),
		Text:   string(data),
	}, nil
}
