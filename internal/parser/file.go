package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/imishinist/congstat/internal/models"
)

// ParseLayoutsFile reads a layouts table, choosing the decoder by extension.
func ParseLayoutsFile(path string) (*models.LayoutsFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseJSONLayouts(file)
	case ".yaml", ".yml":
		return ParseYAMLLayouts(file)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .json, .yaml, .yml)", ext)
	}
}
