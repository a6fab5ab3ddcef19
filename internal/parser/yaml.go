package parser

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/imishinist/congstat/internal/models"
)

func ParseYAMLLayouts(reader io.Reader) (*models.LayoutsFile, error) {
	var data models.LayoutsFile
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML layouts: %w", err)
	}

	return &data, nil
}
