package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/imishinist/congstat/internal/models"
)

func ParseJSONLayouts(reader io.Reader) (*models.LayoutsFile, error) {
	var data models.LayoutsFile
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse JSON layouts: %w", err)
	}

	return &data, nil
}
