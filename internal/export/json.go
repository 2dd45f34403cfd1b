package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"internscout/internal/domain/models"
)

func WriteListingsJSON(path string, listings []models.ListingSummary) error {
	return writeJSON(path, listings)
}

func WriteMessagesJSON(path string, messages []models.Message) error {
	return writeJSON(path, messages)
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create export directory")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create export file")
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "encode json")
	}

	return errors.Wrap(file.Close(), "close export file")
}
