package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// dataDescriptionFile — метаданные датасета, лежащие рядом с данными.
const dataDescriptionFile = "data_description.json"

// DatasetName возвращает имя датасета для вызова.
//
// Явно заданное имя имеет приоритет; иначе оно читается из
// data_description.json в data-папке.
func (c *Config) DatasetName() (string, error) {
	if c.Dataset != "" {
		return c.Dataset, nil
	}

	path := filepath.Join(c.DataDir, dataDescriptionFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("dataset name not configured and %s unreadable: %w", path, err)
	}

	var desc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if desc.Name == "" {
		return "", fmt.Errorf("%s has no dataset name", path)
	}
	return desc.Name, nil
}
