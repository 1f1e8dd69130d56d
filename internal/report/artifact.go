package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifact persists a report document under dir as
// performance_report_<reportID>.json, creating dir if needed.
// It returns the path written.
func WriteArtifact(dir, reportID string, doc any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("performance_report_%s.json", reportID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
