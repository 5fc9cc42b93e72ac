// Package fs provides file-based persistence for scan reports.
package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReportStore writes JSON reports with atomic update semantics. A report
// is written to a temporary file in the target directory, then moved into
// place, so a crash mid-write never leaves a truncated report behind.
type ReportStore struct {
	baseDir string
}

// NewReportStore creates a new ReportStore rooted at baseDir.
func NewReportStore(baseDir string) *ReportStore {
	return &ReportStore{baseDir: baseDir}
}

// Save writes the report for a run as indented JSON to <baseDir>/<name>.json.
// An existing report for the same name is replaced atomically.
func (s *ReportStore) Save(name string, report any) (string, error) {
	if err := validName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	finalPath := filepath.Join(s.baseDir, name+".json")
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return finalPath, nil
}

// Load reads a previously saved report into out.
func (s *ReportStore) Load(name string, out any) error {
	if err := validName(name); err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, name+".json"))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// validName rejects names that would escape the base directory.
func validName(name string) error {
	if name == "" {
		return fmt.Errorf("report name required")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid report name %q", name)
	}
	return nil
}
