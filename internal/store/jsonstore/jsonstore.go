package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/leads/internal/model"
)

// Lead lists on disk, in the same shape the server sends them.
// Used for fixture files and for `leads export`.

// DefaultFile is used when no path is given.
const DefaultFile = "leads.json"

// Resolve turns an empty or relative path into an absolute one under the
// working directory.
func Resolve(p string) (string, error) {
	if p == "" {
		p = DefaultFile
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, p), nil
}

// Load reads the leads in path. A missing file is an empty list.
func Load(path string) ([]model.Lead, error) {
	p, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Lead{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var leads []model.Lead
	if err := json.Unmarshal(b, &leads); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	return leads, nil
}

// Save writes leads to path as indented JSON.
func Save(path string, leads []model.Lead) error {
	p, err := Resolve(path)
	if err != nil {
		return err
	}
	if leads == nil {
		leads = []model.Lead{}
	}
	b, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
