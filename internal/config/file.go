package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	quillerrors "github.com/conneroisu/quill/internal/errors"
)

// FileCandidates are the conventional config locations relative to the
// project root, in lookup order.
var FileCandidates = []string{
	"config/quill.yaml",
	"config/quill.yml",
	"config/quill.json",
	"config/quill.toml",
	"quill.yaml",
	"quill.yml",
	"quill.json",
	"quill.toml",
	".quill.yaml",
	".quill.yml",
	".quill.json",
	".quill.toml",
}

// FindFile returns the first existing candidate under root, or "".
func FindFile(root string, candidates []string) string {
	for _, candidate := range candidates {
		path := candidate
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, candidate)
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadFile reads and decodes a configuration file. The format follows the
// extension: .yaml/.yml, .json or .toml.
func LoadFile(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, quillerrors.NewConfigError(
			quillerrors.ErrCodeConfigFile,
			"configuration file is not readable",
			err,
		).WithPath(path)
	}

	out := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &out)
	case ".json":
		err = json.Unmarshal(raw, &out)
	case ".toml":
		err = toml.Unmarshal(raw, &out)
	default:
		err = fmt.Errorf("unsupported configuration format %q", ext)
	}
	if err != nil {
		return nil, quillerrors.NewConfigError(
			quillerrors.ErrCodeConfigFile,
			"configuration file could not be parsed",
			err,
		).WithPath(path)
	}

	return Normalize(out), nil
}
