package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/quill/internal/logging"
)

// OutputFormats lists the values accepted by --output.
var OutputFormats = []string{"text", "json", "yaml"}

// addOutputFlag adds --output/-o with validation.
func addOutputFlag(cmd *cobra.Command, target *string, def string) {
	cmd.Flags().StringVarP(target, "output", "o", def, "output format ("+strings.Join(OutputFormats, "|")+")")
	AddFlagValidation(cmd, "output", ValidateOneOf(OutputFormats...))
}

// writeOutput prints v as JSON or YAML. Text output prints strings as is
// and falls back to YAML for structured values.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		switch value := v.(type) {
		case string:
			_, err := fmt.Fprintln(w, value)
			return err
		case map[string]any, []any:
			return writeOutput(w, "yaml", v)
		default:
			_, err := fmt.Fprintln(w, value)
			return err
		}
	}
}

// renderFlags holds the data sources of the render command.
type renderFlags struct {
	Data      string
	DataFile  string
	Sets      []string
	Fragments []string
	Out       string
}

func addRenderFlags(cmd *cobra.Command, flags *renderFlags) {
	cmd.Flags().StringVarP(&flags.Data, "data", "d", "", "view data as JSON, or @file")
	cmd.Flags().StringVarP(&flags.DataFile, "data-file", "f", "", "view data file (JSON or YAML)")
	cmd.Flags().StringArrayVar(&flags.Sets, "set", nil, "set a data value (key=value, dots nest)")
	cmd.Flags().StringSliceVar(&flags.Fragments, "fragment", nil, "only output the named fragments")
	cmd.Flags().StringVar(&flags.Out, "out", "", "write the output to a file instead of stdout")
	AddFlagValidation(cmd, "data", ValidateJSON)
	AddFlagValidation(cmd, "data-file", ValidateFileExists)
}

// ParseData builds the view data from --data-file, then --data, then
// each --set in order.
func (f *renderFlags) ParseData() (map[string]any, error) {
	if f.Data != "" && f.DataFile != "" {
		return nil, fmt.Errorf("cannot specify both --data and --data-file")
	}

	data := make(map[string]any)
	switch {
	case f.DataFile != "":
		if err := readDataFile(f.DataFile, &data); err != nil {
			return nil, err
		}
	case strings.HasPrefix(f.Data, "@"):
		if err := readDataFile(strings.TrimPrefix(f.Data, "@"), &data); err != nil {
			return nil, err
		}
	case f.Data != "":
		if err := json.Unmarshal([]byte(f.Data), &data); err != nil {
			return nil, fmt.Errorf("invalid JSON in --data: %w", err)
		}
	}

	for _, set := range f.Sets {
		key, value, ok := strings.Cut(set, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", set)
		}
		setPath(data, strings.Split(strings.TrimSpace(key), "."), value)
	}
	return data, nil
}

func readDataFile(path string, out *map[string]any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, out)
	default:
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		return fmt.Errorf("invalid data file %s: %w", path, err)
	}
	if *out == nil {
		*out = make(map[string]any)
	}
	return nil
}

func setPath(data map[string]any, keys []string, value string) {
	for _, key := range keys[:len(keys)-1] {
		next, ok := data[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			data[key] = next
		}
		data = next
	}
	data[keys[len(keys)-1]] = value
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		flag = cmd.PersistentFlags().Lookup(flagName)
	}
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateOneOf accepts only the given values.
func ValidateOneOf(allowed ...string) func(string) error {
	return func(val string) error {
		if slices.Contains(allowed, val) {
			return nil
		}
		return fmt.Errorf("invalid value %s, must be one of: %s", val, strings.Join(allowed, ", "))
	}
}

// ValidateLogLevel accepts the level names understood by the logger.
func ValidateLogLevel(val string) error {
	_, err := logging.ParseLevel(val)
	return err
}

// ValidateFileExists accepts empty values and existing files.
func ValidateFileExists(filename string) error {
	if filename == "" {
		return nil
	}

	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	return nil
}

// ValidateJSON accepts empty values, @file references and valid JSON.
func ValidateJSON(jsonStr string) error {
	if jsonStr == "" {
		return nil
	}
	if strings.HasPrefix(jsonStr, "@") {
		return ValidateFileExists(strings.TrimPrefix(jsonStr, "@"))
	}

	var temp any
	if err := json.Unmarshal([]byte(jsonStr), &temp); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
