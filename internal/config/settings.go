package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// Settings is the typed view of a Snapshot used by the engine and the
// render pipeline.
type Settings struct {
	ViewsPath          string            `mapstructure:"viewsPath" validate:"required"`
	CachePath          string            `mapstructure:"cachePath" validate:"required"`
	ComponentPath      string            `mapstructure:"componentPath"`
	ComponentNamespace string            `mapstructure:"componentNamespace"`
	Namespaces         map[string]string `mapstructure:"namespaces"`
	Debug              bool              `mapstructure:"debug"`
	AutoReload         bool              `mapstructure:"autoReload"`
	Extensions         []string          `mapstructure:"extensions" validate:"dive,required"`
	ErrorHandling      ErrorHandling     `mapstructure:"errorHandling"`
	Performance        Performance       `mapstructure:"performance"`
	Security           Security          `mapstructure:"security"`
	Locale             string            `mapstructure:"locale"`
	FallbackLocale     string            `mapstructure:"fallbackLocale"`
	LangPath           string            `mapstructure:"langPath"`
	AppURL             string            `mapstructure:"appURL"`
	AssetURL           string            `mapstructure:"assetURL"`
	Routes             map[string]string `mapstructure:"routes"`
	Environment        string            `mapstructure:"environment"`
}

// ErrorHandling selects the render failure recovery branches.
type ErrorHandling struct {
	ShowErrors bool   `mapstructure:"showErrors"`
	LogErrors  bool   `mapstructure:"logErrors"`
	ErrorView  string `mapstructure:"errorView"`
}

// Performance tunes the compiled view cache.
type Performance struct {
	PrecompileViews bool `mapstructure:"precompileViews"`
	CacheFileChecks bool `mapstructure:"cacheFileChecks"`
}

// Security toggles security related directives.
type Security struct {
	CSRFToken bool `mapstructure:"csrfToken"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode converts a snapshot into Settings. Unknown keys are ignored;
// nil values leave the zero value in place.
func Decode(s *Snapshot) (*Settings, error) {
	var out Settings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(s.All()); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &out, nil
}

// Validate checks the fields every usable configuration needs.
func (s *Settings) Validate() error {
	return validate.Struct(s)
}
