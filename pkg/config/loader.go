package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every configuration environment variable.
const EnvPrefix = "COGSYNC_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// sections are the top-level keys environment variables may set
var sections = map[string]bool{
	"install":     true,
	"source":      true,
	"fingerprint": true,
	"output":      true,
	"watch":       true,
	"lock":        true,
	"metrics":     true,
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, fmt.Errorf("not implemented")
}

// LoadOptions selects the layers to load
type LoadOptions struct {
	// InstallRoot is where the per-installation .cogsync.toml lives. When
	// empty, that layer is skipped.
	InstallRoot string

	// UserConfigPath overrides the XDG user config location.
	UserConfigPath string

	// SkipUserConfig ignores the user config file entirely.
	SkipUserConfig bool

	// Overrides are dotted keys set from command-line flags. Highest priority.
	Overrides map[string]interface{}
}

// Load builds the configuration from all layers and validates it
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse built-in defaults")
	}

	// 2. User config, then 3. the installation's own config
	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath = paths.UserConfigPath()
	}
	var layers []string
	if !opts.SkipUserConfig {
		layers = append(layers, userPath)
	}
	if opts.InstallRoot != "" {
		layers = append(layers, filepath.Join(opts.InstallRoot, paths.ProjectConfigFile))
	}
	for _, p := range layers {
		if err := loadFile(k, p); err != nil {
			return nil, err
		}
		logger.Trace().Str("path", p).Msg("config layer considered")
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 5. Flags
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}
	cfg.raw = k.Raw()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("install_dir", cfg.Install.Dir).
		Str("algorithm", cfg.Fingerprint.Algorithm).
		Str("format", cfg.Output.Format).
		Msg("configuration loaded")
	return &cfg, nil
}

// Default loads the configuration without reading any config file.
// Environment variables still apply.
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipUserConfig: true})
	if err != nil {
		panic(fmt.Sprintf("built-in configuration is invalid: %v", err))
	}
	return cfg
}

// loadFile merges a TOML file into k. A missing file is not an error.
func loadFile(k *koanf.Koanf, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat config file %s", path).
			WithDetail("path", path)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrConfigLoad, "config path %s is a directory", path).
			WithDetail("path", path)
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail("path", path)
	}
	return nil
}

// envKey maps COGSYNC_LOCK_STALE_AFTER to lock.stale_after: the first
// underscore after the prefix separates the section from the key. Variables
// outside a known section (COGSYNC_INSTALL_ROOT is one) are ignored.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || !sections[section] || rest == "" {
		return ""
	}
	if section == "install" && rest == "root" {
		return ""
	}
	return section + "." + rest
}
