package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/fingerprint"
	"github.com/arthur-debert/cogsync/pkg/paths"
	"github.com/go-playground/validator/v10"
)

// Config is the complete cogsync configuration
type Config struct {
	Install     Install     `koanf:"install"`
	Source      Source      `koanf:"source"`
	Fingerprint Fingerprint `koanf:"fingerprint"`
	Output      Output      `koanf:"output"`
	Watch       Watch       `koanf:"watch"`
	Lock        Lock        `koanf:"lock"`
	Metrics     Metrics     `koanf:"metrics"`

	// raw holds the merged key tree, kept for genconfig --effective
	raw map[string]interface{}
}

// Install locates the installed tree under the installation root
type Install struct {
	Dir      string `koanf:"dir" validate:"required,relpath"`
	StateDir string `koanf:"state_dir" validate:"required,relpath"`
	Manifest string `koanf:"manifest" validate:"required,filename"`
}

// Source locates the template tree
type Source struct {
	Location string `koanf:"location"`
}

// Fingerprint selects the hash for newly recorded fingerprints
type Fingerprint struct {
	Algorithm string `koanf:"algorithm" validate:"required,oneof=sha256 blake3"`
}

// Output selects the report format
type Output struct {
	Format string `koanf:"format" validate:"required,oneof=auto term text json yaml junit"`
}

// Watch configures watch mode
type Watch struct {
	Debounce time.Duration `koanf:"debounce" validate:"gte=0"`
}

// Lock configures the run lock
type Lock struct {
	StaleAfter time.Duration `koanf:"stale_after" validate:"gt=0"`
}

// Metrics configures the Prometheus textfile
type Metrics struct {
	Textfile string `koanf:"textfile"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("relpath", validateRelPath)
	_ = configValidate.RegisterValidation("filename", validateFileName)
}

// validateRelPath accepts a clean relative path that stays below its parent.
func validateRelPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" || filepath.IsAbs(p) {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(p))
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// validateFileName accepts a single path element.
func validateFileName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		cerr := errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldKey(fe.Namespace()))
			}
			cerr.WithDetail("fields", fields)
		}
		return cerr
	}
	return nil
}

// fieldKey turns "Config.Install.StateDir" into "install.statedir".
func fieldKey(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

// Algorithm returns the configured fingerprint algorithm
func (c *Config) Algorithm() fingerprint.Algorithm {
	algo, err := fingerprint.ParseAlgorithm(c.Fingerprint.Algorithm)
	if err != nil {
		return fingerprint.Default
	}
	return algo
}

// Layout builds the installation layout rooted at installRoot, applying the
// configured install dir, state dir and manifest name.
func (c *Config) Layout(installRoot string) (*paths.Layout, error) {
	l, err := paths.New(installRoot)
	if err != nil {
		return nil, err
	}
	l.InstallDir = filepath.Clean(c.Install.Dir)
	l.StateDir = filepath.Clean(c.Install.StateDir)
	l.ManifestFile = c.Install.Manifest
	return l, nil
}
