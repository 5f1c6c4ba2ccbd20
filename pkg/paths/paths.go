// Package paths provides centralized path handling for cogsync.
// It resolves the installation root, lays out the installed tree and the
// template tree, and locates user configuration following the XDG Base
// Directory specification.
package paths

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/types"
)

// Environment variable names
const (
	// EnvInstallRoot is the primary environment variable for the installation root
	EnvInstallRoot = "COGSYNC_INSTALL_ROOT"

	// EnvConfigDir overrides the XDG config directory for cogsync
	EnvConfigDir = "COGSYNC_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files. The install dir, state dir and manifest
// name can be overridden through configuration; the rest are fixed.
const (
	// AppName is the directory name used under XDG base directories
	AppName = "cogsync"

	// DefaultInstallDir is the installed tree, relative to the installation root
	DefaultInstallDir = ".claude"

	// DefaultStateDir holds the manifest and the run lock, relative to the installed tree
	DefaultStateDir = "cognitive-core"

	// DefaultManifestFile is the manifest file name inside the state dir
	DefaultManifestFile = "version.json"

	// LockFileName is the run lock inside the state dir
	LockFileName = ".sync.lock"

	// ProjectConfigFile is the per-installation config file at the installation root
	ProjectConfigFile = ".cogsync.toml"

	// ConfigFileName is the user config file inside the config dir
	ConfigFileName = "config.toml"

	// CoreDir is the primary category root inside the template tree
	CoreDir = "core"
)

// Layout describes where an installation keeps its files.
type Layout struct {
	// InstallRoot is the absolute installation root (usually a project root).
	InstallRoot string

	// InstallDir is the installed tree relative to InstallRoot.
	InstallDir string

	// StateDir is relative to the installed tree.
	StateDir string

	// ManifestFile is the manifest's file name inside StateDir.
	ManifestFile string

	// UsedFallback is set when the root came from the working directory.
	UsedFallback bool
}

// New creates a Layout rooted at installRoot. If installRoot is empty, it is
// determined from the environment, the enclosing git repository, or the
// current directory, in that order.
func New(installRoot string) (*Layout, error) {
	l := &Layout{
		InstallDir:   DefaultInstallDir,
		StateDir:     DefaultStateDir,
		ManifestFile: DefaultManifestFile,
	}

	if installRoot == "" {
		root, usedFallback, err := findInstallRoot()
		if err != nil {
			return nil, err
		}
		l.InstallRoot = root
		l.UsedFallback = usedFallback
	} else {
		l.InstallRoot = expandHome(installRoot)
	}

	absRoot, err := filepath.Abs(l.InstallRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for installation root")
	}
	l.InstallRoot = absRoot

	return l, nil
}

// findInstallRoot determines the installation root using the following priority:
// 1. COGSYNC_INSTALL_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
func findInstallRoot() (string, bool, error) {
	if root := os.Getenv(EnvInstallRoot); root != "" {
		return expandHome(root), false, nil
	}

	gitRoot, err := findGitRoot()
	if err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// ExpandHome is the exported version of expandHome
func ExpandHome(path string) string {
	return expandHome(path)
}

// InstalledTree returns the absolute installed tree directory.
func (l *Layout) InstalledTree() string {
	return filepath.Join(l.InstallRoot, l.InstallDir)
}

// StatePath returns the absolute state directory.
func (l *Layout) StatePath() string {
	return filepath.Join(l.InstalledTree(), l.StateDir)
}

// ManifestPath returns the absolute manifest path.
func (l *Layout) ManifestPath() string {
	return filepath.Join(l.StatePath(), l.ManifestFile)
}

// LockPath returns the absolute run lock path.
func (l *Layout) LockPath() string {
	return filepath.Join(l.StatePath(), LockFileName)
}

// ProjectConfigPath returns the per-installation config file path.
func (l *Layout) ProjectConfigPath() string {
	return filepath.Join(l.InstallRoot, ProjectConfigFile)
}

// Installed maps a slash-separated manifest path to its absolute location.
func (l *Layout) Installed(rel string) string {
	return filepath.Join(l.InstalledTree(), filepath.FromSlash(rel))
}

// Rel maps an absolute path inside the installed tree to its manifest path.
func (l *Layout) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(l.InstalledTree(), abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "path %s is outside the installed tree", abs)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.Newf(errors.ErrInvalidInput, "path %s is outside the installed tree", abs)
	}
	return rel, nil
}

// IsState reports whether a manifest path falls inside the state directory.
func (l *Layout) IsState(rel string) bool {
	state := filepath.ToSlash(filepath.Clean(l.StateDir))
	return rel == state || strings.HasPrefix(rel, state+"/")
}

func (l *Layout) String() string {
	return fmt.Sprintf("%s (%s)", l.InstallRoot, l.InstallDir)
}

// ConfigDir returns the user config directory, honoring COGSYNC_CONFIG_DIR.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// UserConfigPath returns the user config file path.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// TemplateCategoryDir returns <source>/core/<category dir>. It returns ""
// for categories without a template directory.
func TemplateCategoryDir(source string, c types.Category) string {
	if !c.Reconcilable() {
		return ""
	}
	return filepath.Join(source, CoreDir, c.Dir())
}

// PackSkillsDir returns <source>/<pack>/skills.
func PackSkillsDir(source, pack string) string {
	return filepath.Join(source, filepath.FromSlash(pack), types.SkillsDir)
}

// ListExtensionPacks returns every pack directory under language-packs/ and
// database-packs/, as slash-separated paths relative to source, sorted.
func ListExtensionPacks(source string) []string {
	var packs []string
	for _, parent := range []string{types.LanguagePacksDir, types.DatabasePacksDir} {
		entries, err := os.ReadDir(filepath.Join(source, parent))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				packs = append(packs, parent+"/"+e.Name())
			}
		}
	}
	sort.Strings(packs)
	return packs
}

// ExtensionPackOrder returns the resolver's pack search order. An
// installation that recorded a selection searches only its selected packs,
// in selection order. Without one (manifests predating selections) every
// pack found on disk is searched, selected packs first.
func ExtensionPackOrder(source string, selected []string, restrict bool) []string {
	seen := make(map[string]bool)
	var order []string
	for _, p := range selected {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		order = append(order, p)
	}
	if restrict {
		return order
	}
	for _, p := range ListExtensionPacks(source) {
		if !seen[p] {
			seen[p] = true
			order = append(order, p)
		}
	}
	return order
}
