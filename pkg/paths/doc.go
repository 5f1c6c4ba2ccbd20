// Package paths provides centralized path handling for cogsync.
//
// An installation has two trees. The installed tree lives under the
// installation root (default ".claude") and holds hooks, agents, skills and
// generated files, plus a state directory with the manifest and run lock:
//
//	<root>/.claude/hooks/<file>
//	<root>/.claude/agents/<file>
//	<root>/.claude/skills/<bundle>/<...>
//	<root>/.claude/cognitive-core/version.json
//	<root>/.claude/cognitive-core/.sync.lock
//
// The template tree is read-only and organized by category, with optional
// extension packs that can only contribute skills:
//
//	<source>/core/hooks/<file>
//	<source>/core/agents/<file>
//	<source>/core/skills/<bundle>/<...>
//	<source>/language-packs/<lang>/skills/<bundle>/<...>
//	<source>/database-packs/<db>/skills/<bundle>/<...>
//
// # Environment Variables
//
//   - COGSYNC_INSTALL_ROOT: installation root (default: git root, then cwd)
//   - COGSYNC_CONFIG_DIR: override the config directory (default: $XDG_CONFIG_HOME/cogsync)
package paths
