package types

import (
	"fmt"
	"path"
	"strings"
)

// Category classifies a tracked path. The set is closed: every switch over
// Category must handle all four values.
type Category int

const (
	// CategoryLocal covers generated and always-local files. They belong to
	// the installation from the moment they are written and are never
	// reconciled.
	CategoryLocal Category = iota
	// CategoryHook is a behavioral hook script under hooks/.
	CategoryHook
	// CategoryAgent is an agent definition under agents/.
	CategoryAgent
	// CategorySkill is any file inside a skill bundle under skills/<bundle>/.
	CategorySkill
)

// Installed-tree directory names for each template-backed category
const (
	HooksDir  = "hooks"
	AgentsDir = "agents"
	SkillsDir = "skills"
)

// Categories lists every category in a stable order.
var Categories = []Category{CategoryHook, CategoryAgent, CategorySkill, CategoryLocal}

func (c Category) String() string {
	switch c {
	case CategoryHook:
		return "hook"
	case CategoryAgent:
		return "agent"
	case CategorySkill:
		return "skill"
	case CategoryLocal:
		return "local"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory is the inverse of String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hook", "hooks":
		return CategoryHook, nil
	case "agent", "agents":
		return CategoryAgent, nil
	case "skill", "skills":
		return CategorySkill, nil
	case "local", "generated":
		return CategoryLocal, nil
	default:
		return CategoryLocal, fmt.Errorf("unknown category %q", s)
	}
}

// MarshalText renders the category name in manifests and reports.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Dir returns the installed-tree directory for template-backed categories,
// or "" for CategoryLocal.
func (c Category) Dir() string {
	switch c {
	case CategoryHook:
		return HooksDir
	case CategoryAgent:
		return AgentsDir
	case CategorySkill:
		return SkillsDir
	case CategoryLocal:
		return ""
	}
	return ""
}

// Reconcilable reports whether files of this category follow the template.
func (c Category) Reconcilable() bool {
	switch c {
	case CategoryHook, CategoryAgent, CategorySkill:
		return true
	case CategoryLocal:
		return false
	}
	return false
}

// Classify maps an installed relative path (slash or OS separated) to its
// category:
//
//	hooks/<file>             hook
//	agents/<file>            agent
//	skills/<bundle>/<...>    skill
//	anything else            local
func Classify(rel string) Category {
	clean := path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	parts := strings.Split(clean, "/")

	switch {
	case len(parts) == 2 && parts[0] == HooksDir:
		return CategoryHook
	case len(parts) == 2 && parts[0] == AgentsDir:
		return CategoryAgent
	case len(parts) >= 3 && parts[0] == SkillsDir:
		return CategorySkill
	default:
		return CategoryLocal
	}
}

// SkillBundle splits a skill path into its bundle name and the path inside
// the bundle. ok is false for non-skill paths.
func SkillBundle(rel string) (bundle, inner string, ok bool) {
	if Classify(rel) != CategorySkill {
		return "", "", false
	}
	clean := path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	parts := strings.SplitN(clean, "/", 3)
	return parts[1], parts[2], true
}
