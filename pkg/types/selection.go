package types

import (
	"path"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Extension pack parent directories in the template tree
const (
	LanguagePacksDir = "language-packs"
	DatabasePacksDir = "database-packs"
)

// Selection is the typed view of Manifest.Selection that discovery uses to
// honor what the operator chose at provisioning time. Empty lists mean
// "everything".
type Selection struct {
	// Categories limits discovery to these categories (hook, agent, skill).
	Categories []string `mapstructure:"categories"`
	Agents     []string `mapstructure:"agents"`
	Skills     []string `mapstructure:"skills"`
	Language   string   `mapstructure:"language"`
	Database   string   `mapstructure:"database"`
	// Packs names extra extension pack directories relative to the template root.
	Packs []string `mapstructure:"packs"`
}

// DecodeSelection decodes the opaque selection map. Unknown keys are ignored;
// comma separated strings are accepted where lists are expected.
func DecodeSelection(raw map[string]any) (Selection, error) {
	var sel Selection
	if len(raw) == 0 {
		return sel, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &sel,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return sel, err
	}
	if err := decoder.Decode(raw); err != nil {
		return sel, err
	}
	return sel, nil
}

// CategorySelected reports whether discovery may add files of c.
func (s Selection) CategorySelected(c Category) bool {
	if !c.Reconcilable() {
		return false
	}
	return containsOrEmpty(s.Categories, c.String(), c.Dir())
}

// AgentSelected matches an agent file name with or without its extension.
func (s Selection) AgentSelected(file string) bool {
	name := strings.TrimSuffix(file, path.Ext(file))
	return containsOrEmpty(s.Agents, name, file)
}

// SkillSelected matches a skill bundle name.
func (s Selection) SkillSelected(bundle string) bool {
	return containsOrEmpty(s.Skills, bundle)
}

// ExtensionPacks returns the selected extension pack directories in
// priority order: language, database, then explicit packs.
func (s Selection) ExtensionPacks() []string {
	var packs []string
	seen := map[string]bool{}
	add := func(p string) {
		p = strings.Trim(path.Clean(strings.TrimSpace(p)), "/")
		if p == "" || p == "." || seen[p] {
			return
		}
		seen[p] = true
		packs = append(packs, p)
	}
	if s.Language != "" && !isNone(s.Language) {
		add(path.Join(LanguagePacksDir, s.Language))
	}
	if s.Database != "" && !isNone(s.Database) {
		add(path.Join(DatabasePacksDir, s.Database))
	}
	for _, p := range s.Packs {
		add(p)
	}
	return packs
}

func isNone(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "none" || v == "unknown"
}

func containsOrEmpty(list []string, candidates ...string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		item = strings.TrimSpace(item)
		for _, c := range candidates {
			if c != "" && strings.EqualFold(item, c) {
				return true
			}
		}
	}
	return false
}
