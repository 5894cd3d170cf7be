package paths

import (
	"path"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-publish/resources"
)

// FolderRule is the layout rule for one resource type.
type FolderRule struct {
	// Folder is relative to the repository root; empty means the root itself.
	Folder string `json:"folder" yaml:"folder"`
	// IDSubfolder nests every resource in a folder named after its id, which
	// makes file names collision free by construction.
	IDSubfolder bool `json:"id_subfolder" yaml:"id_subfolder"`
}

// Profile maps each resource type to its folder rule.
type Profile map[resources.Type]FolderRule

// DefaultProfile returns the stock layout: every content type lives in an
// ID-keyed subfolder, workspaces sit at the root.
func DefaultProfile() Profile {
	return Profile{
		resources.TypeFile:      {Folder: "files", IDSubfolder: true},
		resources.TypePage:      {Folder: "pages", IDSubfolder: true},
		resources.TypeDatabase:  {Folder: "databases", IDSubfolder: true},
		resources.TypeWorkspace: {Folder: "", IDSubfolder: false},
	}
}

// Clone returns a normalized copy so callers cannot mutate a resolver's rules.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for t, rule := range p {
		rule.Folder = normalizeFolder(rule.Folder)
		out[t] = rule
	}
	return out
}

// Validate checks that every resource type has a rule and that folders stay
// inside the repository root.
func (p Profile) Validate() error {
	errs := validation.Errors{}
	for _, t := range resources.Types() {
		rule, ok := p[t]
		if !ok {
			errs[string(t)] = validation.NewError("publish.paths.profile.rule_missing", "folder rule is required")
			continue
		}
		if err := validateFolder(rule.Folder); err != nil {
			errs[string(t)] = err
		}
	}
	for t := range p {
		if !t.Valid() {
			errs[string(t)] = validation.NewError("publish.paths.profile.type_unknown", "unknown resource type")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateFolder(folder string) error {
	raw := strings.TrimSpace(folder)
	if raw == "" {
		return nil
	}
	if filepath.IsAbs(raw) || strings.HasPrefix(filepath.ToSlash(raw), "/") {
		return validation.NewError("publish.paths.profile.folder_absolute", "folder must be relative to the repository root")
	}
	clean := normalizeFolder(raw)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return validation.NewError("publish.paths.profile.folder_escapes", "folder must not escape the repository root")
	}
	return nil
}

func normalizeFolder(folder string) string {
	clean := path.Clean(filepath.ToSlash(strings.TrimSpace(folder)))
	if clean == "." || clean == "/" {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}
