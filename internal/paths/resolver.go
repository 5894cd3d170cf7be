package paths

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-publish/internal/identity"
	"github.com/goliatone/go-publish/internal/logging"
	"github.com/goliatone/go-publish/pkg/interfaces"
	"github.com/goliatone/go-publish/resources"
)

// DefaultMaxConflictAttempts bounds the candidate search in ResolveConflict.
const DefaultMaxConflictAttempts = 10000

const conflictMarker = "[LN "

// ExistsFunc reports whether an absolute path is already taken.
type ExistsFunc func(absPath string) bool

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxConflictAttempts raises the conflict search bound. Values below
// DefaultMaxConflictAttempts are ignored.
func WithMaxConflictAttempts(n int) Option {
	return func(r *Resolver) {
		if n > DefaultMaxConflictAttempts {
			r.maxAttempts = n
		}
	}
}

// WithExistsFunc overrides the filesystem probe used by ResolveConflict.
func WithExistsFunc(fn ExistsFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.exists = fn
		}
	}
}

// WithLogger sets the logger used for conflict diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps resources to their on-disk location under a repository root.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	root        string
	profile     Profile
	maxAttempts int
	exists      ExistsFunc
	logger      interfaces.Logger
}

// NewResolver validates the profile against root and returns a resolver.
// Configuration defects are reported as *InvalidConfigurationError.
func NewResolver(root string, profile Profile, opts ...Option) (*Resolver, error) {
	trimmed := strings.TrimSpace(root)
	if trimmed == "" {
		return nil, &InvalidConfigurationError{Err: ErrRootRequired}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return nil, &InvalidConfigurationError{Root: trimmed, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &InvalidConfigurationError{Root: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, &InvalidConfigurationError{Root: abs, Err: &os.PathError{Op: "stat", Path: abs, Err: os.ErrInvalid}}
	}
	if profile == nil {
		profile = DefaultProfile()
	}
	if err := profile.Validate(); err != nil {
		wrapped := goerrors.Wrap(err, goerrors.CategoryValidation, "path profile does not resolve against repository root").
			WithTextCode("PATH_PROFILE_INVALID")
		return nil, &InvalidConfigurationError{Root: abs, Err: wrapped}
	}

	r := &Resolver{
		root:        abs,
		profile:     profile.Clone(),
		maxAttempts: DefaultMaxConflictAttempts,
		exists:      statExists,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Root returns the absolute repository root.
func (r *Resolver) Root() string {
	return r.root
}

// Profile returns a copy of the active profile.
func (r *Resolver) Profile() Profile {
	return r.profile.Clone()
}

// IsIDSubfoldered reports whether resources of type t live in an ID-keyed folder.
func (r *Resolver) IsIDSubfoldered(t resources.Type) bool {
	rule, ok := r.profile[t]
	return ok && rule.IDSubfolder
}

// ResourceFolder returns the root-relative folder of res using forward slashes.
// An empty string denotes the repository root.
func (r *Resolver) ResourceFolder(res *resources.Resource) (string, error) {
	if res == nil {
		return "", resources.ErrInvalidResource
	}
	rule, ok := r.profile[res.Type]
	if !ok {
		return "", ErrUnknownType
	}
	if !rule.IDSubfolder {
		return rule.Folder, nil
	}
	segment := idSegment(res.ID)
	if segment == "" {
		return "", ErrIDRequired
	}
	return path.Join(rule.Folder, segment), nil
}

// FileName returns the sanitized file name of res for the render kind. File
// resources keep their own extension.
func (r *Resolver) FileName(res *resources.Resource, kind resources.RenderKind) string {
	if res == nil {
		return untitledName
	}
	if res.Type == resources.TypeFile {
		stem, ext := SplitTitle(res.Title)
		return SanitizeBaseName(stem) + SanitizeExtension(ext)
	}
	return SanitizeBaseName(res.Title) + kind.OrDefault().Extension()
}

// ResourceFilePath returns the root-relative file path of res. CMS pages with
// a custom slug are written at their slug instead of the profile folder.
func (r *Resolver) ResourceFilePath(res *resources.Resource, kind resources.RenderKind) (string, error) {
	if local, ok := r.CMSFilePath(res, kind); ok {
		return local, nil
	}
	folder, err := r.ResourceFolder(res)
	if err != nil {
		return "", err
	}
	return path.Join(folder, r.FileName(res, kind)), nil
}

// CMSFilePath returns the slug addressed file of a CMS page: the custom slug,
// root relative, with the render kind's extension.
func (r *Resolver) CMSFilePath(res *resources.Resource, kind resources.RenderKind) (string, bool) {
	cms, ok := res.CMS()
	if !ok {
		return "", false
	}
	slug := cmsSlugPath(cms.CustomSlug)
	if slug == "" {
		return "", false
	}
	ext := kind.OrDefault().Extension()
	if ext == "" || strings.HasSuffix(slug, ext) {
		return slug, true
	}
	return slug + ext, true
}

// OutputFolder is the folder res is written into, the base of offline links
// leaving res.
func (r *Resolver) OutputFolder(res *resources.Resource) (string, error) {
	if local, ok := r.CMSFilePath(res, ""); ok {
		dir := path.Dir(local)
		if dir == "." {
			return "", nil
		}
		return dir, nil
	}
	return r.ResourceFolder(res)
}

// OwnsPath reports whether the layout alone makes the file path of res
// unique: ID-subfoldered types and slug addressed CMS pages. A file already
// at such a path is an earlier render of res itself.
func (r *Resolver) OwnsPath(res *resources.Resource) bool {
	if res == nil {
		return false
	}
	if _, ok := r.CMSFilePath(res, ""); ok {
		return true
	}
	return r.IsIDSubfoldered(res.Type)
}

// PredictRenderEntry returns the entry a future render of res will produce.
// Prediction is only possible for paths conflict resolution cannot displace.
func (r *Resolver) PredictRenderEntry(res *resources.Resource, kind resources.RenderKind) (resources.RenderEntry, bool) {
	if !r.OwnsPath(res) {
		return resources.RenderEntry{}, false
	}
	local, err := r.ResourceFilePath(res, kind)
	if err != nil {
		return resources.RenderEntry{}, false
	}
	return resources.RenderEntry{LocalPath: local, Slug: SlugForPath(local), Expected: true}, true
}

func cmsSlugPath(slug string) string {
	clean := path.Clean("/" + filepath.ToSlash(strings.TrimSpace(slug)))
	return strings.TrimPrefix(clean, "/")
}

// Abs converts a root-relative path to an absolute OS path. Paths escaping
// the root are rejected.
func (r *Resolver) Abs(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel), nil
	}
	clean := path.Clean("/" + filepath.ToSlash(rel))
	abs := filepath.Join(r.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if abs != r.root && !strings.HasPrefix(abs, r.root+string(filepath.Separator)) {
		return "", ErrPathOutsideRoot
	}
	return abs, nil
}

// ResolveConflict returns p when it is free, otherwise the first free
// "[LN n] name" sibling. Relative paths are resolved against the root; the
// result keeps the form of the input with forward slashes.
func (r *Resolver) ResolveConflict(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrPathRequired
	}
	slashed := filepath.ToSlash(p)
	taken, err := r.taken(slashed)
	if err != nil {
		return "", err
	}
	if !taken {
		return slashed, nil
	}

	dir, file := path.Split(slashed)
	for n := 1; n <= r.maxAttempts; n++ {
		candidate := dir + ConflictName(n, file)
		taken, err := r.taken(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			r.logger.Debug("paths.conflict.resolved", "path", slashed, "candidate", candidate, "attempt", n)
			return candidate, nil
		}
	}
	r.logger.Warn("paths.conflict.exhausted", "path", slashed, "attempts", r.maxAttempts)
	return "", &ExhaustedError{Path: slashed, Attempts: r.maxAttempts}
}

func (r *Resolver) taken(p string) (bool, error) {
	abs, err := r.Abs(p)
	if err != nil {
		return false, err
	}
	return r.exists(abs), nil
}

// StripConflictTag is the method form of the package level helper.
func (r *Resolver) StripConflictTag(p string) string {
	return StripConflictTag(p)
}

// ConflictName formats the n-th conflict candidate for file.
func ConflictName(n int, file string) string {
	return conflictMarker + strconv.Itoa(n) + "] " + file
}

// StripConflictTag removes a leading "[LN n] " tag from the file name of p.
// Paths without the tag are returned unchanged.
func StripConflictTag(p string) string {
	slashed := filepath.ToSlash(p)
	dir, file := path.Split(slashed)
	if !strings.HasPrefix(file, conflictMarker) {
		return slashed
	}
	rest := file[len(conflictMarker):]
	idx := strings.IndexByte(rest, ' ')
	if idx < 0 {
		return slashed
	}
	return dir + rest[idx+1:]
}

// SlugForPath converts a root-relative path to its slug form.
func SlugForPath(rel string) string {
	slashed := filepath.ToSlash(strings.TrimSpace(rel))
	slashed = strings.TrimPrefix(slashed, "./")
	return strings.TrimLeft(slashed, "/")
}

// Relative expresses target relative to the folder fromDir. Both arguments
// are root-relative forward-slash paths.
func Relative(fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(path.Clean("/"+fromDir)), filepath.FromSlash(path.Clean("/"+target)))
	if err != nil {
		return SlugForPath(target)
	}
	return filepath.ToSlash(rel)
}

func idSegment(id string) string {
	canonical := identity.Canonical(id)
	canonical = strings.NewReplacer("/", "_", "\\", "_").Replace(canonical)
	if canonical == "." || canonical == ".." {
		return ""
	}
	return canonical
}

func statExists(absPath string) bool {
	_, err := os.Lstat(absPath)
	if err == nil {
		return true
	}
	// anything other than a clean miss is treated as occupied
	return !os.IsNotExist(err)
}
