package resources

import "strings"

// Type identifies the kind of addressable resource.
type Type string

const (
	TypeFile      Type = "file"
	TypePage      Type = "page"
	TypeDatabase  Type = "database"
	TypeWorkspace Type = "workspace"
)

// Types lists every resource type in declaration order.
func Types() []Type {
	return []Type{TypeFile, TypePage, TypeDatabase, TypeWorkspace}
}

// Valid reports whether t is one of the known resource types.
func (t Type) Valid() bool {
	switch t {
	case TypeFile, TypePage, TypeDatabase, TypeWorkspace:
		return true
	default:
		return false
	}
}

// ParseType normalizes user supplied type names.
func ParseType(value string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(value)))
	return t, t.Valid()
}

// RenderKind names an output format produced for a resource.
type RenderKind string

const (
	RenderHTML     RenderKind = "html"
	RenderText     RenderKind = "text"
	RenderMarkdown RenderKind = "markdown"
	RenderFile     RenderKind = "file"
)

// DefaultRenderKind is used whenever callers do not request a specific kind.
const DefaultRenderKind = RenderHTML

// OrDefault returns the kind, or DefaultRenderKind when empty.
func (k RenderKind) OrDefault() RenderKind {
	if strings.TrimSpace(string(k)) == "" {
		return DefaultRenderKind
	}
	return k
}

// Extension returns the canonical file extension for the kind. File copies
// keep the source extension, so RenderFile reports an empty string.
func (k RenderKind) Extension() string {
	switch k.OrDefault() {
	case RenderHTML:
		return ".html"
	case RenderText:
		return ".txt"
	case RenderMarkdown:
		return ".md"
	default:
		return ""
	}
}

// Mode selects how cross references are expressed.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeOffline || m == ModeOnline
}

// RenderEntry records where a resource/render kind pair lives.
type RenderEntry struct {
	// LocalPath is relative to the repository root and always uses forward slashes.
	LocalPath string `json:"local_path"`
	Slug      string `json:"slug"`
	// Expected marks entries predicted before the render happened.
	Expected bool `json:"expected,omitempty"`
}

// ThumbnailKind distinguishes page icon flavours.
type ThumbnailKind string

const (
	ThumbnailEmoji ThumbnailKind = "emoji"
	ThumbnailImage ThumbnailKind = "image"
)

// Thumbnail is the icon attached to a page.
type Thumbnail struct {
	Kind  ThumbnailKind `json:"kind"`
	Value string        `json:"value"`
}

// MaxCategoryDepth is the number of category labels a CMS page can carry.
const MaxCategoryDepth = 6

// CMSProperties carries content-management metadata for a page.
type CMSProperties struct {
	CustomSlug string `json:"custom_slug"`
	Root       string `json:"root,omitempty"`
	Category1  string `json:"category1,omitempty"`
	Category2  string `json:"category2,omitempty"`
	Category3  string `json:"category3,omitempty"`
	Category4  string `json:"category4,omitempty"`
	Category5  string `json:"category5,omitempty"`
}

// Category returns the label at index (0 is Root). The boolean is false for
// indexes outside the supported range.
func (c CMSProperties) Category(index int) (string, bool) {
	switch index {
	case 0:
		return c.Root, true
	case 1:
		return c.Category1, true
	case 2:
		return c.Category2, true
	case 3:
		return c.Category3, true
	case 4:
		return c.Category4, true
	case 5:
		return c.Category5, true
	default:
		return "", false
	}
}

// Categories returns the ordered labels, root first.
func (c CMSProperties) Categories() []string {
	return []string{c.Root, c.Category1, c.Category2, c.Category3, c.Category4, c.Category5}
}

// PageProperties is the payload carried only by page resources.
type PageProperties struct {
	Thumbnail *Thumbnail     `json:"thumbnail,omitempty"`
	CMS       *CMSProperties `json:"cms,omitempty"`
}

// Resource is an addressable unit of published content. Type acts as the tag
// of the variant: Page is only meaningful when Type is TypePage.
type Resource struct {
	ID    string          `json:"id"`
	Type  Type            `json:"type"`
	Title string          `json:"title"`
	Page  *PageProperties `json:"page,omitempty"`
}

// IsPage reports whether the resource is a page.
func (r *Resource) IsPage() bool {
	return r != nil && r.Type == TypePage
}

// CMS returns the CMS properties of a page, when present.
func (r *Resource) CMS() (*CMSProperties, bool) {
	if !r.IsPage() || r.Page == nil || r.Page.CMS == nil {
		return nil, false
	}
	return r.Page.CMS, true
}

// IsCMSPage reports whether the resource is a page classified by the CMS.
func (r *Resource) IsCMSPage() bool {
	_, ok := r.CMS()
	return ok
}

// Thumbnail returns the page icon, when present.
func (r *Resource) Thumbnail() (*Thumbnail, bool) {
	if !r.IsPage() || r.Page == nil || r.Page.Thumbnail == nil {
		return nil, false
	}
	return r.Page.Thumbnail, true
}

// Clone returns a deep copy of the resource.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	out := *r
	if r.Page != nil {
		page := *r.Page
		if r.Page.Thumbnail != nil {
			thumb := *r.Page.Thumbnail
			page.Thumbnail = &thumb
		}
		if r.Page.CMS != nil {
			cms := *r.Page.CMS
			page.CMS = &cms
		}
		out.Page = &page
	}
	return &out
}
