package resources

import (
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-publish/internal/identity"
	pubresources "github.com/goliatone/go-publish/resources"
)

type (
	Resource       = pubresources.Resource
	RenderEntry    = pubresources.RenderEntry
	RenderKind     = pubresources.RenderKind
	PageProperties = pubresources.PageProperties
	CMSProperties  = pubresources.CMSProperties
	Thumbnail      = pubresources.Thumbnail
	NotFoundError  = pubresources.NotFoundError
)

// ResourceRecord is the persisted form of a resource. ParentID holds the
// external id of the enclosing resource.
type ResourceRecord struct {
	bun.BaseModel `bun:"table:publish_resources,alias:pr"`

	ID             uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ExternalID     string    `bun:"external_id,notnull,unique" json:"external_id"`
	ParentID       string    `bun:"parent_id" json:"parent_id,omitempty"`
	Type           string    `bun:"type,notnull" json:"type"`
	Title          string    `bun:"title" json:"title"`
	IsPage         bool      `bun:"is_page,notnull,default:false" json:"is_page"`
	ThumbnailKind  string    `bun:"thumbnail_kind" json:"thumbnail_kind,omitempty"`
	ThumbnailValue string    `bun:"thumbnail_value" json:"thumbnail_value,omitempty"`
	IsCMS          bool      `bun:"is_cms,notnull,default:false" json:"is_cms"`
	CustomSlug     string    `bun:"custom_slug" json:"custom_slug,omitempty"`
	CMSRoot        string    `bun:"cms_root" json:"cms_root,omitempty"`
	Category1      string    `bun:"category1" json:"category1,omitempty"`
	Category2      string    `bun:"category2" json:"category2,omitempty"`
	Category3      string    `bun:"category3" json:"category3,omitempty"`
	Category4      string    `bun:"category4" json:"category4,omitempty"`
	Category5      string    `bun:"category5" json:"category5,omitempty"`
}

// RenderEntryRecord stores where a resource/render kind pair was written.
type RenderEntryRecord struct {
	bun.BaseModel `bun:"table:publish_render_entries,alias:pre"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ResourceID string    `bun:"resource_id,notnull" json:"resource_id"`
	Kind       string    `bun:"kind,notnull" json:"kind"`
	LocalPath  string    `bun:"local_path,notnull" json:"local_path"`
	Slug       string    `bun:"slug" json:"slug"`
	Expected   bool      `bun:"expected,notnull,default:false" json:"expected"`
}

// ContentObjectRecord maps a block, row or property to its enclosing resource.
type ContentObjectRecord struct {
	bun.BaseModel `bun:"table:publish_content_objects,alias:pco"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	ObjectID   string    `bun:"object_id,notnull,unique" json:"object_id"`
	ResourceID string    `bun:"resource_id,notnull" json:"resource_id"`
}

// Models lists the tables managed by the bun repository.
func Models() []any {
	return []any{
		(*ResourceRecord)(nil),
		(*RenderEntryRecord)(nil),
		(*ContentObjectRecord)(nil),
	}
}

func toRecord(res *Resource, parentID string) *ResourceRecord {
	id := identity.Canonical(res.ID)
	record := &ResourceRecord{
		ID:         identity.ResourceUUID(id),
		ExternalID: id,
		ParentID:   identity.Canonical(parentID),
		Type:       string(res.Type),
		Title:      res.Title,
		IsPage:     res.Page != nil,
	}
	if thumb, ok := res.Thumbnail(); ok {
		record.ThumbnailKind = string(thumb.Kind)
		record.ThumbnailValue = thumb.Value
	}
	if cms, ok := res.CMS(); ok {
		record.IsCMS = true
		record.CustomSlug = normalizeSlug(cms.CustomSlug)
		record.CMSRoot = cms.Root
		record.Category1 = cms.Category1
		record.Category2 = cms.Category2
		record.Category3 = cms.Category3
		record.Category4 = cms.Category4
		record.Category5 = cms.Category5
	}
	return record
}

func fromRecord(record *ResourceRecord) *Resource {
	if record == nil {
		return nil
	}
	res := &Resource{
		ID:    record.ExternalID,
		Type:  pubresources.Type(record.Type),
		Title: record.Title,
	}
	if !record.IsPage {
		return res
	}
	res.Page = &PageProperties{}
	if record.ThumbnailKind != "" {
		res.Page.Thumbnail = &Thumbnail{
			Kind:  pubresources.ThumbnailKind(record.ThumbnailKind),
			Value: record.ThumbnailValue,
		}
	}
	if record.IsCMS {
		res.Page.CMS = &CMSProperties{
			CustomSlug: record.CustomSlug,
			Root:       record.CMSRoot,
			Category1:  record.Category1,
			Category2:  record.Category2,
			Category3:  record.Category3,
			Category4:  record.Category4,
			Category5:  record.Category5,
		}
	}
	return res
}

func validateResource(res *Resource) error {
	if res == nil || identity.Canonical(res.ID) == "" || !res.Type.Valid() {
		return pubresources.ErrInvalidResource
	}
	return nil
}

func normalizeKind(kind RenderKind) string {
	return strings.ToLower(strings.TrimSpace(string(kind.OrDefault())))
}
