package resources

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewResourceRecordRepository creates a repository for resource rows keyed by
// their external id.
func NewResourceRecordRepository(db *bun.DB) repository.Repository[*ResourceRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ResourceRecord]{
		NewRecord:          func() *ResourceRecord { return &ResourceRecord{} },
		GetID:              func(record *ResourceRecord) uuid.UUID { return record.ID },
		SetID:              func(record *ResourceRecord, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "external_id" },
		GetIdentifierValue: func(record *ResourceRecord) string { return record.ExternalID },
	})
}

// NewRenderEntryRecordRepository creates a repository for render records.
func NewRenderEntryRecordRepository(db *bun.DB) repository.Repository[*RenderEntryRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*RenderEntryRecord]{
		NewRecord:          func() *RenderEntryRecord { return &RenderEntryRecord{} },
		GetID:              func(record *RenderEntryRecord) uuid.UUID { return record.ID },
		SetID:              func(record *RenderEntryRecord, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "local_path" },
		GetIdentifierValue: func(record *RenderEntryRecord) string { return record.LocalPath },
	})
}

// NewContentObjectRecordRepository creates a repository for content object links.
func NewContentObjectRecordRepository(db *bun.DB) repository.Repository[*ContentObjectRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ContentObjectRecord]{
		NewRecord:          func() *ContentObjectRecord { return &ContentObjectRecord{} },
		GetID:              func(record *ContentObjectRecord) uuid.UUID { return record.ID },
		SetID:              func(record *ContentObjectRecord, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "object_id" },
		GetIdentifierValue: func(record *ContentObjectRecord) string { return record.ObjectID },
	})
}

// CreateTables creates the publish tables when they do not exist yet.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
