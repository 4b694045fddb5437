package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tnqbao/gau-drs-provider/entity"
	"github.com/tnqbao/gau-drs-provider/provider"
)

// ObjectRepository adapts Postgres/gorm to the document-store contract the
// ingestion core consumes. Engine specifics (CRDs, dialect, migration
// history) stay behind this type; the core never sees gorm.
type ObjectRepository struct {
	db *gorm.DB
}

func NewObjectRepository(db *gorm.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

func (r *ObjectRepository) Insert(ctx context.Context, record *entity.ObjectRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateFields applies a partial update; nil pointers leave columns alone.
func (r *ObjectRepository) UpdateFields(ctx context.Context, objectID string, update provider.RecordUpdate) error {
	fields := map[string]interface{}{}
	if update.Size != nil {
		fields["size"] = *update.Size
	}
	if update.UpdatedTime != nil {
		fields["updated_time"] = *update.UpdatedTime
	}
	if update.MimeType != nil {
		fields["mime_type"] = *update.MimeType
	}
	if update.Contents != nil {
		fields["contents"] = datatypes.JSONSlice[entity.ContentsEntry](*update.Contents)
	}
	if update.AccessMethods != nil {
		fields["access_methods"] = datatypes.JSONSlice[entity.AccessMethod](*update.AccessMethods)
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.Stderr != nil {
		fields["stderr"] = *update.Stderr
	}
	if len(fields) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Model(&entity.ObjectRecord{}).
		Where("object_id = ?", objectID).
		Updates(fields).Error
}

func (r *ObjectRepository) FindOne(ctx context.Context, objectID string) (*entity.ObjectRecord, error) {
	var record entity.ObjectRecord
	err := r.db.WithContext(ctx).Where("object_id = ?", objectID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *ObjectRepository) FindIDsBySubmitter(ctx context.Context, submitterID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.ObjectRecord{}).
		Where("submitter_id = ?", submitterID).
		Pluck("object_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ObjectRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&entity.ObjectRecord{}).
		Pluck("object_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ObjectRepository) Count(ctx context.Context, objectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ObjectRecord{}).
		Where("object_id = ?", objectID).
		Count(&count).Error
	return count, err
}

// DeleteOne reports the affected-row count so the deletion workflow can
// treat anything other than exactly one as a consistency alarm.
func (r *ObjectRepository) DeleteOne(ctx context.Context, objectID string) (provider.DeleteResult, error) {
	res := r.db.WithContext(ctx).Delete(&entity.ObjectRecord{}, "object_id = ?", objectID)
	if res.Error != nil {
		return provider.DeleteResult{}, res.Error
	}
	return provider.DeleteResult{
		Acknowledged: true,
		DeletedCount: res.RowsAffected,
	}, nil
}
