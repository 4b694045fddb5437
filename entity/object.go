package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Object lifecycle statuses. A record is created as StatusStarted and moves
// exactly once to StatusFinished or StatusFailed; both are terminal.
const (
	StatusStarted  = "started"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Checksum is a caller-supplied digest of the uploaded payload.
type Checksum struct {
	Checksum string `json:"checksum"`
	Type     string `json:"type"`
}

// ContentsEntry describes one member of an archive-type payload. FullPath is
// the path inside the archive and is what a later access method needs to
// re-open the member; Contents stays null (no nested expansion).
type ContentsEntry struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	DrsURI   string    `json:"drs_uri"`
	FullPath string    `json:"full_path"`
	Contents *struct{} `json:"contents"`
}

type AccessURL struct {
	URL     string `json:"url"`
	Headers string `json:"headers,omitempty"`
}

type AccessMethod struct {
	Type      string    `json:"type"`
	AccessURL AccessURL `json:"access_url"`
	AccessID  string    `json:"access_id,omitempty"`
	Region    string    `json:"region,omitempty"`
}

// ObjectRecord is the persisted metadata document for one ingested object,
// keyed by object_id. Size, MimeType, Contents and UpdatedTime stay null
// while Status == started and are fully set when Status == finished.
type ObjectRecord struct {
	ObjectID      string                             `json:"object_id" gorm:"type:varchar(255);primaryKey"`
	Name          string                             `json:"name" gorm:"type:varchar(512);not null"`
	Description   string                             `json:"description" gorm:"type:text"`
	SelfURI       string                             `json:"self_uri" gorm:"type:varchar(1024);not null"`
	Size          *int64                             `json:"size"`
	CreatedTime   time.Time                          `json:"created_time" gorm:"not null"`
	UpdatedTime   *time.Time                         `json:"updated_time"`
	Version       string                             `json:"version" gorm:"type:varchar(64)"`
	MimeType      *string                            `json:"mime_type" gorm:"type:varchar(255)"`
	Aliases       datatypes.JSONSlice[string]        `json:"aliases" gorm:"type:jsonb"`
	Checksums     datatypes.JSONSlice[Checksum]      `json:"checksums" gorm:"type:jsonb"`
	AccessMethods datatypes.JSONSlice[AccessMethod]  `json:"access_methods" gorm:"type:jsonb"`
	Contents      datatypes.JSONSlice[ContentsEntry] `json:"contents" gorm:"type:jsonb"`
	DataType      string                             `json:"data_type" gorm:"type:varchar(128)"`
	FileType      string                             `json:"file_type" gorm:"type:varchar(128)"`
	SubmitterID   string                             `json:"submitter_id" gorm:"type:varchar(255);not null;index"`
	Status        string                             `json:"status" gorm:"type:varchar(16);not null"`
	Stderr        *string                            `json:"stderr" gorm:"type:text"`
}

func (ObjectRecord) TableName() string {
	return "uploads"
}

// DrsObject is the GA4GH DRS shape of a record, with provider-internal
// fields (submitter, semantic tags, diagnostics) stripped.
type DrsObject struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SelfURI       string          `json:"self_uri"`
	Size          *int64          `json:"size"`
	CreatedTime   time.Time       `json:"created_time"`
	UpdatedTime   *time.Time      `json:"updated_time"`
	Version       string          `json:"version"`
	MimeType      *string         `json:"mime_type"`
	Checksums     []Checksum      `json:"checksums"`
	AccessMethods []AccessMethod  `json:"access_methods"`
	Contents      []ContentsEntry `json:"contents"`
	Description   string          `json:"description"`
	Aliases       []string        `json:"aliases"`
}

func (r *ObjectRecord) DRSView() *DrsObject {
	return &DrsObject{
		ID:            r.ObjectID,
		Name:          r.Name,
		SelfURI:       r.SelfURI,
		Size:          r.Size,
		CreatedTime:   r.CreatedTime,
		UpdatedTime:   r.UpdatedTime,
		Version:       r.Version,
		MimeType:      r.MimeType,
		Checksums:     r.Checksums,
		AccessMethods: r.AccessMethods,
		Contents:      r.Contents,
		Description:   r.Description,
		Aliases:       r.Aliases,
	}
}
