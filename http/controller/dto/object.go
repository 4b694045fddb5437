package dto

import (
	"encoding/json"
	"fmt"

	"github.com/tnqbao/gau-drs-provider/entity"
)

// SubmitRequestDTO is the multipart form alongside the uploaded file.
// aliases and checksums arrive as JSON-encoded strings, matching the DRS
// form encoding used by agents driving this provider.
type SubmitRequestDTO struct {
	SubmitterID       string `form:"submitter_id" binding:"required"`
	RequestedObjectID string `form:"requested_object_id"`
	Description       string `form:"description"`
	Version           string `form:"version"`
	Aliases           string `form:"aliases"`
	Checksums         string `form:"checksums"`
	DataType          string `form:"data_type"`
	FileType          string `form:"file_type"`
}

func (d *SubmitRequestDTO) ParseAliases() ([]string, error) {
	if d.Aliases == "" {
		return nil, nil
	}
	var aliases []string
	if err := json.Unmarshal([]byte(d.Aliases), &aliases); err != nil {
		return nil, fmt.Errorf("invalid aliases format: %w", err)
	}
	return aliases, nil
}

func (d *SubmitRequestDTO) ParseChecksums() ([]entity.Checksum, error) {
	if d.Checksums == "" {
		return nil, nil
	}
	var checksums []entity.Checksum
	if err := json.Unmarshal([]byte(d.Checksums), &checksums); err != nil {
		return nil, fmt.Errorf("invalid checksums format: %w", err)
	}
	return checksums, nil
}
