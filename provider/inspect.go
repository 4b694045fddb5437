package provider

import (
	"archive/zip"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tnqbao/gau-drs-provider/entity"
)

// acceptedMimeTypes is the whitelist of payload types this provider serves:
// zip archives, CSV, plain text, JSON and spreadsheets.
var acceptedMimeTypes = []string{
	"application/zip",
	"text/csv",
	"text/plain",
	"application/json",
	"application/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

const mimeTypeZip = "application/zip"

// dataTypeRules maps a declared data_type to the exact set of member
// basenames its archive must contain. class_dataset_expression is the gene
// expression dataset: a gene-by-sample matrix plus a phenotype matrix.
var dataTypeRules = map[string][]string{
	"class_dataset_expression": {"geneBySampleMatrix.csv", "phenoDataMatrix.csv"},
}

// Inspector sniffs stored payloads and expands archives into a contents
// listing. It never reads member bytes; extraction belongs to a future
// byte-range access method.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// DetectMimeType sniffs the payload on disk and rejects anything outside
// the accepted set with ErrUnsupportedMediaType.
func (i *Inspector) DetectMimeType(payloadPath string) (string, error) {
	mtype, err := mimetype.DetectFile(payloadPath)
	if err != nil {
		return "", storageErrorf("sniffing %s: %v", payloadPath, err)
	}

	for _, accepted := range acceptedMimeTypes {
		if mtype.Is(accepted) {
			return accepted, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mtype.String())
}

// IsArchive reports whether a detected MIME type gets a contents listing.
func (i *Inspector) IsArchive(mimeType string) bool {
	return mimeType == mimeTypeZip
}

// Enumerate lists the members of a zip payload as contents entries. The
// member's full path inside the archive is preserved; a later access method
// needs it to re-open the member. Directory entries are skipped.
func (i *Inspector) Enumerate(payloadPath, selfURI string) ([]entity.ContentsEntry, error) {
	reader, err := zip.OpenReader(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrArchiveRead, payloadPath, err)
	}
	defer reader.Close()

	var entries []entity.ContentsEntry
	for _, member := range reader.File {
		if strings.HasSuffix(member.Name, "/") {
			continue
		}
		name := path.Base(member.Name)
		entries = append(entries, entity.ContentsEntry{
			ID:       name,
			Name:     name,
			DrsURI:   selfURI + "/" + name,
			FullPath: member.Name,
		})
	}
	return entries, nil
}

// ValidateContents checks archive members against the rule registered for
// the declared data type. Unknown data types carry no rule and pass.
func (i *Inspector) ValidateContents(dataType string, entries []entity.ContentsEntry) error {
	expected, ok := dataTypeRules[dataType]
	if !ok {
		return nil
	}

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Name)
	}
	sort.Strings(got)

	want := append([]string(nil), expected...)
	sort.Strings(want)

	if len(got) != len(want) {
		return fmt.Errorf("%w: data_type %s expects members %v, archive has %v", ErrInvalidContents, dataType, want, got)
	}
	for idx := range want {
		if got[idx] != want[idx] {
			return fmt.Errorf("%w: data_type %s expects members %v, archive has %v", ErrInvalidContents, dataType, want, got)
		}
	}
	return nil
}
