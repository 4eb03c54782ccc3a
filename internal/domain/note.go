package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Note is a single notes-app entry. ID is assigned by the document store on
// first persistence and stays empty for notes that only exist in the remote
// API payload.
type Note struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	NID   int    `json:"nid" yaml:"nid"`
	Title string `json:"title" yaml:"title"`
	Image string `json:"image" yaml:"image"`
}

// Identifier is the stable list key: the document id when persisted,
// the decimal nid otherwise.
func (n Note) Identifier() string {
	if n.ID != "" {
		return n.ID
	}
	return strconv.Itoa(n.NID)
}

func (n Note) HasID() bool {
	return n.ID != ""
}

var requiredNoteKeys = []string{"nid", "title", "image"}

// UnmarshalJSON rejects payloads that lack one of the required keys or carry
// null for them, reporting which one through a *DecodeError.
func (n *Note) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return &DecodeError{Kind: DecodeMissingValue, Field: "note"}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range requiredNoteKeys {
		value, ok := raw[key]
		if !ok {
			return &DecodeError{Kind: DecodeMissingKey, Field: key}
		}
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			return &DecodeError{Kind: DecodeMissingValue, Field: key}
		}
	}

	var note Note
	if err := json.Unmarshal(raw["nid"], &note.NID); err != nil {
		return err
	}
	if err := json.Unmarshal(raw["title"], &note.Title); err != nil {
		return err
	}
	if err := json.Unmarshal(raw["image"], &note.Image); err != nil {
		return err
	}
	if id, ok := raw["id"]; ok && !bytes.Equal(bytes.TrimSpace(id), []byte("null")) {
		if err := json.Unmarshal(id, &note.ID); err != nil {
			return err
		}
	}

	*n = note
	return nil
}

// MaxTitleLength is counted in characters, not bytes.
const MaxTitleLength = 500

// UpdateTitleRequest is the body of a title edit.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,max=500"`
}

// ImportReport summarizes a best-effort bulk import.
type ImportReport struct {
	Requested  int      `json:"requested" yaml:"requested"`
	Created    int      `json:"created" yaml:"created"`
	Failed     int      `json:"failed" yaml:"failed"`
	Skipped    int      `json:"skipped" yaml:"skipped"`
	CreatedIDs []string `json:"created_ids" yaml:"created_ids"`
	Errors     []string `json:"errors" yaml:"errors"`
}

func NewImportReport(requested int) *ImportReport {
	return &ImportReport{
		Requested:  requested,
		CreatedIDs: []string{},
		Errors:     []string{},
	}
}

func (r *ImportReport) Complete() bool {
	return r.Failed == 0
}
