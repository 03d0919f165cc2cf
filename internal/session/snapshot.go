// Package session saves and restores the editor state (pack fields and
// skin slots) for a bounded time.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/skin"
)

const snapshotVersion = 1

var (
	ErrNotFound = errors.New("session: snapshot not found")
	ErrVersion  = errors.New("session: unsupported snapshot version")
)

// Snapshot is the serialized editor state. Byte slices encode as base64.
type Snapshot struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"saved_at"`
	Pack    PackFields      `json:"pack"`
	Entries []EntrySnapshot `json:"entries"`
}

type PackFields struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

type EntrySnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Upload      []byte `json:"upload,omitempty"`
	UploadName  string `json:"upload_name,omitempty"`
	Placeholder []byte `json:"placeholder,omitempty"`
	Type        string `json:"type"`
	Geometry    string `json:"geometry"`
}

// Capture copies the form fields and entries into a snapshot.
func Capture(d pack.Descriptor, entries []skin.Entry) Snapshot {
	s := Snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Pack:    PackFields{Name: d.DisplayName, Description: d.Description, Language: d.Language},
		Entries: make([]EntrySnapshot, len(entries)),
	}
	for i, e := range entries {
		e = e.Clone()
		s.Entries[i] = EntrySnapshot{
			ID:          e.ID,
			Name:        e.Name,
			Upload:      e.Upload,
			UploadName:  e.UploadName,
			Placeholder: e.Placeholder,
			Type:        e.Type,
			Geometry:    e.Geometry,
		}
	}
	return s
}

// Restore returns the form fields and entries held in the snapshot.
// Safe names are recomputed rather than trusted.
func (s Snapshot) Restore() (pack.Descriptor, []skin.Entry) {
	d := pack.Descriptor{DisplayName: s.Pack.Name, Description: s.Pack.Description, Language: s.Pack.Language}
	entries := make([]skin.Entry, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = skin.Entry{
			ID:          e.ID,
			Name:        e.Name,
			SafeName:    skin.SafeName(e.Name),
			Upload:      e.Upload,
			UploadName:  e.UploadName,
			Placeholder: e.Placeholder,
			Type:        e.Type,
			Geometry:    e.Geometry,
		}
	}
	return d, entries
}

func (s Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("session: decode: %w", err)
	}
	if s.Version != snapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrVersion, s.Version)
	}
	return s, nil
}

// NewKey returns a random snapshot key.
func NewKey() string {
	return uuid.NewString()
}
