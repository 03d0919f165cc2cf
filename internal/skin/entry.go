// Package skin holds the in-memory model of a skin pack under edit.
package skin

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Entry is one skin slot.
type Entry struct {
	ID       string
	Name     string
	SafeName string

	// Upload holds previously accepted upload bytes and wins over Placeholder.
	Upload      []byte
	UploadName  string
	Placeholder []byte

	Type     string
	Geometry string
}

// NewEntry creates an entry with a fresh id. An empty name gets a
// generated "Skin-xxxx" default.
func NewEntry(name string) Entry {
	if name == "" {
		name = DefaultSkinName()
	}
	return Entry{
		ID:       uuid.NewString(),
		Name:     name,
		SafeName: SafeName(name),
		Type:     TypeFree,
		Geometry: GeometrySlim,
	}
}

// Source returns the authoritative texture bytes, or nil when none are held.
func (e Entry) Source() []byte {
	if len(e.Upload) > 0 {
		return e.Upload
	}
	return e.Placeholder
}

// HasUpload reports whether the user supplied this entry's texture.
func (e Entry) HasUpload() bool {
	return len(e.Upload) > 0
}

// Clone returns a copy that shares no byte slices with e.
func (e Entry) Clone() Entry {
	c := e
	c.Upload = cloneBytes(e.Upload)
	c.Placeholder = cloneBytes(e.Placeholder)
	return c
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// DefaultSkinName returns "Skin-" plus four random hex digits.
func DefaultSkinName() string {
	return "Skin-" + RandHex(2)
}

// DefaultPackName returns "Pack " plus four random hex digits.
func DefaultPackName() string {
	return "Pack " + RandHex(2)
}

// DefaultDescription returns the generated pack description.
func DefaultDescription() string {
	return fmt.Sprintf("Automatically generated skin pack %s", RandHex(3)[:5])
}

// RandHex returns 2n lowercase hex digits.
func RandHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
