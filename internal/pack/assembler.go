// Package pack assembles skin packs: it resolves and re-checks each skin's
// texture, writes the manifest, skin index and language file, and bundles
// everything into one .mcpack archive.
package pack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

var (
	ErrArchiverUnavailable = errors.New("pack: archive writer unavailable")
	ErrNoEntries           = errors.New("pack: at least one skin is required")
	ErrLanguage            = errors.New("pack: unsupported language")
)

// EntryError names the skin that stopped a build.
type EntryError struct {
	Index int // 1-based display position
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("pack: skin %d (%q): %v", e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Descriptor holds the pack-level form fields.
type Descriptor struct {
	DisplayName string
	Description string
	Language    string
}

// Input is one skin in display order. Fresh, when set, is a file chosen
// just now that has not been stored on the entry yet.
type Input struct {
	Entry skin.Entry
	Fresh *texture.Candidate
}

// Archive is a finished pack.
type Archive struct {
	FileName string // download name, <safePack>.mcpack
	Root     string // top-level folder inside the ZIP
	Data     []byte
	PackID   string
	ModuleID string
	Language string
	Textures []string // skin-1.PNG… in display order
}

// Placeholders synthesizes a texture for an entry that holds none.
type Placeholders interface {
	Generate(w, h int) (texture.Placeholder, error)
}

type Option func(*Assembler)

func WithPlaceholders(p Placeholders) Option {
	return func(a *Assembler) { a.placeholders = p }
}

func WithLogger(l logging.Logger) Option {
	return func(a *Assembler) { a.log = l }
}

// Assembler builds archives through an injected Archiver.
type Assembler struct {
	archiver     Archiver
	placeholders Placeholders
	log          logging.Logger
}

func NewAssembler(archiver Archiver, opts ...Option) *Assembler {
	a := &Assembler{archiver: archiver}
	for _, o := range opts {
		o(a)
	}
	if a.placeholders == nil {
		a.placeholders = texture.NewPlaceholderGenerator(nil)
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	return a
}

// Build produces the archive or an error; it never returns a partial
// archive. Entries are packed in the given order. The context is checked
// between entries and before compression.
func (a *Assembler) Build(ctx context.Context, d Descriptor, inputs []Input) (*Archive, error) {
	if a == nil || a.archiver == nil {
		return nil, ErrArchiverUnavailable
	}
	if len(inputs) == 0 {
		return nil, ErrNoEntries
	}

	d, err := normalizeDescriptor(d)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	entries := make([]resolved, len(inputs))
	used := make(map[string]int, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := a.resolveBytes(ctx, in)
		if err != nil {
			return nil, &EntryError{Index: i + 1, Name: in.Entry.Name, Err: err}
		}

		geometry := in.Entry.Geometry
		if !skin.IsGeometry(geometry) {
			geometry = skin.GeometrySlim
		}
		typ := in.Entry.Type
		if typ == "" {
			typ = skin.TypeFree
		}
		entries[i] = resolved{
			Name:     in.Entry.Name,
			SafeName: uniqueName(used, skin.SafeName(in.Entry.Name)),
			Geometry: geometry,
			Type:     typ,
			Texture:  "skin-" + strconv.Itoa(i+1) + ".PNG",
			Data:     data,
		}
	}

	safePack := skin.SafeName(d.DisplayName)
	root := safePack + Suffix
	packID := uuid.NewString()
	moduleID := uuid.NewString()

	manifestJSON, err := buildManifest(d, packID, moduleID)
	if err != nil {
		return nil, err
	}
	skinsJSON, err := buildSkinIndex(d, safePack, entries)
	if err != nil {
		return nil, err
	}

	files := []File{
		{Name: root + "/"},
		{Name: root + "/manifest.json", Data: manifestJSON},
		{Name: root + "/skins.json", Data: skinsJSON},
	}
	textures := make([]string, len(entries))
	for i, e := range entries {
		files = append(files, File{Name: root + "/" + e.Texture, Data: e.Data})
		textures[i] = e.Texture
	}
	files = append(files,
		File{Name: root + "/texts/"},
		File{Name: root + "/texts/" + d.Language + ".lang", Data: buildLang(d, safePack, entries)},
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := a.archiver.Archive(&buf, files); err != nil {
		a.log.Error(ctx, "archive failed", "pack", safePack, "err", err)
		return nil, fmt.Errorf("pack: archive: %w", err)
	}

	a.log.Info(ctx, "pack built",
		"file", root,
		"skins", len(entries),
		"bytes", buf.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return &Archive{
		FileName: root,
		Root:     root,
		Data:     buf.Bytes(),
		PackID:   packID,
		ModuleID: moduleID,
		Language: d.Language,
		Textures: textures,
	}, nil
}

// resolveBytes picks the entry's texture in order: fresh upload, stored
// upload, stored placeholder, new placeholder. Whatever wins is validated
// again before it goes into the archive.
func (a *Assembler) resolveBytes(ctx context.Context, in Input) ([]byte, error) {
	switch {
	case in.Fresh != nil:
		if _, err := texture.Validate(ctx, *in.Fresh); err != nil {
			return nil, err
		}
		return in.Fresh.Data, nil
	case len(in.Entry.Upload) > 0:
		return revalidate(ctx, in.Entry.Upload)
	case len(in.Entry.Placeholder) > 0:
		return revalidate(ctx, in.Entry.Placeholder)
	}

	p, err := a.placeholders.Generate(64, 64)
	if err != nil {
		return nil, err
	}
	return revalidate(ctx, p.PNG)
}

func revalidate(ctx context.Context, data []byte) ([]byte, error) {
	if _, err := texture.ValidateBytes(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func normalizeDescriptor(d Descriptor) (Descriptor, error) {
	if d.DisplayName == "" {
		d.DisplayName = "Pack-" + skin.RandHex(2)
	}
	if d.Description == "" {
		d.Description = skin.DefaultDescription()
	}
	if d.Language == "" {
		d.Language = skin.DefaultLanguage
	}
	if !skin.IsLanguage(d.Language) {
		return d, fmt.Errorf("%w: %s", ErrLanguage, d.Language)
	}
	return d, nil
}

// uniqueName suffixes repeated safe names with -2, -3, … and trims the
// base so the result stays within skin.MaxSafeNameLen.
func uniqueName(used map[string]int, name string) string {
	used[name]++
	n := used[name]
	if n == 1 {
		return name
	}
	for {
		suffix := "-" + strconv.Itoa(n)
		base := name
		if len(base)+len(suffix) > skin.MaxSafeNameLen {
			base = base[:skin.MaxSafeNameLen-len(suffix)]
		}
		candidate := base + suffix
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}
