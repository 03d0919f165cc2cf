package pack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fixed version tuples written into every manifest.
var (
	PackVersion      = [3]int{1, 0, 0}
	MinEngineVersion = [3]int{1, 20, 0}
)

const (
	formatVersion  = 2
	moduleSkinPack = "skin_pack"

	// Suffix is both the archive root folder's and the download's extension.
	Suffix = ".mcpack"
)

type manifest struct {
	FormatVersion int            `json:"format_version"`
	Header        manifestHeader `json:"header"`
	Modules       []module       `json:"modules"`
}

type manifestHeader struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	UUID             string `json:"uuid"`
	Version          [3]int `json:"version"`
	MinEngineVersion [3]int `json:"min_engine_version"`
}

type module struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	Version [3]int `json:"version"`
}

type skinIndex struct {
	Skins            []skinRecord `json:"skins"`
	SerializeName    string       `json:"serialize_name"`
	LocalizationName string       `json:"localization_name"`
}

type skinRecord struct {
	LocalizationName string `json:"localization_name"`
	Geometry         string `json:"geometry"`
	Texture          string `json:"texture"`
	Type             string `json:"type"`
}

// resolved is one entry ready to pack.
type resolved struct {
	Name     string
	SafeName string
	Geometry string
	Type     string
	Texture  string
	Data     []byte
}

func buildManifest(d Descriptor, packID, moduleID string) ([]byte, error) {
	m := manifest{
		FormatVersion: formatVersion,
		Header: manifestHeader{
			Name:             d.DisplayName,
			Description:      d.Description,
			UUID:             packID,
			Version:          PackVersion,
			MinEngineVersion: MinEngineVersion,
		},
		Modules: []module{{Type: moduleSkinPack, UUID: moduleID, Version: PackVersion}},
	}
	return marshal("manifest.json", m)
}

func buildSkinIndex(d Descriptor, safePack string, entries []resolved) ([]byte, error) {
	idx := skinIndex{
		Skins:            make([]skinRecord, len(entries)),
		SerializeName:    safePack,
		LocalizationName: d.DisplayName,
	}
	for i, e := range entries {
		idx.Skins[i] = skinRecord{
			LocalizationName: skinKey(safePack, e.SafeName),
			Geometry:         e.Geometry,
			Texture:          e.Texture,
			Type:             e.Type,
		}
	}
	return marshal("skins.json", idx)
}

// buildLang writes the pack title line and one line per skin, joined by
// newlines with no trailing newline.
func buildLang(d Descriptor, safePack string, entries []resolved) []byte {
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, fmt.Sprintf("%s.pack.title=%s", safePack, langValue(d.DisplayName)))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s=%s", skinKey(safePack, e.SafeName), langValue(e.Name)))
	}
	return []byte(strings.Join(lines, "\n"))
}

func skinKey(safePack, safeName string) string {
	return safePack + ".skin." + safeName
}

// langValue keeps each value on one line.
func langValue(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

func marshal(name string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("pack: encode %s: %w", name, err)
	}
	return data, nil
}
