package skin

import "fmt"

// Geometry identifiers understood by the game's skin loader.
const (
	GeometrySlim    = "geometry.humanoid.customSlim"
	GeometryClassic = "geometry.humanoid.custom"
)

// TypeFree is the only skin type offered.
const TypeFree = "free"

// DefaultLanguage is preselected for new packs.
const DefaultLanguage = "en_US"

// Languages is the fixed set of locale codes a pack can target.
var Languages = []string{
	"en_US", "de_DE", "fr_FR", "es_ES", "it_IT", "pt_BR", "ru_RU",
	"zh_CN", "zh_TW", "ja_JP", "ko_KR", "nl_NL", "pl_PL", "tr_TR",
	"sv_SE", "da_DK", "fi_FI", "nb_NO", "cs_CZ", "hu_HU", "ro_RO",
	"ar_SA", "he_IL", "vi_VN", "id_ID", "th_TH", "uk_UA",
}

// IsLanguage reports whether code is in Languages.
func IsLanguage(code string) bool {
	for _, l := range Languages {
		if l == code {
			return true
		}
	}
	return false
}

// IsGeometry reports whether tag names a supported humanoid geometry.
func IsGeometry(tag string) bool {
	return tag == GeometrySlim || tag == GeometryClassic
}

// IsSlim reports whether tag uses 3 px arms.
func IsSlim(tag string) bool {
	return tag != GeometryClassic
}

// ParseGeometry accepts a full tag or the short forms "slim" and "classic".
func ParseGeometry(s string) (string, error) {
	switch s {
	case "", "slim", GeometrySlim:
		return GeometrySlim, nil
	case "classic", "wide", GeometryClassic:
		return GeometryClassic, nil
	}
	return "", fmt.Errorf("%w: unknown geometry %q", ErrInvalidEntry, s)
}
