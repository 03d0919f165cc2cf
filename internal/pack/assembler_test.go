package pack

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func entryWithUpload(t *testing.T, name string, data []byte) skin.Entry {
	t.Helper()
	e := skin.NewEntry(name)
	e.Upload = data
	e.UploadName = strings.ToLower(name) + ".png"
	return e
}

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = b
	}
	return out
}

func newAssembler() *Assembler {
	return NewAssembler(NewZipArchiver(DefaultLevel))
}

func TestBuild_MyPackScenario(t *testing.T) {
	alex := solidPNG(t, 64, 64, color.NRGBA{200, 100, 50, 255})
	steve := solidPNG(t, 64, 64, color.NRGBA{50, 100, 200, 255})
	inputs := []Input{
		{Entry: entryWithUpload(t, "Alex", alex)},
		{Entry: entryWithUpload(t, "Steve", steve)},
	}

	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "My Pack"}, inputs)
	require.NoError(t, err)
	assert.Equal(t, "my-pack.mcpack", arc.FileName)
	assert.Equal(t, "my-pack.mcpack", arc.Root)
	assert.Equal(t, []string{"skin-1.PNG", "skin-2.PNG"}, arc.Textures)

	files := readZip(t, arc.Data)
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"my-pack.mcpack/",
		"my-pack.mcpack/manifest.json",
		"my-pack.mcpack/skin-1.PNG",
		"my-pack.mcpack/skin-2.PNG",
		"my-pack.mcpack/skins.json",
		"my-pack.mcpack/texts/",
		"my-pack.mcpack/texts/en_US.lang",
	}, names)

	assert.Equal(t, alex, files["my-pack.mcpack/skin-1.PNG"])
	assert.Equal(t, steve, files["my-pack.mcpack/skin-2.PNG"])

	var m manifest
	require.NoError(t, json.Unmarshal(files["my-pack.mcpack/manifest.json"], &m))
	assert.Equal(t, 2, m.FormatVersion)
	assert.Equal(t, "My Pack", m.Header.Name)
	assert.Equal(t, [3]int{1, 0, 0}, m.Header.Version)
	assert.Equal(t, [3]int{1, 20, 0}, m.Header.MinEngineVersion)
	_, err = uuid.Parse(m.Header.UUID)
	assert.NoError(t, err)
	assert.Equal(t, arc.PackID, m.Header.UUID)
	require.Len(t, m.Modules, 1)
	assert.Equal(t, "skin_pack", m.Modules[0].Type)
	assert.Equal(t, arc.ModuleID, m.Modules[0].UUID)
	assert.NotEqual(t, m.Header.UUID, m.Modules[0].UUID)

	var idx skinIndex
	require.NoError(t, json.Unmarshal(files["my-pack.mcpack/skins.json"], &idx))
	assert.Equal(t, "my-pack", idx.SerializeName)
	assert.Equal(t, "My Pack", idx.LocalizationName)
	require.Len(t, idx.Skins, 2)
	assert.Equal(t, skinRecord{"my-pack.skin.alex", skin.GeometrySlim, "skin-1.PNG", "free"}, idx.Skins[0])
	assert.Equal(t, skinRecord{"my-pack.skin.steve", skin.GeometrySlim, "skin-2.PNG", "free"}, idx.Skins[1])

	assert.Equal(t,
		"my-pack.pack.title=My Pack\nmy-pack.skin.alex=Alex\nmy-pack.skin.steve=Steve",
		string(files["my-pack.mcpack/texts/en_US.lang"]))
}

func TestBuild_NEntries(t *testing.T) {
	const n = 5
	var inputs []Input
	for i := 0; i < n; i++ {
		inputs = append(inputs, Input{Entry: skin.NewEntry("")})
	}

	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "Five", Language: "de_DE"}, inputs)
	require.NoError(t, err)
	files := readZip(t, arc.Data)

	var idx skinIndex
	require.NoError(t, json.Unmarshal(files["five.mcpack/skins.json"], &idx))
	require.Len(t, idx.Skins, n)
	for i, s := range idx.Skins {
		want := "skin-" + string(rune('1'+i)) + ".PNG"
		assert.Equal(t, want, s.Texture)
		_, ok := files["five.mcpack/"+want]
		assert.True(t, ok, want)
	}

	lang := string(files["five.mcpack/texts/de_DE.lang"])
	lines := strings.Split(lang, "\n")
	require.Len(t, lines, n+1)
	assert.Equal(t, "five.pack.title=Five", lines[0])
	re := regexp.MustCompile(`^five\.skin\.[a-z0-9_.\-]+=.+$`)
	for _, l := range lines[1:] {
		assert.Regexp(t, re, l)
	}
}

func TestBuild_ZeroEntries(t *testing.T) {
	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "x"}, nil)
	assert.ErrorIs(t, err, ErrNoEntries)
	assert.Nil(t, arc)
}

func TestBuild_ArchiverUnavailable(t *testing.T) {
	inputs := []Input{{Entry: skin.NewEntry("a")}}

	_, err := NewAssembler(nil).Build(context.Background(), Descriptor{}, inputs)
	assert.ErrorIs(t, err, ErrArchiverUnavailable)

	var a *Assembler
	_, err = a.Build(context.Background(), Descriptor{}, inputs)
	assert.ErrorIs(t, err, ErrArchiverUnavailable)
}

type countingArchiver struct {
	calls int
	err   error
}

func (c *countingArchiver) Archive(w io.Writer, files []File) error {
	c.calls++
	return c.err
}

func TestBuild_EntryFailureAbortsBeforeArchiving(t *testing.T) {
	arch := &countingArchiver{}
	good := solidPNG(t, 64, 64, color.NRGBA{A: 255})
	bad := solidPNG(t, 65, 64, color.NRGBA{A: 255})
	inputs := []Input{
		{Entry: entryWithUpload(t, "Good", good)},
		{Entry: entryWithUpload(t, "Bad", bad)},
	}

	arc, err := NewAssembler(arch).Build(context.Background(), Descriptor{DisplayName: "P"}, inputs)
	require.Error(t, err)
	assert.Nil(t, arc)
	assert.Zero(t, arch.calls)

	var ee *EntryError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 2, ee.Index)
	assert.Equal(t, "Bad", ee.Name)
	assert.ErrorIs(t, err, texture.ErrDimensions)
	assert.Contains(t, err.Error(), "65x64")
}

func TestBuild_ArchiverFailure(t *testing.T) {
	arch := &countingArchiver{err: errors.New("disk full")}
	_, err := NewAssembler(arch).Build(context.Background(), Descriptor{}, []Input{{Entry: skin.NewEntry("a")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, arch.calls)
}

func TestBuild_Precedence(t *testing.T) {
	fresh := solidPNG(t, 64, 64, color.NRGBA{1, 0, 0, 255})
	upload := solidPNG(t, 64, 64, color.NRGBA{2, 0, 0, 255})
	held := solidPNG(t, 64, 32, color.NRGBA{3, 0, 0, 255})

	withAll := skin.NewEntry("all")
	withAll.Upload = upload
	withAll.Placeholder = held

	withPlaceholder := skin.NewEntry("held")
	withPlaceholder.Placeholder = held

	inputs := []Input{
		{Entry: withAll, Fresh: &texture.Candidate{Name: "new.png", Data: fresh}},
		{Entry: withAll},
		{Entry: withPlaceholder},
		{Entry: skin.NewEntry("empty")},
	}

	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "P"}, inputs)
	require.NoError(t, err)
	files := readZip(t, arc.Data)

	assert.Equal(t, fresh, files["p.mcpack/skin-1.PNG"])
	assert.Equal(t, upload, files["p.mcpack/skin-2.PNG"])
	assert.Equal(t, held, files["p.mcpack/skin-3.PNG"])

	synth := files["p.mcpack/skin-4.PNG"]
	size, err := texture.ValidateBytes(context.Background(), synth)
	require.NoError(t, err)
	assert.Equal(t, texture.Size{Width: 64, Height: 64}, size)
}

func TestBuild_FreshUploadIsTypeChecked(t *testing.T) {
	data := solidPNG(t, 64, 64, color.NRGBA{A: 255})
	inputs := []Input{{
		Entry: skin.NewEntry("a"),
		Fresh: &texture.Candidate{Name: "a.gif", ContentType: "image/gif", Data: data},
	}}
	_, err := newAssembler().Build(context.Background(), Descriptor{}, inputs)
	assert.ErrorIs(t, err, texture.ErrNotPNG)
}

func TestBuild_DuplicateSafeNames(t *testing.T) {
	inputs := []Input{
		{Entry: skin.NewEntry("Alex")},
		{Entry: skin.NewEntry("alex")},
		{Entry: skin.NewEntry("ALEX!")},
	}
	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "P"}, inputs)
	require.NoError(t, err)

	lang := string(readZip(t, arc.Data)["p.mcpack/texts/en_US.lang"])
	assert.Equal(t, "p.pack.title=P\np.skin.alex=Alex\np.skin.alex-2=alex\np.skin.alex-3=ALEX!", lang)
}

func TestUniqueName_StaysWithinLimit(t *testing.T) {
	long := skin.SafeName(strings.Repeat("a", 70))
	require.Len(t, long, skin.MaxSafeNameLen)

	used := map[string]int{}
	seen := map[string]bool{}
	for i := 0; i < 12; i++ {
		got := uniqueName(used, long)
		assert.LessOrEqual(t, len(got), skin.MaxSafeNameLen, got)
		assert.False(t, seen[got], got)
		seen[got] = true
	}
	assert.True(t, seen[strings.Repeat("a", 62)+"-2"])
	assert.True(t, seen[strings.Repeat("a", 61)+"-12"])
}

func TestBuild_DefaultsAndFreshIDs(t *testing.T) {
	a := newAssembler()
	inputs := []Input{{Entry: skin.NewEntry("a")}}

	first, err := a.Build(context.Background(), Descriptor{}, inputs)
	require.NoError(t, err)
	second, err := a.Build(context.Background(), Descriptor{}, inputs)
	require.NoError(t, err)

	assert.Regexp(t, `^pack-[0-9a-f]{4}\.mcpack$`, first.FileName)
	assert.Equal(t, "en_US", first.Language)
	assert.NotEqual(t, first.PackID, second.PackID)
	assert.NotEqual(t, first.ModuleID, second.ModuleID)
}

func TestBuild_UnsupportedLanguage(t *testing.T) {
	_, err := newAssembler().Build(context.Background(), Descriptor{Language: "xx_XX"}, []Input{{Entry: skin.NewEntry("a")}})
	assert.ErrorIs(t, err, ErrLanguage)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	arch := &countingArchiver{}
	_, err := NewAssembler(arch).Build(ctx, Descriptor{}, []Input{{Entry: skin.NewEntry("a")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, arch.calls)
}

func TestBuild_MultilineNamesStayOnOneLine(t *testing.T) {
	arc, err := newAssembler().Build(context.Background(), Descriptor{DisplayName: "P"}, []Input{{Entry: skin.NewEntry("two\nlines")}})
	require.NoError(t, err)
	lang := string(readZip(t, arc.Data)["p.mcpack/texts/en_US.lang"])
	assert.Len(t, strings.Split(lang, "\n"), 2)
}

func TestZipArchiver_UsesDeflate(t *testing.T) {
	var buf bytes.Buffer
	files := []File{{Name: "root/"}, {Name: "root/a.txt", Data: bytes.Repeat([]byte("a"), 1000)}}
	require.NoError(t, NewZipArchiver(DefaultLevel).Archive(&buf, files))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.True(t, zr.File[0].FileInfo().IsDir())
	assert.Equal(t, zip.Deflate, zr.File[1].Method)
	assert.Less(t, zr.File[1].CompressedSize64, uint64(1000))
}

func TestNewZipArchiver_ClampsLevel(t *testing.T) {
	assert.Equal(t, DefaultLevel, NewZipArchiver(42).Level)
	assert.Equal(t, 9, NewZipArchiver(9).Level)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "p.mcpack")
	require.NoError(t, WriteFile(path, &Archive{Data: []byte("zip")}))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("zip"), got)

	left, err := filepath.Glob(filepath.Join(dir, "out", ".mcpack-*"))
	require.NoError(t, err)
	assert.Empty(t, left)
}
