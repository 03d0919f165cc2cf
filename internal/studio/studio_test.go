package studio

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestApp(t *testing.T, slots int) (*App, http.Handler) {
	t.Helper()
	app, err := New(Options{
		Generator:    texture.NewPlaceholderGenerator(rand.NewPCG(1, 2)),
		InitialSlots: slots,
		PreviewSize:  32,
		Supersample:  1,
	})
	require.NoError(t, err)
	return app, app.Handler()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func do(h http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return do(h, method, path, strings.NewReader(body), "application/json")
}

func multipartBody(t *testing.T, field, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func listSkins(t *testing.T, h http.Handler) []skinDTO {
	t.Helper()
	rec := do(h, http.MethodGet, "/api/skins", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[struct {
		Skins []skinDTO `json:"skins"`
	}](t, rec).Skins
}

func TestIndexAndLanguages(t *testing.T) {
	_, h := newTestApp(t, 0)

	rec := do(h, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Skin Pack Studio")

	rec = do(h, http.MethodGet, "/api/languages", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	langs := decode[struct {
		Languages []string `json:"languages"`
		Default   string   `json:"default"`
	}](t, rec)
	assert.Contains(t, langs.Languages, "ja_JP")
	assert.Equal(t, "en_US", langs.Default)
}

func TestPackForm(t *testing.T) {
	app, h := newTestApp(t, 0)

	rec := doJSON(h, http.MethodPut, "/api/pack", `{"name":"My Pack","language":"de_DE"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[packDTO](t, rec)
	assert.Equal(t, "My Pack", p.Name)
	assert.Equal(t, "my-pack.mcpack", p.FileName)
	assert.Equal(t, "de_DE", app.Form().Language)

	rec = doJSON(h, http.MethodPut, "/api/pack", `{"language":"xx_XX"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "unsupported language")
	assert.Equal(t, "de_DE", app.Form().Language)
}

func TestPackForm_BlankNameGetsDefault(t *testing.T) {
	app, h := newTestApp(t, 0)

	rec := doJSON(h, http.MethodPut, "/api/pack", `{"name":"   "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[packDTO](t, rec)
	assert.NotEmpty(t, p.Name)
	assert.Equal(t, app.Form().DisplayName, p.Name)
	assert.NotEqual(t, skin.FallbackName+".mcpack", p.FileName)
	assert.Equal(t, skin.SafeName(p.Name)+".mcpack", p.FileName)
}

func TestSkinLifecycle(t *testing.T) {
	_, h := newTestApp(t, 2)
	skins := listSkins(t, h)
	require.Len(t, skins, 2)
	assert.False(t, skins[0].HasUpload)

	rec := doJSON(h, http.MethodPost, "/api/skins", `{"name":"Third","geometry":"classic"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	third := decode[skinDTO](t, rec)
	assert.Equal(t, "third", third.SafeName)
	assert.Equal(t, "geometry.humanoid.custom", third.Geometry)

	rec = doJSON(h, http.MethodPost, "/api/skins", `{"geometry":"dragon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, listSkins(t, h), 3)

	rec = doJSON(h, http.MethodPatch, "/api/skins/"+third.ID, `{"name":"Steve Alt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "steve-alt", decode[skinDTO](t, rec).SafeName)

	rec = doJSON(h, http.MethodPost, "/api/skins/"+third.ID+"/move", `{"position":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, third.ID, listSkins(t, h)[0].ID)

	rec = doJSON(h, http.MethodPost, "/api/skins/"+third.ID+"/move", `{"position":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodDelete, "/api/skins/"+third.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, listSkins(t, h), 2)

	rec = do(h, http.MethodDelete, "/api/skins/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectedLeavesSlotUnchanged(t *testing.T) {
	app, h := newTestApp(t, 1)
	id := listSkins(t, h)[0].ID

	body, ct := multipartBody(t, "file", "skin.png", pngBytes(t, 32, 32))
	rec := do(h, http.MethodPost, "/api/skins/"+id+"/texture", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "32x32")
	assert.False(t, listSkins(t, h)[0].HasUpload)
	assert.Contains(t, app.Status(), "32x32")

	body, ct = multipartBody(t, "file", "skin.jpg", []byte("not an image"))
	rec = do(h, http.MethodPost, "/api/skins/"+id+"/texture", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUploadAcceptedAndServedEnlarged(t *testing.T) {
	_, h := newTestApp(t, 1)
	id := listSkins(t, h)[0].ID

	body, ct := multipartBody(t, "file", "steve.png", pngBytes(t, 64, 64))
	rec := do(h, http.MethodPost, "/api/skins/"+id+"/texture", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[skinDTO](t, rec)
	assert.True(t, got.HasUpload)
	assert.Equal(t, "steve.png", got.UploadName)

	rec = do(h, http.MethodGet, "/api/skins/"+id+"/texture.png?scale=4", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})

	rec = do(h, http.MethodDelete, "/api/skins/"+id+"/texture", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[skinDTO](t, rec).HasUpload)
}

func TestPreviewReleasesContexts(t *testing.T) {
	app, h := newTestApp(t, 1)
	id := listSkins(t, h)[0].ID

	rec := do(h, http.MethodGet, "/api/skins/"+id+"/preview.webp?yaw=0.7", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("RIFF")))

	assert.Zero(t, app.tracker.Counts().Contexts)
	assert.Zero(t, app.tracker.Counts().Framebuffers)
}

func TestRegenerateSkipsUploads(t *testing.T) {
	_, h := newTestApp(t, 2)
	id := listSkins(t, h)[0].ID
	body, ct := multipartBody(t, "file", "a.png", pngBytes(t, 64, 32))
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/skins/"+id+"/texture", body, ct).Code)

	rec := do(h, http.MethodPost, "/api/skins/regenerate", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rec)["replaced"])
}

func TestBuildDownloadsArchive(t *testing.T) {
	app, h := newTestApp(t, 2)
	require.Equal(t, http.StatusOK, doJSON(h, http.MethodPut, "/api/pack", `{"name":"My Pack"}`).Code)

	rec := do(h, http.MethodPost, "/api/build", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="my-pack.mcpack"`)

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "my-pack.mcpack/manifest.json")
	assert.Contains(t, names, "my-pack.mcpack/skin-2.PNG")
	assert.Contains(t, names, "my-pack.mcpack/texts/en_US.lang")
	assert.Equal(t, "built my-pack.mcpack", app.Status())
}

func TestBuildWithoutSkins(t *testing.T) {
	_, h := newTestApp(t, 0)
	rec := do(h, http.MethodPost, "/api/build", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "at least one skin")
}

func TestBuildRejectsBadFreshFile(t *testing.T) {
	_, h := newTestApp(t, 2)
	second := listSkins(t, h)[1]

	body, ct := multipartBody(t, "skin_"+second.ID, "big.png", pngBytes(t, 100, 100))
	rec := do(h, http.MethodPost, "/api/build", body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "skin 2")
}

func TestBuildGuard(t *testing.T) {
	app, h := newTestApp(t, 1)
	app.build.Lock()
	defer app.build.Unlock()

	rec := do(h, http.MethodPost, "/api/build", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "build already in progress", app.Status())
}

func TestSessionRoundTrip(t *testing.T) {
	app, h := newTestApp(t, 2)
	require.Equal(t, http.StatusOK, doJSON(h, http.MethodPut, "/api/pack", `{"name":"Saved Pack","language":"fr_FR"}`).Code)
	before := listSkins(t, h)

	rec := do(h, http.MethodPost, "/api/session", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	key := decode[map[string]string](t, rec)["key"]
	require.NotEmpty(t, key)

	require.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, "/api/skins/"+before[0].ID, nil, "").Code)
	require.Equal(t, http.StatusOK, doJSON(h, http.MethodPut, "/api/pack", `{"name":"Other"}`).Code)

	rec = do(h, http.MethodGet, "/api/session/"+key, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Saved Pack", app.Form().DisplayName)
	assert.Equal(t, "fr_FR", app.Form().Language)

	after := listSkins(t, h)
	require.Len(t, after, 2)
	assert.Equal(t, before[0].ID, after[0].ID)

	rec = do(h, http.MethodGet, "/api/session/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusReportsCounts(t *testing.T) {
	_, h := newTestApp(t, 3)
	rec := do(h, http.MethodGet, "/api/status", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Status string `json:"status"`
		Skins  int    `json:"skins"`
	}](t, rec)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, 3, body.Skins)
}
