package studio

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"

	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/preview"
	"skinpack-studio/internal/session"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

//go:embed web/index.html
var indexHTML []byte

type packForm struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
}

type packDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	FileName    string `json:"file_name"`
}

type skinForm struct {
	Name     *string `json:"name"`
	Geometry *string `json:"geometry"`
}

type moveForm struct {
	Position int `json:"position"`
}

type skinDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SafeName   string `json:"safe_name"`
	Type       string `json:"type"`
	Geometry   string `json:"geometry"`
	HasUpload  bool   `json:"has_upload"`
	UploadName string `json:"upload_name,omitempty"`
	TextureURL string `json:"texture_url"`
	PreviewURL string `json:"preview_url"`
}

// Register mounts the editor routes on r.
func (a *App) Register(r *gin.Engine) {
	r.GET("/", a.handleIndex)

	api := r.Group("/api")
	api.GET("/languages", a.handleLanguages)
	api.GET("/pack", a.handleGetPack)
	api.PUT("/pack", a.handlePutPack)

	api.GET("/skins", a.handleListSkins)
	api.POST("/skins", a.handleAddSkin)
	api.POST("/skins/regenerate", a.handleRegenerate)
	api.PATCH("/skins/:id", a.handleUpdateSkin)
	api.DELETE("/skins/:id", a.handleDeleteSkin)
	api.POST("/skins/:id/move", a.handleMoveSkin)
	api.POST("/skins/:id/texture", a.handleUploadTexture)
	api.DELETE("/skins/:id/texture", a.handleClearTexture)
	api.GET("/skins/:id/texture.png", a.handleTexturePNG)
	api.GET("/skins/:id/preview.webp", a.handlePreview)

	api.POST("/build", a.handleBuild)
	api.POST("/session", a.handleSaveSession)
	api.GET("/session/:key", a.handleLoadSession)
	api.GET("/status", a.handleStatus)
}

func (a *App) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (a *App) handleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": skin.Languages, "default": skin.DefaultLanguage})
}

func (a *App) handleGetPack(c *gin.Context) {
	c.JSON(http.StatusOK, toPackDTO(a.Form()))
}

func (a *App) handlePutPack(c *gin.Context) {
	var form packForm
	if err := c.ShouldBindJSON(&form); err != nil {
		a.fail(c, http.StatusBadRequest, errors.New("invalid pack payload"))
		return
	}

	d := a.Form()
	if form.Name != nil {
		d.DisplayName = strings.TrimSpace(*form.Name)
		if d.DisplayName == "" {
			d.DisplayName = skin.DefaultPackName()
		}
	}
	if form.Description != nil {
		d.Description = *form.Description
	}
	if form.Language != nil {
		if !skin.IsLanguage(*form.Language) {
			a.fail(c, http.StatusBadRequest, fmt.Errorf("%w: %s", pack.ErrLanguage, *form.Language))
			return
		}
		d.Language = *form.Language
	}
	a.setForm(d)
	c.JSON(http.StatusOK, toPackDTO(d))
}

func (a *App) handleListSkins(c *gin.Context) {
	entries := a.store.Entries()
	out := make([]skinDTO, len(entries))
	for i, e := range entries {
		out[i] = toSkinDTO(e)
	}
	c.JSON(http.StatusOK, gin.H{"skins": out})
}

func (a *App) handleAddSkin(c *gin.Context) {
	var form skinForm
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&form); err != nil {
			a.fail(c, http.StatusBadRequest, errors.New("invalid skin payload"))
			return
		}
	}
	name := ""
	if form.Name != nil {
		name = *form.Name
	}
	e, err := a.store.Add(name)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, err)
		return
	}
	geometry := a.geometry
	if form.Geometry != nil {
		geometry = *form.Geometry
	}
	updated, err := a.store.SetGeometry(e.ID, geometry)
	if err != nil {
		_ = a.store.Remove(e.ID)
		a.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, toSkinDTO(updated))
}

func (a *App) handleUpdateSkin(c *gin.Context) {
	var form skinForm
	if err := c.ShouldBindJSON(&form); err != nil {
		a.fail(c, http.StatusBadRequest, errors.New("invalid skin payload"))
		return
	}
	id := c.Param("id")
	e, err := a.store.Get(id)
	if err == nil && form.Name != nil {
		e, err = a.store.Rename(id, *form.Name)
	}
	if err == nil && form.Geometry != nil {
		e, err = a.store.SetGeometry(id, *form.Geometry)
	}
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, toSkinDTO(e))
}

func (a *App) handleDeleteSkin(c *gin.Context) {
	if err := a.store.Remove(c.Param("id")); err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *App) handleMoveSkin(c *gin.Context) {
	var form moveForm
	if err := c.ShouldBindJSON(&form); err != nil {
		a.fail(c, http.StatusBadRequest, errors.New("invalid move payload"))
		return
	}
	if err := a.store.Move(c.Param("id"), form.Position); err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	a.handleListSkins(c)
}

// handleUploadTexture validates the file before anything is stored; a
// rejected file leaves the slot unchanged.
func (a *App) handleUploadTexture(c *gin.Context) {
	id := c.Param("id")
	if _, err := a.store.Get(id); err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		a.fail(c, http.StatusBadRequest, errors.New("file is required"))
		return
	}
	cand, err := readCandidate(fh)
	if err != nil {
		a.fail(c, http.StatusBadRequest, err)
		return
	}
	size, err := texture.Validate(c.Request.Context(), cand)
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	e, err := a.store.SetUpload(id, cand.Name, cand.Data)
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	a.setStatus(fmt.Sprintf("%s: %s accepted (%s)", e.Name, cand.Name, size))
	c.JSON(http.StatusOK, toSkinDTO(e))
}

func (a *App) handleClearTexture(c *gin.Context) {
	e, err := a.store.ClearUpload(c.Param("id"))
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, toSkinDTO(e))
}

// handleTexturePNG serves the slot's texture enlarged by ?scale=n with
// hard pixel edges.
func (a *App) handleTexturePNG(c *gin.Context) {
	e, err := a.store.Get(c.Param("id"))
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	scale, _ := strconv.Atoi(c.DefaultQuery("scale", "1"))
	scale = max(1, min(scale, maxScale))

	src := e.Source()
	if scale == 1 {
		c.Data(http.StatusOK, "image/png", src)
		return
	}
	img := a.textures.Resolve(src)
	if img == nil {
		a.fail(c, http.StatusUnprocessableEntity, texture.ErrDecode)
		return
	}
	b := img.Bounds()
	big := resize.Resize(uint(b.Dx()*scale), uint(b.Dy()*scale), img, resize.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, big); err != nil {
		a.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (a *App) handlePreview(c *gin.Context) {
	e, err := a.store.Get(c.Param("id"))
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	yaw, _ := strconv.ParseFloat(c.DefaultQuery("yaw", "0"), 64)
	data, err := preview.TrackedThumbnail(a.tracker, e.Source(), e.Geometry, yaw, a.previewSize, a.supersample)
	if err != nil {
		a.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/webp", data)
}

func (a *App) handleRegenerate(c *gin.Context) {
	n, err := a.store.RegeneratePlaceholders()
	if err != nil {
		a.fail(c, http.StatusInternalServerError, err)
		return
	}
	a.setStatus(fmt.Sprintf("regenerated %d placeholders", n))
	c.JSON(http.StatusOK, gin.H{"replaced": n})
}

// handleBuild accepts an optional multipart body whose skin_<id> files
// are used for this build without being stored.
func (a *App) handleBuild(c *gin.Context) {
	fresh := make(map[string]*texture.Candidate)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			a.fail(c, http.StatusBadRequest, errors.New("invalid multipart body"))
			return
		}
		for field, files := range form.File {
			id, ok := strings.CutPrefix(field, "skin_")
			if !ok || len(files) == 0 {
				continue
			}
			cand, err := readCandidate(files[0])
			if err != nil {
				a.fail(c, http.StatusBadRequest, err)
				return
			}
			fresh[id] = &cand
		}
	}

	archive, err := a.Build(c.Request.Context(), fresh)
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.FileName))
	c.Header("X-Pack-Id", archive.PackID)
	c.Data(http.StatusOK, "application/zip", archive.Data)
}

func (a *App) handleSaveSession(c *gin.Context) {
	snap := session.Capture(a.Form(), a.store.Entries())
	key := session.NewKey()
	if err := a.sessions.Save(c.Request.Context(), key, snap); err != nil {
		a.fail(c, http.StatusInternalServerError, err)
		return
	}
	a.setStatus("session saved")
	c.JSON(http.StatusCreated, gin.H{"key": key})
}

func (a *App) handleLoadSession(c *gin.Context) {
	snap, err := a.sessions.Load(c.Request.Context(), c.Param("key"))
	if err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	d, entries := snap.Restore()
	if err := a.store.Replace(entries); err != nil {
		a.fail(c, statusFor(err), err)
		return
	}
	if !skin.IsLanguage(d.Language) {
		d.Language = skin.DefaultLanguage
	}
	a.setForm(d)
	a.setStatus("session restored")
	c.JSON(http.StatusOK, gin.H{"pack": toPackDTO(d), "skins": len(entries)})
}

func (a *App) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  a.Status(),
		"skins":   a.store.Len(),
		"preview": a.tracker.Counts(),
	})
}

func (a *App) fail(c *gin.Context, code int, err error) {
	msg := err.Error()
	a.setStatus(msg)
	if code >= http.StatusInternalServerError {
		a.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func statusFor(err error) int {
	var entryErr *pack.EntryError
	switch {
	case errors.Is(err, errBuildRunning):
		return http.StatusConflict
	case errors.As(err, &entryErr),
		errors.Is(err, texture.ErrNotPNG),
		errors.Is(err, texture.ErrTooLarge),
		errors.Is(err, texture.ErrDecode),
		errors.Is(err, texture.ErrDimensions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, skin.ErrNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, skin.ErrBadPosition),
		errors.Is(err, skin.ErrInvalidEntry),
		errors.Is(err, pack.ErrNoEntries),
		errors.Is(err, pack.ErrLanguage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// readCandidate reads at most one byte past the limit so oversize files
// still fail validation as too large.
func readCandidate(fh *multipart.FileHeader) (texture.Candidate, error) {
	f, err := fh.Open()
	if err != nil {
		return texture.Candidate{}, fmt.Errorf("studio: open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, texture.MaxBytes+1))
	if err != nil {
		return texture.Candidate{}, fmt.Errorf("studio: read upload: %w", err)
	}
	return texture.Candidate{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func toPackDTO(d pack.Descriptor) packDTO {
	return packDTO{
		Name:        d.DisplayName,
		Description: d.Description,
		Language:    d.Language,
		FileName:    skin.SafeName(d.DisplayName) + pack.Suffix,
	}
}

func toSkinDTO(e skin.Entry) skinDTO {
	return skinDTO{
		ID:         e.ID,
		Name:       e.Name,
		SafeName:   e.SafeName,
		Type:       e.Type,
		Geometry:   e.Geometry,
		HasUpload:  e.HasUpload(),
		UploadName: e.UploadName,
		TextureURL: "/api/skins/" + e.ID + "/texture.png",
		PreviewURL: "/api/skins/" + e.ID + "/preview.webp",
	}
}
