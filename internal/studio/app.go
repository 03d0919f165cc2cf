// Package studio serves the skin pack editor over HTTP: the slot list,
// uploads, previews, session snapshots and the pack download.
package studio

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"skinpack-studio/internal/logging"
	"skinpack-studio/internal/pack"
	"skinpack-studio/internal/preview"
	"skinpack-studio/internal/session"
	"skinpack-studio/internal/skin"
	"skinpack-studio/internal/texture"
)

const (
	statusBuilding = "build already in progress"
	maxScale       = 16
)

// Options wires an App. Zero fields get working defaults.
type Options struct {
	Assembler    *pack.Assembler
	Generator    *texture.PlaceholderGenerator
	Tracker      *preview.Tracker
	Sessions     session.Store
	Logger       logging.Logger
	PreviewSize  int
	Supersample  int
	InitialSlots int
	Language     string
	Geometry     string
}

// App is the editor controller. Handlers only touch state through it.
type App struct {
	store     *skin.Store
	assembler *pack.Assembler
	gen       *texture.PlaceholderGenerator
	tracker   *preview.Tracker
	textures  *texture.Cache
	sessions  session.Store
	log       logging.Logger

	previewSize int
	supersample int
	geometry    string

	build sync.Mutex

	mu     sync.RWMutex
	form   pack.Descriptor
	status string
}

func New(o Options) (*App, error) {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if o.Generator == nil {
		o.Generator = texture.NewPlaceholderGenerator(nil)
	}
	if o.Tracker == nil {
		o.Tracker = preview.NewTracker()
	}
	if o.Sessions == nil {
		o.Sessions = session.NewMemoryStore(session.DefaultTTL)
	}
	if o.Assembler == nil {
		o.Assembler = pack.NewAssembler(pack.NewZipArchiver(pack.DefaultLevel),
			pack.WithPlaceholders(o.Generator),
			pack.WithLogger(o.Logger),
		)
	}
	if o.PreviewSize <= 0 {
		o.PreviewSize = 200
	}
	if o.Language == "" {
		o.Language = skin.DefaultLanguage
	}
	if g, err := skin.ParseGeometry(o.Geometry); err == nil {
		o.Geometry = g
	} else {
		o.Geometry = skin.GeometrySlim
	}

	a := &App{
		store:       skin.NewStore(o.Generator),
		assembler:   o.Assembler,
		gen:         o.Generator,
		tracker:     o.Tracker,
		textures:    texture.NewCache(0),
		sessions:    o.Sessions,
		log:         o.Logger.With("component", "studio"),
		previewSize: o.PreviewSize,
		supersample: o.Supersample,
		geometry:    o.Geometry,
		form: pack.Descriptor{
			DisplayName: skin.DefaultPackName(),
			Description: skin.DefaultDescription(),
			Language:    o.Language,
		},
		status: "ready",
	}
	if err := a.store.Reset(o.InitialSlots); err != nil {
		return nil, err
	}
	for _, e := range a.store.Entries() {
		if _, err := a.store.SetGeometry(e.ID, a.geometry); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Handler returns the gin engine with all routes registered.
func (a *App) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(a.log))
	a.Register(r)
	return r
}

// Form returns the current pack fields.
func (a *App) Form() pack.Descriptor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.form
}

func (a *App) setForm(d pack.Descriptor) {
	a.mu.Lock()
	a.form = d
	a.mu.Unlock()
}

// Status is the last user-facing status line.
func (a *App) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *App) setStatus(s string) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// Build packs the current slots. fresh maps entry ids to files chosen for
// this build only. A second call while one runs fails fast.
func (a *App) Build(ctx context.Context, fresh map[string]*texture.Candidate) (*pack.Archive, error) {
	if !a.build.TryLock() {
		return nil, errBuildRunning
	}
	defer a.build.Unlock()

	a.setStatus("building")
	entries := a.store.Entries()
	inputs := make([]pack.Input, len(entries))
	for i, e := range entries {
		inputs[i] = pack.Input{Entry: e, Fresh: fresh[e.ID]}
	}

	archive, err := a.assembler.Build(ctx, a.Form(), inputs)
	if err != nil {
		a.setStatus(err.Error())
		return nil, err
	}
	a.setStatus("built " + archive.FileName)
	return archive, nil
}

var errBuildRunning = errors.New(statusBuilding)
