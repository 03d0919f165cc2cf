package preview

import "sync/atomic"

// Counts is a snapshot of live rendering resources.
type Counts struct {
	Contexts     int64 `json:"contexts"`
	Framebuffers int64 `json:"framebuffers"`
	Textures     int64 `json:"textures"`
	Geometries   int64 `json:"geometries"`
}

// Tracker counts live rendering resources so leaks show up as growth.
// A nil *Tracker ignores all updates.
type Tracker struct {
	contexts     atomic.Int64
	framebuffers atomic.Int64
	textures     atomic.Int64
	geometries   atomic.Int64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Counts() Counts {
	if t == nil {
		return Counts{}
	}
	return Counts{
		Contexts:     t.contexts.Load(),
		Framebuffers: t.framebuffers.Load(),
		Textures:     t.textures.Load(),
		Geometries:   t.geometries.Load(),
	}
}

func (t *Tracker) context(n int64) {
	if t != nil {
		t.contexts.Add(n)
	}
}

func (t *Tracker) framebuffer(n int64) {
	if t != nil {
		t.framebuffers.Add(n)
	}
}

func (t *Tracker) texture(n int64) {
	if t != nil {
		t.textures.Add(n)
	}
}

func (t *Tracker) geometry(n int64) {
	if t != nil {
		t.geometries.Add(n)
	}
}
