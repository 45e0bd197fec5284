package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
)

// MatrixSink receives the matrices of every camera that projected
// successfully on a tick.
type MatrixSink interface {
	Consume(name string, state offaxis.ProjectionState) error
}

// TickFlusher is implemented by sinks that batch a tick worth of cameras.
type TickFlusher interface {
	Flush(tick uint64) error
}

// ConventionsReceiver is implemented by sinks that need the output
// conventions of the loaded rig.
type ConventionsReceiver interface {
	SetConventions(c offaxis.Conventions)
}

// LogSink logs the frustum bounds of every camera at debug level.
type LogSink struct{}

func (LogSink) Consume(name string, state offaxis.ProjectionState) error {
	b := state.Bounds
	core.LogDebug("camera '%s': l=%.4f r=%.4f b=%.4f t=%.4f n=%.4f f=%.4f inverted=%t",
		name, b.Left, b.Right, b.Bottom, b.Top, b.Near, b.Far, state.Plane.Inverted)
	return nil
}

type boundsDocument struct {
	Left   float32 `toml:"left"`
	Right  float32 `toml:"right"`
	Bottom float32 `toml:"bottom"`
	Top    float32 `toml:"top"`
	Near   float32 `toml:"near"`
	Far    float32 `toml:"far"`
}

type cameraDocument struct {
	Name       string         `toml:"name"`
	Layout     string         `toml:"layout"`
	Depth      string         `toml:"depth"`
	View       [16]float32    `toml:"view"`
	Projection [16]float32    `toml:"projection"`
	Eye        [3]float32     `toml:"eye"`
	Distance   float32        `toml:"distance"`
	Inverted   bool           `toml:"inverted"`
	Bounds     boundsDocument `toml:"bounds"`
}

type tickDocument struct {
	Tick    uint64           `toml:"tick"`
	Cameras []cameraDocument `toml:"cameras"`
}

type tickFile struct {
	Ticks []tickDocument `toml:"ticks"`
}

// WriterSink writes one [[ticks]] table per tick to W. Appended tables form
// a single valid TOML document.
type WriterSink struct {
	mu          sync.Mutex
	w           io.Writer
	conventions offaxis.Conventions
	pending     []cameraDocument
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, conventions: offaxis.DefaultConventions()}
}

func (s *WriterSink) SetConventions(c offaxis.Conventions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conventions = c
}

func (s *WriterSink) Consume(name string, state offaxis.ProjectionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := state.Bounds
	s.pending = append(s.pending, cameraDocument{
		Name:       name,
		Layout:     s.conventions.Layout.String(),
		Depth:      s.conventions.Depth.String(),
		View:       state.ViewData(s.conventions.Layout),
		Projection: state.ProjectionData(s.conventions.Layout),
		Eye:        [3]float32{state.Eye.X, state.Eye.Y, state.Eye.Z},
		Distance:   state.Distance,
		Inverted:   state.Plane.Inverted,
		Bounds: boundsDocument{
			Left: b.Left, Right: b.Right,
			Bottom: b.Bottom, Top: b.Top,
			Near: b.Near, Far: b.Far,
		},
	})
	return nil
}

func (s *WriterSink) Flush(tick uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	doc := tickFile{Ticks: []tickDocument{{Tick: tick, Cameras: s.pending}}}
	s.pending = nil

	enc := toml.NewEncoder(s.w)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing tick %d: %w", tick, err)
	}
	return nil
}
