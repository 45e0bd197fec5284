package engine

import (
	"github.com/spaghettifunk/offaxis/engine/config"
	"github.com/spaghettifunk/offaxis/engine/preview"
)

type ApplicationConfig struct {
	// The application name used in logs.
	Name string
	// RigPath is the rig file to load. Rig is used when empty.
	RigPath string
	Rig     *config.Rig
	// Watch reloads the rig file whenever it changes. Needs RigPath.
	Watch bool
	// Ticks per second. Defaults to DEFAULT_TICK_RATE.
	TickRate float64
	// Stop after this many ticks. 0 runs until the context is cancelled.
	TickLimit uint64
	// PreviewDir receives a wireframe image of each camera whenever its
	// matrices change. Previews are disabled when empty.
	PreviewDir     string
	PreviewFormat  string
	PreviewOptions preview.Options
	MaxCameraCount uint16
	JobWorkers     int
	// Game supplies per-tick hooks. Can be nil.
	Game *Game
}

const (
	DEFAULT_TICK_RATE        float64 = 60
	DEFAULT_MAX_CAMERA_COUNT uint16  = 64
	DEFAULT_JOB_WORKERS      int     = 2
	DEFAULT_PREVIEW_FORMAT           = "png"
)

func (c *ApplicationConfig) withDefaults() *ApplicationConfig {
	out := *c
	if out.TickRate <= 0 {
		out.TickRate = DEFAULT_TICK_RATE
	}
	if out.MaxCameraCount == 0 {
		out.MaxCameraCount = DEFAULT_MAX_CAMERA_COUNT
	}
	if out.JobWorkers <= 0 {
		out.JobWorkers = DEFAULT_JOB_WORKERS
	}
	if out.PreviewFormat == "" {
		out.PreviewFormat = DEFAULT_PREVIEW_FORMAT
	}
	if out.PreviewOptions.Width == 0 || out.PreviewOptions.Height == 0 {
		out.PreviewOptions = preview.DefaultOptions()
	}
	return &out
}
