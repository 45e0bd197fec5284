package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/offaxis/engine/assets"
	"github.com/spaghettifunk/offaxis/engine/config"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"github.com/spaghettifunk/offaxis/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

var ErrNotInitialized = errors.New("engine is not initialized")

// minTickPeriod bounds the ticker period for very high tick rates.
const minTickPeriod = 10 * time.Microsecond

type Engine struct {
	currentStage  Stage
	config        *ApplicationConfig
	sink          MatrixSink
	isRunning     bool
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	previews      *previewWriter
	clock         *core.Clock
	lastTime      float64
	scene         *config.Scene
	tick          uint64
}

// New creates an engine feeding sink. A nil sink logs the matrices.
func New(cfg *ApplicationConfig, sink MatrixSink) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: application config is nil", core.ErrInvalidConfig)
	}
	c := cfg.withDefaults()
	if c.RigPath == "" && c.Rig == nil {
		return nil, fmt.Errorf("%w: either a rig path or a rig is required", core.ErrInvalidConfig)
	}
	if c.Watch && c.RigPath == "" {
		return nil, fmt.Errorf("%w: watching needs a rig path", core.ErrInvalidConfig)
	}
	if sink == nil {
		sink = LogSink{}
	}

	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		Conventions:    offaxis.DefaultConventions(),
		MaxCameraCount: c.MaxCameraCount,
		JobWorkers:     c.JobWorkers,
		JobQueueSize:   int(c.MaxCameraCount),
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		config:        c,
		sink:          sink,
		systemManager: sm,
		clock:         core.NewClock(),
	}
	if c.PreviewDir != "" {
		e.previews = newPreviewWriter(c.PreviewDir, c.PreviewFormat, sm.JobSystem())
	}
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine already initialized")
	}
	e.currentStage = EngineStageInitializing

	// register some events
	e.systemManager.Events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	if e.previews != nil {
		e.systemManager.Events.Register(core.EVENT_CODE_CAMERA_UPDATED, e, e.onCameraUpdated)
	}

	rig := e.config.Rig
	if e.config.RigPath != "" {
		r, err := config.Load(e.config.RigPath)
		if err != nil {
			core.LogError(err.Error())
			return err
		}
		rig = r
	}
	if err := e.Reload(rig); err != nil {
		return err
	}

	if e.config.Watch {
		am, err := assets.NewAssetManager(assets.DefaultDebounce)
		if err != nil {
			return err
		}
		if err := am.Watch(e.config.RigPath); err != nil {
			_ = am.Close()
			return err
		}
		e.assetManager = am
		core.LogInfo("watching rig '%s'", e.config.RigPath)
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) rigName() string {
	if e.config.RigPath != "" {
		return e.config.RigPath
	}
	return e.config.Name
}

/**
 * @brief Replaces the running scene with the one described by rig. The rig is
 * built, checked and handed to the game before any live state changes, so on
 * error the previous scene keeps running. Must not be called concurrently
 * with Run.
 */
func (e *Engine) Reload(rig *config.Rig) error {
	if rig == nil {
		return e.reject(fmt.Errorf("%w: rig is nil", core.ErrInvalidConfig))
	}
	scene, err := rig.Build()
	if err != nil {
		return e.reject(err)
	}
	if len(scene.Cameras) > int(e.config.MaxCameraCount) {
		return e.reject(fmt.Errorf("%w: rig has %d cameras, at most %d allowed",
			core.ErrCameraSystemFull, len(scene.Cameras), e.config.MaxCameraCount))
	}

	if g := e.config.Game; g != nil && g.FnInitialize != nil {
		if err := g.FnInitialize(scene); err != nil {
			return e.reject(fmt.Errorf("game initialize failed: %w", err))
		}
	}

	if err := e.install(scene); err != nil {
		if e.scene != nil {
			if rerr := e.install(e.scene); rerr != nil {
				core.LogError("restoring rig '%s' failed: %s", e.rigName(), rerr)
			}
		}
		return e.reject(err)
	}
	e.scene = scene
	if r, ok := e.sink.(ConventionsReceiver); ok {
		r.SetConventions(scene.Conventions)
	}

	conv := scene.Conventions
	core.LogInfo("loaded rig '%s': %d cameras, %d transforms, %s handed, %s depth, %s",
		e.rigName(), len(scene.Cameras), len(scene.Transforms), conv.Handedness, conv.Depth, conv.Layout)
	e.systemManager.Events.Fire(core.EVENT_CODE_RIG_RELOADED, e, core.EventContext{Name: e.rigName(), Tick: e.tick})
	return nil
}

// install swaps the registered cameras and the projector conventions for
// those of scene.
func (e *Engine) install(scene *config.Scene) error {
	cs := e.systemManager.CameraSystem()
	if err := cs.Shutdown(); err != nil {
		return err
	}
	e.systemManager.Projector.Conventions = scene.Conventions
	for _, cam := range scene.Cameras {
		if _, err := cs.Register(cam); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) reject(err error) error {
	core.LogError("rig '%s' rejected: %s", e.rigName(), err)
	e.systemManager.Events.Fire(core.EVENT_CODE_RIG_REJECTED, e, core.EventContext{Name: e.rigName(), Tick: e.tick, Err: err})
	return err
}

/**
 * @brief Runs the fixed rate tick loop until ctx is done, the tick limit is
 * reached or an application quit event is fired. Rig reloads are applied
 * between ticks.
 */
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	period := time.Duration(float64(time.Second) / e.config.TickRate)
	if period < minTickPeriod {
		period = minTickPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var reloads <-chan assets.AssetEvent
	if e.assetManager != nil {
		reloads = e.assetManager.Events()
	}

	for e.isRunning {
		select {
		case <-ctx.Done():
			e.isRunning = false

		case ev, ok := <-reloads:
			if !ok {
				reloads = nil
				continue
			}
			e.onAssetEvent(ev)

		case <-ticker.C:
			if err := e.update(); err != nil {
				core.LogError("tick %d failed, stopping: %s", e.tick, err)
				e.isRunning = false
				return err
			}
		}
	}
	e.clock.Stop()
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) update() error {
	// Update clock and get delta time.
	e.clock.Update()
	var currentTime float64 = e.clock.Elapsed()
	var delta float64 = (currentTime - e.lastTime)

	if g := e.config.Game; g != nil && g.FnUpdate != nil {
		if err := g.FnUpdate(e.scene, delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	for _, r := range e.systemManager.CameraSystem().Update(delta) {
		// Failed cameras keep whatever the sink last received.
		if r.Err != nil {
			continue
		}
		if err := e.sink.Consume(r.Name, r.State); err != nil {
			return fmt.Errorf("sink rejected camera '%s': %w", r.Name, err)
		}
	}
	e.tick++
	if f, ok := e.sink.(TickFlusher); ok {
		if err := f.Flush(e.tick); err != nil {
			return err
		}
	}

	e.systemManager.Metrics.TickUpdate(delta)
	e.lastTime = currentTime

	if e.config.TickLimit > 0 && e.tick >= e.config.TickLimit {
		e.isRunning = false
	}
	return nil
}

func (e *Engine) onAssetEvent(ev assets.AssetEvent) {
	if ev.Err != nil {
		_ = e.reject(ev.Err)
		return
	}
	rig, ok := ev.Asset.(*config.Rig)
	if !ok {
		core.LogWarn("ignoring %s asset '%s'", ev.Type, ev.Path)
		return
	}
	_ = e.Reload(rig)
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	var errs []error
	if e.assetManager != nil {
		errs = append(errs, e.assetManager.Close())
	}
	if g := e.config.Game; g != nil && g.FnShutdown != nil {
		errs = append(errs, g.FnShutdown())
	}

	m := e.systemManager.Metrics.Snapshot()
	core.LogInfo("ran %d ticks (%.1f tps): %d projections, %d failed, %.4fms per solve",
		e.tick, m.TPS, m.Projections, m.Failures, m.SolveMS)

	// Waits for queued previews.
	errs = append(errs, e.systemManager.Shutdown())
	return errors.Join(errs...)
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	return e.tick
}

// Scene returns the scene of the current rig.
func (e *Engine) Scene() *config.Scene {
	return e.scene
}

func (e *Engine) SystemManager() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener_inst interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		{
			core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
			e.isRunning = false
			return true
		}
	}
	return false
}

func (e *Engine) onCameraUpdated(code core.SystemEventCode, sender interface{}, listener_inst interface{}, data core.EventContext) bool {
	cam, ok := e.systemManager.CameraSystem().Get(data.Name)
	if !ok {
		return false
	}
	state, ok := cam.State()
	if !ok {
		return false
	}
	opts := e.config.PreviewOptions
	opts.Markers = e.scene.Markers
	e.previews.submit(previewParams{
		name:  data.Name,
		tick:  data.Tick,
		state: state,
		opts:  opts,
	})
	return false
}
