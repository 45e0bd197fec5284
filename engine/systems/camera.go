package systems

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
	"github.com/spaghettifunk/offaxis/engine/renderer/components"
)

type CameraSystem struct {
	Config    *CameraSystemConfig
	Lookup    map[string]uuid.UUID
	Cameras   map[uuid.UUID]*components.CameraLookup
	Projector *offaxis.Projector
	// Metrics and Events are optional.
	Metrics *core.Metrics
	Events  *core.EventSystem

	tick uint64
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/**
	 * @brief NOTE: The maximum number of cameras that can be managed by
	 * the system.
	 */
	MaxCameraCount uint16
}

/** @brief The outcome of updating one camera. */
type CameraResult struct {
	Name string
	// State is the current state, the previous one when Err is set.
	State offaxis.ProjectionState
	// Changed is set when the matrices were recomputed.
	Changed bool
	Err     error
}

/**
 * @brief Initializes the camera system.
 *
 * @param config The configuration for this system.
 * @param projector The projector shared by every camera.
 * @return The camera system, or an error if the configuration is invalid.
 */
func NewCameraSystem(config *CameraSystemConfig, projector *offaxis.Projector) (*CameraSystem, error) {
	if config == nil || config.MaxCameraCount == 0 {
		err := fmt.Errorf("%w: func NewCameraSystem - config.MaxCameraCount must be > 0", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if projector == nil {
		projector = offaxis.NewProjector(offaxis.DefaultConventions())
	}
	return &CameraSystem{
		Config:    config,
		Lookup:    make(map[string]uuid.UUID, config.MaxCameraCount),
		Cameras:   make(map[uuid.UUID]*components.CameraLookup, config.MaxCameraCount),
		Projector: projector,
	}, nil
}

/**
 * @brief Shuts down the camera system, releasing every camera.
 */
func (cs *CameraSystem) Shutdown() error {
	for name, id := range cs.Lookup {
		if err := core.IdentifierReleaseID(id); err != nil {
			core.LogWarn(err.Error())
		}
		delete(cs.Lookup, name)
		delete(cs.Cameras, id)
	}
	return nil
}

/**
 * @brief Registers a camera under its name. The system holds one reference
 * to it until the matching Release.
 *
 * @param camera The camera to register.
 * @return The identifier assigned to the camera.
 */
func (cs *CameraSystem) Register(camera *components.OffAxisCamera) (uuid.UUID, error) {
	if camera == nil || camera.Name == "" {
		err := fmt.Errorf("%w: func CameraSystemRegister - camera must be named", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return uuid.Nil, err
	}
	if _, ok := cs.Lookup[camera.Name]; ok {
		err := fmt.Errorf("%w: '%s'", core.ErrCameraExists, camera.Name)
		core.LogError(err.Error())
		return uuid.Nil, err
	}
	if len(cs.Lookup) >= int(cs.Config.MaxCameraCount) {
		err := fmt.Errorf("%w: cannot register '%s'. Adjust camera system config to allow more", core.ErrCameraSystemFull, camera.Name)
		core.LogError(err.Error())
		return uuid.Nil, err
	}

	id := core.IdentifierAquireNewID(camera)
	cs.Lookup[camera.Name] = id
	cs.Cameras[id] = &components.CameraLookup{
		ID:             id,
		ReferenceCount: 1,
		Camera:         camera,
	}
	core.LogDebug("registered camera '%s' (%s, %s)", camera.Name, camera.Mode, id)
	return id, nil
}

/**
 * @brief Acquires a pointer to a camera by name.
 * Internal reference counter is incremented.
 *
 * @param name The name of the camera to acquire.
 * @return A pointer to a camera if successful; an error otherwise.
 */
func (cs *CameraSystem) Acquire(name string) (*components.OffAxisCamera, error) {
	id, ok := cs.Lookup[name]
	if !ok {
		err := fmt.Errorf("%w: func CameraSystemAcquire failed lookup of '%s'", core.ErrCameraNotFound, name)
		core.LogError(err.Error())
		return nil, err
	}
	lookup := cs.Cameras[id]
	lookup.ReferenceCount++
	return lookup.Camera, nil
}

/**
 * @brief Releases a camera with the given name. Internal reference
 * counter is decremented. If this reaches 0, the camera is unregistered
 * and its name is usable by a new camera.
 *
 * @param name The name of the camera to release.
 */
func (cs *CameraSystem) Release(name string) error {
	id, ok := cs.Lookup[name]
	if !ok {
		err := fmt.Errorf("%w: func CameraSystemRelease failed lookup of '%s'. Nothing was done", core.ErrCameraNotFound, name)
		core.LogWarn(err.Error())
		return err
	}
	lookup := cs.Cameras[id]
	lookup.ReferenceCount--
	if lookup.ReferenceCount < 1 {
		delete(cs.Cameras, id)
		delete(cs.Lookup, name)
		if err := core.IdentifierReleaseID(id); err != nil {
			core.LogWarn(err.Error())
		}
		core.LogDebug("released camera '%s'", name)
	}
	return nil
}

// Get returns the camera registered under name without taking a reference.
func (cs *CameraSystem) Get(name string) (*components.OffAxisCamera, bool) {
	id, ok := cs.Lookup[name]
	if !ok {
		return nil, false
	}
	return cs.Cameras[id].Camera, true
}

// ReferenceCount returns the number of references held on a camera.
func (cs *CameraSystem) ReferenceCount(name string) uint16 {
	id, ok := cs.Lookup[name]
	if !ok {
		return 0
	}
	return cs.Cameras[id].ReferenceCount
}

// Names returns the registered camera names in lexical order.
func (cs *CameraSystem) Names() []string {
	names := make([]string, 0, len(cs.Lookup))
	for name := range cs.Lookup {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

/**
 * @brief Updates every registered camera once, in name order. Failures are
 * logged and reported in the results; the failing camera keeps its previous
 * matrices.
 *
 * @param delta_time The time in seconds since the last update.
 * @return One result per camera.
 */
func (cs *CameraSystem) Update(delta_time float64) []CameraResult {
	cs.tick++
	names := cs.Names()
	results := make([]CameraResult, 0, len(names))

	for _, name := range names {
		camera := cs.Cameras[cs.Lookup[name]].Camera
		before := camera.Revision()

		start := time.Now()
		state, err := camera.Update(cs.Projector)
		elapsed := time.Since(start)

		result := CameraResult{
			Name:    name,
			State:   state,
			Changed: camera.Revision() != before,
			Err:     err,
		}
		results = append(results, result)

		switch {
		case err != nil:
			core.LogError(err.Error())
			cs.record(elapsed, err)
			cs.fire(core.EVENT_CODE_CAMERA_FAILED, name, err)
		case result.Changed:
			cs.record(elapsed, nil)
			cs.fire(core.EVENT_CODE_CAMERA_UPDATED, name, nil)
		}
	}
	return results
}

func (cs *CameraSystem) record(d time.Duration, err error) {
	if cs.Metrics != nil {
		cs.Metrics.RecordProjection(d, err)
	}
}

func (cs *CameraSystem) fire(code core.SystemEventCode, name string, err error) {
	if cs.Events != nil {
		cs.Events.Fire(code, cs, core.EventContext{Name: name, Tick: cs.tick, Err: err})
	}
}
