package systems

import (
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/offaxis"
)

type SystemManagerConfig struct {
	Conventions    offaxis.Conventions
	MaxCameraCount uint16
	// Workers used for background jobs such as preview export.
	JobWorkers   int
	JobQueueSize int
}

type SystemManager struct {
	Projector    *offaxis.Projector
	Metrics      *core.Metrics
	Events       *core.EventSystem
	cameraSystem *CameraSystem
	jobSystem    *JobSystem
}

func NewSystemManager(config *SystemManagerConfig) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}

	projector := offaxis.NewProjector(config.Conventions)
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
	}, projector)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	sm := &SystemManager{
		Projector:    projector,
		Metrics:      core.NewMetrics(),
		Events:       core.NewEventSystem(),
		cameraSystem: cs,
		jobSystem:    js,
	}
	cs.Metrics = sm.Metrics
	cs.Events = sm.Events
	return sm, nil
}

func (sm *SystemManager) CameraSystem() *CameraSystem {
	return sm.cameraSystem
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.cameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.Events.Shutdown(); err != nil {
		return err
	}
	return nil
}
