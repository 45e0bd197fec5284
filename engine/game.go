package engine

import "github.com/spaghettifunk/offaxis/engine/config"

/**
 * @brief Hooks an application plugs into the engine loop. Every hook is
 * optional.
 */
type Game struct {
	State interface{}
	// Called with every new scene once it has been built and checked, before
	// it replaces the running one. An error rejects the scene, so the game
	// should only adopt it on success.
	FnInitialize Initialize
	// Called at the start of every tick, before the cameras update.
	FnUpdate Update
	// Called from Shutdown.
	FnShutdown Shutdown
}

type Initialize func(scene *config.Scene) error
type Update func(scene *config.Scene, deltaTime float64) error
type Shutdown func() error
