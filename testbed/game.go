package testbed

import (
	"fmt"

	"github.com/spaghettifunk/offaxis/engine"
	"github.com/spaghettifunk/offaxis/engine/config"
	"github.com/spaghettifunk/offaxis/engine/core"
	"github.com/spaghettifunk/offaxis/engine/math"
	"github.com/spaghettifunk/offaxis/engine/renderer/components"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	elapsed float64

	viewer  *math.Transform
	tracked []*components.OffAxisCamera
}

// Head tracked cameras follow the viewer with their point of view.
var headTracked = map[string]bool{
	"mirror":     true,
	"cave_front": true,
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize(scene *config.Scene) error {
	core.LogDebug("TestGame Initialize fn....")

	state := g.State.(*gameState)
	viewer, ok := scene.Transforms["viewer"]
	if !ok {
		return fmt.Errorf("the testbed needs a transform named 'viewer'")
	}
	state.viewer = viewer
	state.tracked = state.tracked[:0]
	for _, cam := range scene.Cameras {
		if headTracked[cam.Name] {
			state.tracked = append(state.tracked, cam)
		}
	}
	return nil
}

// Update sways the viewer left and right and moves the point of view of the
// head tracked cameras along.
func (g *TestGame) Update(scene *config.Scene, deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime

	sway := 0.6 * math.Sin(float32(state.elapsed)*0.5)
	state.viewer.SetPosition(math.NewVec3(sway, 1.6, 2))

	eye := state.viewer.WorldPosition()
	for _, cam := range state.tracked {
		cam.SetPointOfView(eye)
	}
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	core.LogDebug("testbed ran for %.2fs", state.elapsed)
	return nil
}
