package showcase

import (
	"context"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/animator"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/Carmen-Shannon/oxy-showcase/engine/frame"
	"github.com/Carmen-Shannon/oxy-showcase/engine/light"
	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// lifecycle is every piece of mutable state owned by one mount. Handlers receive it by
// pointer and never capture its fields separately, so clearing alive stops all of them.
type lifecycle struct {
	mountID uuid.UUID
	alive   bool
	log     *log.Logger

	surface   window.Window
	scheduler frame.Scheduler
	renderer  renderer.Renderer
	camera    camera.Camera
	controls  camera.CameraController
	scene     scene.Scene
	fillLight light.Light
	keyLight  light.Light

	width, height int

	frameHandle    frame.Handle
	keyLightHandle frame.Handle
	lastFrame      time.Time
	listenerIDs    []window.ListenerID

	loadIssued bool
	cancelLoad context.CancelFunc
	url        string

	asset    *loader.Asset
	mixer    animator.Mixer
	state    State
	err      error
	progress float64
}
