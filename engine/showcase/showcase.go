// package showcase mounts the animated look-around scene onto a window surface. A Showcase
// owns one mount: it builds the renderer, camera, orbit controls and lights, loads a single
// glTF asset in the background, plays every clip in a loop, turns the asset toward the
// pointer, and releases everything on Teardown.
package showcase

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/animator"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/Carmen-Shannon/oxy-showcase/engine/frame"
	"github.com/Carmen-Shannon/oxy-showcase/engine/light"
	"github.com/Carmen-Shannon/oxy-showcase/engine/loader"
	"github.com/Carmen-Shannon/oxy-showcase/engine/logger"
	"github.com/Carmen-Shannon/oxy-showcase/engine/renderer"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"

	"github.com/google/uuid"
)

const (
	// yawFactor and pitchFactor scale a normalized pointer position into root rotation, as fractions of π.
	yawFactor   = 0.2
	pitchFactor = 0.07

	fillLightColor     = 0x0000ff
	fillLightIntensity = 200
	keyLightColor      = 0xff0000
	keyLightIntensity  = 150
)

// Showcase is one mount of the scene lifecycle. Every method must be called from the
// thread that flushes the scheduler.
type Showcase interface {
	// LoadAsset starts the single background load of this mount. Load events are applied
	// on the scheduler thread.
	//
	// Parameters:
	//   - url: an http(s) URL, a file URL, or a filesystem path to a glTF or GLB file
	//
	// Returns:
	//   - error: ErrLoadAlreadyIssued on every call after the first, ErrTornDown after Teardown
	LoadAsset(url string) error

	// Tick advances the animation by elapsed seconds once the asset is ready and renders
	// one frame. It does nothing after Teardown.
	//
	// Parameters:
	//   - elapsed: seconds since the previous frame
	//
	// Returns:
	//   - error: the render error, if any
	Tick(elapsed float32) error

	// OnPointerMove turns the asset toward a normalized pointer position. It does nothing
	// until an asset is attached.
	//
	// Parameters:
	//   - nx: horizontal position in [-1, 1], left to right
	//   - ny: vertical position in [-1, 1], bottom to top
	OnPointerMove(nx, ny float32)

	// OnResize follows a surface resize: the camera aspect becomes w/h and the renderer is resized.
	//
	// Parameters:
	//   - w: the new logical width
	//   - h: the new logical height; 0 leaves the aspect unchanged
	OnResize(w, h int)

	// Teardown stops the frame loop, removes the listeners, cancels pending work and the
	// in-flight load, closes a loader the showcase created itself, disposes the asset and
	// then the renderer. Safe to call more than once.
	Teardown()

	// State returns the load state.
	State() State
	// IsLoading reports whether the asset is still loading.
	IsLoading() bool
	// HasError reports whether the load failed.
	HasError() bool
	// ErrorMessage returns the failure message, or "" when there is none.
	ErrorMessage() string
	// Err returns the stored AssetLoadFailure, or nil.
	Err() error
	// Progress returns the last reported load progress in [0, 1].
	Progress() float64
	// MountID identifies this mount.
	MountID() uuid.UUID
	// Alive reports whether Teardown has not been called yet.
	Alive() bool

	Scene() scene.Scene
	Camera() camera.Camera
	Controls() camera.CameraController
	Renderer() renderer.Renderer
	// Asset returns the attached asset, or nil.
	Asset() *loader.Asset
}

// showcase is the implementation of the Showcase interface.
type showcase struct {
	lc *lifecycle

	loader          loader.Loader
	ownsLoader      bool
	loadTimeout     time.Duration
	keyLightDelay   time.Duration
	maxPixelRatio   float32
	rendererBackend renderer.RendererBackendType
	rendererOptions []renderer.RendererBuilderOption
}

var _ Showcase = &showcase{}

// New mounts a showcase on surface. It builds the renderer, camera, controls and scene,
// adds the fill light, schedules the key light, registers the surface listeners and
// requests the first frame. The asset is not loaded until LoadAsset is called.
//
// Parameters:
//   - surface: the borrowed window surface
//   - scheduler: the scheduler owning the frame loop and deferred tasks
//   - options: variadic list of ShowcaseBuilderOption functions
//
// Returns:
//   - Showcase: the mounted showcase
func New(surface window.Window, scheduler frame.Scheduler, options ...ShowcaseBuilderOption) Showcase {
	s := &showcase{
		keyLightDelay:   time.Second,
		maxPixelRatio:   2,
		rendererBackend: renderer.BackendTypeWGPU,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.loader == nil {
		s.loader = loader.NewLoader(loader.BackendTypeGLTF)
		s.ownsLoader = true
	}

	w, h := surface.Width(), surface.Height()
	mountID := uuid.New()
	lc := &lifecycle{
		mountID:   mountID,
		alive:     true,
		log:       logger.With("mount", mountID.String()),
		surface:   surface,
		scheduler: scheduler,
		width:     w,
		height:    h,
		state:     StateLoading,
	}
	s.lc = lc

	rendererOptions := append([]renderer.RendererBuilderOption{
		renderer.WithClearColor(common.Transparent),
		renderer.WithPixelRatio(min(surface.PixelRatio(), s.maxPixelRatio)),
	}, s.rendererOptions...)
	lc.renderer = renderer.NewRenderer(s.rendererBackend, surface, rendererOptions...)

	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	lc.camera = camera.NewCamera(
		camera.WithFov(45*math.Pi/180),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(0.1, 1000),
		camera.WithPosition(0, -15, 20),
		camera.WithTarget(0, 0, 0),
	)
	lc.scene = scene.NewScene(scene.WithCamera(lc.camera))
	lc.controls = camera.NewCameraController(lc.camera,
		camera.WithPolarRange(math.Pi/2, 3*math.Pi/5),
		camera.WithAzimuthRange(-math.Pi/4, math.Pi/4),
		camera.WithZoom(false),
	)

	lc.fillLight = light.NewPointLight(fillLightColor, fillLightIntensity,
		light.WithName("fill"),
		light.WithPosition(0, -10, 0),
	)
	lc.scene.AddLight(lc.fillLight)
	lc.keyLightHandle = scheduler.After(s.keyLightDelay, func() { s.addKeyLight(lc) })

	lc.listenerIDs = append(lc.listenerIDs,
		surface.AddPointerMoveListener(func(x, y float32) { s.pointerMove(lc, x, y) }),
		surface.AddResizeListener(func(w, h int) { s.resize(lc, w, h) }),
		surface.AddDragListener(func(dx, dy float32) { s.drag(lc, dx, dy) }),
	)

	lc.frameHandle = scheduler.RequestFrame(func(now time.Time) { s.frame(lc, now) })

	lc.log.Infof("mounted showcase (%dx%d)", w, h)
	return s
}

func (s *showcase) addKeyLight(lc *lifecycle) {
	if !lc.alive {
		return
	}
	lc.keyLight = light.NewPointLight(keyLightColor, keyLightIntensity,
		light.WithName("key"),
		light.WithPosition(0, 10, 0),
	)
	lc.scene.AddLight(lc.keyLight)
	lc.log.Debug("key light added")
}

func (s *showcase) frame(lc *lifecycle, now time.Time) {
	if !lc.alive {
		return
	}

	var elapsed float32
	if !lc.lastFrame.IsZero() {
		elapsed = float32(now.Sub(lc.lastFrame).Seconds())
	}
	lc.lastFrame = now

	if err := s.Tick(elapsed); err != nil {
		lc.log.Errorf("frame: %v", err)
	}

	if lc.alive {
		lc.frameHandle = lc.scheduler.RequestFrame(func(now time.Time) { s.frame(lc, now) })
	}
}

func (s *showcase) LoadAsset(url string) error {
	lc := s.lc
	if !lc.alive {
		return ErrTornDown
	}
	if lc.loadIssued {
		return ErrLoadAlreadyIssued
	}
	lc.loadIssued = true
	lc.url = url

	var ctx context.Context
	if s.loadTimeout > 0 {
		ctx, lc.cancelLoad = context.WithTimeout(context.Background(), s.loadTimeout)
	} else {
		ctx, lc.cancelLoad = context.WithCancel(context.Background())
	}

	lc.log.Infof("loading %q", url)
	s.loader.LoadAsync(ctx, url, func(ev loader.LoadEvent) {
		lc.scheduler.Post(func() { s.applyLoadEvent(lc, ev) })
	})
	return nil
}

// applyLoadEvent runs on the scheduler thread. Events arriving after teardown or after
// the load settled are dropped; a late asset is disposed.
func (s *showcase) applyLoadEvent(lc *lifecycle, ev loader.LoadEvent) {
	settled := !lc.alive || lc.state != StateLoading

	switch e := ev.(type) {
	case loader.Loading:
		if settled {
			return
		}
		lc.progress = e.Progress
		lc.log.Debugf("loading %q: %.0f%%", lc.url, e.Progress*100)
	case loader.Ready:
		if settled {
			if e.Asset != nil {
				e.Asset.Dispose()
			}
			return
		}
		s.attach(lc, e.Asset)
	case loader.Failed:
		if settled {
			return
		}
		lc.cancelLoad()
		lc.state = StateFailed
		lc.err = &AssetLoadFailure{URL: lc.url, Cause: e.Err}
		lc.log.Errorf("%v", lc.err)
	}
}

func (s *showcase) attach(lc *lifecycle, asset *loader.Asset) {
	lc.cancelLoad()
	if asset == nil || asset.Root == nil {
		lc.state = StateFailed
		lc.err = &AssetLoadFailure{URL: lc.url, Cause: errors.New("asset has no root node")}
		lc.log.Errorf("%v", lc.err)
		return
	}

	lc.asset = asset
	lc.scene.Add(asset.Root)
	lc.mixer = animator.NewMixer(asset.Root)
	for _, clip := range asset.Clips {
		lc.mixer.ClipAction(clip).SetLoop(true).Play()
	}
	lc.progress = 1
	lc.state = StateReady
	lc.log.Infof("asset %q ready: %d meshes, %d clips", asset.Name, asset.MeshCount(), len(asset.Clips))
}

func (s *showcase) Tick(elapsed float32) error {
	lc := s.lc
	if !lc.alive {
		return nil
	}
	if lc.state == StateReady && lc.mixer != nil {
		lc.mixer.Update(elapsed)
	}
	return lc.renderer.Render(lc.scene, lc.camera)
}

// pointerMove normalizes surface pixel coordinates to [-1, 1] with +y up.
func (s *showcase) pointerMove(lc *lifecycle, x, y float32) {
	if !lc.alive || lc.width <= 0 || lc.height <= 0 {
		return
	}
	nx := x/float32(lc.width)*2 - 1
	ny := -(y/float32(lc.height))*2 + 1
	s.OnPointerMove(nx, ny)
}

func (s *showcase) OnPointerMove(nx, ny float32) {
	lc := s.lc
	if !lc.alive || lc.asset == nil {
		return
	}
	root := lc.asset.Root
	rot := root.Rotation()
	root.SetRotation(ny*math.Pi*pitchFactor, nx*math.Pi*yawFactor, rot[2])
}

func (s *showcase) resize(lc *lifecycle, w, h int) {
	if !lc.alive {
		return
	}
	s.OnResize(w, h)
}

func (s *showcase) OnResize(w, h int) {
	lc := s.lc
	if !lc.alive {
		return
	}
	lc.width, lc.height = w, h
	if h > 0 {
		lc.camera.SetAspect(float32(w) / float32(h))
	}
	lc.renderer.SetPixelRatio(min(lc.surface.PixelRatio(), s.maxPixelRatio))
	lc.renderer.SetSize(w, h)
}

func (s *showcase) drag(lc *lifecycle, dx, dy float32) {
	if !lc.alive {
		return
	}
	lc.controls.Drag(dx, dy, lc.height)
}

func (s *showcase) Teardown() {
	lc := s.lc
	if !lc.alive {
		return
	}
	lc.alive = false

	for _, id := range lc.listenerIDs {
		lc.surface.RemoveListener(id)
	}
	lc.listenerIDs = nil

	lc.scheduler.Cancel(lc.frameHandle)
	lc.scheduler.Cancel(lc.keyLightHandle)

	if lc.cancelLoad != nil {
		lc.cancelLoad()
	}
	if s.ownsLoader {
		if err := s.loader.Close(); err != nil {
			lc.log.Warnf("close loader: %v", err)
		}
	}

	if lc.mixer != nil {
		lc.mixer.StopAll()
		lc.mixer = nil
	}
	if lc.asset != nil {
		released := lc.asset.Dispose()
		lc.log.Debugf("disposed %d meshes of %q", released, lc.asset.Name)
		lc.asset = nil
	}

	lc.renderer.Dispose()
	lc.log.Info("tore down showcase")
}

func (s *showcase) State() State {
	return s.lc.state
}

func (s *showcase) IsLoading() bool {
	return s.lc.state == StateLoading
}

func (s *showcase) HasError() bool {
	return s.lc.state == StateFailed
}

func (s *showcase) ErrorMessage() string {
	if s.lc.err == nil {
		return ""
	}
	return s.lc.err.Error()
}

func (s *showcase) Err() error {
	return s.lc.err
}

func (s *showcase) Progress() float64 {
	return s.lc.progress
}

func (s *showcase) MountID() uuid.UUID {
	return s.lc.mountID
}

func (s *showcase) Alive() bool {
	return s.lc.alive
}

func (s *showcase) Scene() scene.Scene {
	return s.lc.scene
}

func (s *showcase) Camera() camera.Camera {
	return s.lc.camera
}

func (s *showcase) Controls() camera.CameraController {
	return s.lc.controls
}

func (s *showcase) Renderer() renderer.Renderer {
	return s.lc.renderer
}

func (s *showcase) Asset() *loader.Asset {
	return s.lc.asset
}
