package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-showcase/common"
	"github.com/Carmen-Shannon/oxy-showcase/engine/camera"
	"github.com/Carmen-Shannon/oxy-showcase/engine/light"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/Carmen-Shannon/oxy-showcase/engine/window"

	"github.com/cogentcore/webgpu/wgpu"
)

func quadGeometry() scene.Geometry {
	n := [3]float32{0, 0, 1}
	return scene.NewGeometry([]scene.Vertex{
		{Position: [3]float32{-1, -1, 0}, Normal: n},
		{Position: [3]float32{1, -1, 0}, Normal: n},
		{Position: [3]float32{1, 1, 0}, Normal: n},
		{Position: [3]float32{-1, 1, 0}, Normal: n},
	}, []uint32{0, 1, 2, 0, 2, 3})
}

func newTestRenderer(t *testing.T, opts ...RendererBuilderOption) (Renderer, *Recorder) {
	t.Helper()
	rec := NewRecorder()
	win := window.NewHeadlessWindow(window.WithSize(800, 600))
	r := NewRenderer(BackendTypeHeadless, win, append([]RendererBuilderOption{WithRecorder(rec)}, opts...)...)
	return r, rec
}

func newTestScene() scene.Scene {
	return scene.NewScene(scene.WithCamera(camera.NewCamera(camera.WithAspect(800.0 / 600.0))))
}

func TestRenderEmptyScene(t *testing.T) {
	r, rec := newTestRenderer(t)
	if err := r.Render(newTestScene(), nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	frame, ok := rec.LastFrame()
	if !ok {
		t.Fatal("no frame recorded")
	}
	if len(frame.Draws) != 0 {
		t.Fatalf("draws = %d, want 0", len(frame.Draws))
	}
	if frame.ClearColor != common.Transparent {
		t.Fatalf("clear color = %v, want transparent", frame.ClearColor)
	}
	if info := r.Info(); info.Frames != 1 || info.DrawCalls != 0 {
		t.Fatalf("info = %+v", info)
	}
}

func TestRenderCollectsDrawsAndLights(t *testing.T) {
	r, rec := newTestRenderer(t)
	s := newTestScene()

	geom := quadGeometry()
	red := scene.NewMaterial("red", common.Color{1, 0, 0, 1}, true)
	s.Add(scene.NewNode(scene.WithName("front"), scene.WithMesh(scene.NewMesh(geom, red))))
	s.Add(scene.NewNode(scene.WithName("plain"), scene.WithMesh(scene.NewMesh(geom))))
	s.Add(scene.NewNode(scene.WithName("group")))

	s.AddLight(light.NewPointLight(0xffffff, 10, light.WithPosition(0, 2, 2)))
	s.AddLight(light.NewPointLight(0xffffff, 10, light.WithEnabled(false)))

	if err := r.Render(s, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	frame, _ := rec.LastFrame()
	if len(frame.Draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(frame.Draws))
	}
	if got := frame.Draws[0]; got.Name != "front" || got.Color != (common.Color{1, 0, 0, 1}) || !got.DoubleSided {
		t.Fatalf("first draw = %+v", got)
	}
	if got := frame.Draws[1]; got.Color != (common.Color{1, 1, 1, 1}) || got.DoubleSided {
		t.Fatalf("material-less draw = %+v", got)
	}
	if len(frame.Lights) != 1 || frame.Lights[0].Position != [3]float32{0, 2, 2} {
		t.Fatalf("lights = %+v, want only the enabled light", frame.Lights)
	}
	if info := r.Info(); info.DrawCalls != 2 || info.Triangles != 4 {
		t.Fatalf("info = %+v, want 2 draws and 4 triangles", info)
	}
}

func TestRenderSkipsDisposedGeometry(t *testing.T) {
	r, rec := newTestRenderer(t)
	s := newTestScene()
	mesh := scene.NewMesh(quadGeometry())
	s.Add(scene.NewNode(scene.WithMesh(mesh)))
	mesh.Dispose()

	if err := r.Render(s, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame, _ := rec.LastFrame(); len(frame.Draws) != 0 {
		t.Fatalf("draws = %d, want 0", len(frame.Draws))
	}
}

func TestFrustumCulling(t *testing.T) {
	tests := []struct {
		name      string
		culling   bool
		wantDraws int
	}{
		{"enabled", true, 1},
		{"disabled", false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newTestRenderer(t, WithFrustumCulling(tt.culling))
			s := newTestScene()
			geom := quadGeometry()
			s.Add(scene.NewNode(scene.WithName("visible"), scene.WithMesh(scene.NewMesh(geom))))
			behind := scene.NewNode(scene.WithName("behind"), scene.WithMesh(scene.NewMesh(geom)))
			behind.SetPosition(0, 0, 50)
			s.Add(behind)

			if err := r.Render(s, nil); err != nil {
				t.Fatalf("Render: %v", err)
			}
			frame, _ := rec.LastFrame()
			if len(frame.Draws) != tt.wantDraws {
				t.Fatalf("draws = %d, want %d", len(frame.Draws), tt.wantDraws)
			}
			if got := r.Info().Culled; got != 2-tt.wantDraws {
				t.Fatalf("culled = %d, want %d", got, 2-tt.wantDraws)
			}
		})
	}
}

func TestRenderWithoutCamera(t *testing.T) {
	r, _ := newTestRenderer(t)
	if err := r.Render(scene.NewScene(), nil); err == nil {
		t.Fatal("Render without a camera succeeded")
	}
}

func TestDrawingBufferSize(t *testing.T) {
	r, rec := newTestRenderer(t, WithPixelRatio(2))
	if w, h := r.DrawingBufferSize(); w != 1600 || h != 1200 {
		t.Fatalf("DrawingBufferSize = %dx%d, want 1600x1200", w, h)
	}

	r.SetSize(400, 300)
	r.SetPixelRatio(1.5)
	r.SetPixelRatio(-1)
	if w, h := r.Size(); w != 400 || h != 300 {
		t.Fatalf("Size = %dx%d, want 400x300", w, h)
	}
	if w, h := r.DrawingBufferSize(); w != 600 || h != 450 {
		t.Fatalf("DrawingBufferSize = %dx%d, want 600x450", w, h)
	}

	want := [][2]int{{1600, 1200}, {800, 600}, {600, 450}}
	got := rec.Configured()
	if len(got) != len(want) {
		t.Fatalf("configured = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("configured = %v, want %v", got, want)
		}
	}
}

func TestDispose(t *testing.T) {
	r, rec := newTestRenderer(t)
	r.Dispose()
	r.Dispose()

	if !r.Disposed() || !rec.Released() {
		t.Fatal("renderer not disposed")
	}
	if err := r.Render(newTestScene(), nil); !errors.Is(err, ErrRendererDisposed) {
		t.Fatalf("Render after Dispose = %v, want ErrRendererDisposed", err)
	}
	if rec.FrameCount() != 0 {
		t.Fatalf("frames = %d, want 0", rec.FrameCount())
	}
}

func TestClearColor(t *testing.T) {
	r, rec := newTestRenderer(t, WithClearColor(common.ColorFromHex(0x112233)))
	r.SetClearColor(common.Color{0, 0, 0, 1})
	if err := r.Render(newTestScene(), nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if frame, _ := rec.LastFrame(); frame.ClearColor != (common.Color{0, 0, 0, 1}) {
		t.Fatalf("clear color = %v", frame.ClearColor)
	}
}

func TestSurfaceAlphaModePrefersBlending(t *testing.T) {
	tests := []struct {
		name  string
		modes []wgpu.CompositeAlphaMode
		want  wgpu.CompositeAlphaMode
	}{
		{"opaque first", []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque, wgpu.CompositeAlphaModePremultiplied}, wgpu.CompositeAlphaModePremultiplied},
		{"unpremultiplied only", []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque, wgpu.CompositeAlphaModeUnpremultiplied}, wgpu.CompositeAlphaModeUnpremultiplied},
		{"both blending modes", []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeUnpremultiplied, wgpu.CompositeAlphaModePremultiplied}, wgpu.CompositeAlphaModePremultiplied},
		{"opaque only", []wgpu.CompositeAlphaMode{wgpu.CompositeAlphaModeOpaque, wgpu.CompositeAlphaModeInherit}, wgpu.CompositeAlphaModeOpaque},
		{"none reported", nil, wgpu.CompositeAlphaModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := surfaceAlphaMode(tt.modes); got != tt.want {
				t.Fatalf("surfaceAlphaMode(%v) = %v, want %v", tt.modes, got, tt.want)
			}
		})
	}
}
