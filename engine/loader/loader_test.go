package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-showcase/engine/animator"
	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
)

// glbFixture assembles a glTF document and its binary buffer for tests.
type glbFixture struct {
	bin   []byte
	views []string
}

func (f *glbFixture) view(data []byte) int {
	return f.stridedView(data, 0)
}

func (f *glbFixture) stridedView(data []byte, stride int) int {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
	strideField := ""
	if stride > 0 {
		strideField = fmt.Sprintf(`,"byteStride":%d`, stride)
	}
	f.views = append(f.views, fmt.Sprintf(`{"buffer":0,"byteOffset":%d,"byteLength":%d%s}`, len(f.bin), len(data), strideField))
	f.bin = append(f.bin, data...)
	return len(f.views) - 1
}

func (f *glbFixture) document(bufferURI string, body string) []byte {
	uri := ""
	if bufferURI != "" {
		uri = fmt.Sprintf(`"uri":%q,`, bufferURI)
	}
	return []byte(fmt.Sprintf(`{"asset":{"version":"2.0"},"buffers":[{%s"byteLength":%d}],"bufferViews":[%s],%s}`,
		uri, len(f.bin), strings.Join(f.views, ","), body))
}

func (f *glbFixture) glb(body string) []byte {
	js := f.document("", body)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), f.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	out := binary.LittleEndian.AppendUint32(nil, glbMagic)
	out = binary.LittleEndian.AppendUint32(out, glbVersion)
	out = binary.LittleEndian.AppendUint32(out, uint32(12+8+len(js)+8+len(bin)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, glbChunkJSON)
	out = append(out, js...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
	out = binary.LittleEndian.AppendUint32(out, glbChunkBIN)
	return append(out, bin...)
}

func floatBytes(v ...float32) []byte {
	var out []byte
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

func uint16Bytes(v ...uint16) []byte {
	var out []byte
	for _, i := range v {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

// triangleFixture is one red triangle on node "body" at (1,2,3) with a one-second
// rotation clip named "spin".
func triangleFixture(withNormals bool) (*glbFixture, string) {
	f := &glbFixture{}
	pos := f.view(floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0))
	nrm := f.view(floatBytes(0, 0, 1, 0, 0, 1, 0, 0, 1))
	idx := f.view(uint16Bytes(0, 1, 2))
	times := f.view(floatBytes(0, 1))
	rot := f.view(floatBytes(0, 0, 0, 1, 0, 1, 0, 0))

	attrs := `"POSITION":0,"NORMAL":1`
	if !withNormals {
		attrs = `"POSITION":0`
	}
	body := fmt.Sprintf(`"scene":0,"scenes":[{"nodes":[0]}],
		"nodes":[{"name":"body","mesh":0,"translation":[1,2,3]}],
		"meshes":[{"primitives":[{"attributes":{%s},"indices":2,"material":0}]}],
		"materials":[{"name":"red","pbrMetallicRoughness":{"baseColorFactor":[1,0,0,1]}}],
		"accessors":[
			{"bufferView":%d,"componentType":5126,"count":3,"type":"VEC3"},
			{"bufferView":%d,"componentType":5126,"count":3,"type":"VEC3"},
			{"bufferView":%d,"componentType":5123,"count":3,"type":"SCALAR"},
			{"bufferView":%d,"componentType":5126,"count":2,"type":"SCALAR"},
			{"bufferView":%d,"componentType":5126,"count":2,"type":"VEC4"}
		],
		"animations":[{"name":"spin","channels":[{"sampler":0,"target":{"node":0,"path":"rotation"}}],
			"samplers":[{"input":3,"output":4}]}]`, attrs, pos, nrm, idx, times, rot)
	return f, body
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", p, err)
	}
	return p
}

func collect(seq func(func(LoadEvent) bool)) []LoadEvent {
	var events []LoadEvent
	for ev := range seq {
		events = append(events, ev)
	}
	return events
}

func readyAsset(t *testing.T, events []LoadEvent) *Asset {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events")
	}
	switch last := events[len(events)-1].(type) {
	case Ready:
		return last.Asset
	case Failed:
		t.Fatalf("load failed: %v", last.Err)
	default:
		t.Fatalf("sequence ended with %T", last)
	}
	return nil
}

func failure(t *testing.T, events []LoadEvent) error {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events")
	}
	f, ok := events[len(events)-1].(Failed)
	if !ok {
		t.Fatalf("expected Failed, sequence ended with %T", events[len(events)-1])
	}
	if f.Err == nil || f.Err.Error() == "" {
		t.Fatal("Failed carries no reason")
	}
	return f.Err
}

func TestLoadGLBFromFile(t *testing.T) {
	f, body := triangleFixture(true)
	p := writeFile(t, t.TempDir(), "model.glb", f.glb(body))

	l := NewLoader(BackendTypeGLTF)
	events := collect(l.Load(context.Background(), p))
	asset := readyAsset(t, events)

	if _, ok := events[0].(Loading); !ok {
		t.Fatalf("first event is %T, want Loading", events[0])
	}
	if asset.Name != "model" {
		t.Errorf("asset name %q, want model", asset.Name)
	}
	children := asset.Root.Children()
	if len(children) != 1 || children[0].Name() != "body" {
		t.Fatalf("root children %v, want [body]", children)
	}
	body0 := children[0]
	if got := body0.Position(); got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("position %v, want (1,2,3)", got)
	}
	mesh := body0.Mesh()
	if mesh == nil {
		t.Fatal("body has no mesh")
	}
	if n := mesh.Geometry().TriangleCount(); n != 1 {
		t.Errorf("triangle count %d, want 1", n)
	}
	if c := mesh.Materials()[0].Color(); c[0] != 1 || c[1] != 0 || c[2] != 0 || c[3] != 1 {
		t.Errorf("material color %v, want red", c)
	}

	if len(asset.Clips) != 1 {
		t.Fatalf("clip count %d, want 1", len(asset.Clips))
	}
	clip := asset.Clips[0]
	if clip.Name != "spin" || clip.Duration != 1 {
		t.Errorf("clip %q duration %v, want spin 1", clip.Name, clip.Duration)
	}
	if tr := clip.Tracks[0]; tr.Target != body0.ID() || tr.Path != animator.PathRotation {
		t.Errorf("track targets %v path %v, want body rotation", tr.Target, tr.Path)
	}
}

func TestLoadGLTFWithSiblingBuffer(t *testing.T) {
	f, body := triangleFixture(true)
	dir := t.TempDir()
	writeFile(t, dir, "mesh data.bin", f.bin)
	p := writeFile(t, dir, "scene.gltf", f.document("mesh%20data.bin", body))

	asset := readyAsset(t, collect(NewLoader(BackendTypeGLTF).Load(context.Background(), "file://"+filepath.ToSlash(p))))
	if asset.MeshCount() != 1 {
		t.Errorf("mesh count %d, want 1", asset.MeshCount())
	}
}

func TestLoadGLTFDataURIComputesNormals(t *testing.T) {
	f, body := triangleFixture(false)
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(f.bin)
	p := writeFile(t, t.TempDir(), "inline.gltf", f.document(uri, body))

	asset := readyAsset(t, collect(NewLoader(BackendTypeGLTF).Load(context.Background(), p)))
	for i, v := range asset.Root.Children()[0].Mesh().Geometry().Vertices() {
		if v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d normal %v, want +Z", i, v.Normal)
		}
	}
}

func TestLoadTextureTint(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 255, 255, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	f, body := triangleFixture(true)
	imgView := f.view(buf.Bytes())
	body = strings.Replace(body,
		`"pbrMetallicRoughness":{"baseColorFactor":[1,0,0,1]}`,
		`"pbrMetallicRoughness":{"baseColorFactor":[1,0,0,1],"baseColorTexture":{"index":0}}`, 1)
	body += fmt.Sprintf(`,"textures":[{"source":0}],"images":[{"bufferView":%d,"mimeType":"image/png"}]`, imgView)
	p := writeFile(t, t.TempDir(), "tinted.glb", f.glb(body))

	asset := readyAsset(t, collect(NewLoader(BackendTypeGLTF).Load(context.Background(), p)))
	c := asset.Root.Children()[0].Mesh().Materials()[0].Color()
	if math.Abs(float64(c[0])-0.5) > 1e-3 || c[1] != 0 || c[2] != 0 || c[3] != 1 {
		t.Errorf("tinted color %v, want (0.5,0,0,1)", c)
	}
}

func TestLoadHTTPReportsProgress(t *testing.T) {
	f, body := triangleFixture(true)
	data := f.glb(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Write(data)
	}))
	defer srv.Close()

	events := collect(NewLoader(BackendTypeGLTF).Load(context.Background(), srv.URL+"/assets/spidey.glb"))
	asset := readyAsset(t, events)
	if asset.Name != "spidey" {
		t.Errorf("asset name %q, want spidey", asset.Name)
	}

	last := -1.0
	for _, ev := range events[:len(events)-1] {
		l, ok := ev.(Loading)
		if !ok {
			t.Fatalf("unexpected %T before Ready", ev)
		}
		if l.Progress < last {
			t.Errorf("progress went backwards: %v after %v", l.Progress, last)
		}
		last = l.Progress
	}
	if last != 1 {
		t.Errorf("final progress %v, want 1", last)
	}
}

func TestLoadFailures(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	garbage := writeFile(t, dir, "garbage.glb", []byte("definitely not a model"))

	truncated := (&glbFixture{}).glb(`"nodes":[]`)
	binary.LittleEndian.PutUint32(truncated[8:12], uint32(len(truncated)+100))
	truncatedPath := writeFile(t, dir, "truncated.glb", truncated)

	f, body := triangleFixture(true)
	body = strings.Replace(body, `"componentType":5126,"count":3,"type":"VEC3"`, `"componentType":5126,"count":300,"type":"VEC3"`, 1)
	overrun := writeFile(t, dir, "overrun.glb", f.glb(body))

	obj := writeFile(t, dir, "model.obj", []byte("v 0 0 0"))

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"http 404", srv.URL + "/missing.glb", "404"},
		{"missing file", filepath.Join(dir, "nope.glb"), "nope.glb"},
		{"garbage", garbage, "glTF"},
		{"truncated", truncatedPath, "truncated"},
		{"accessor overrun", overrun, "past the end"},
		{"unsupported format", obj, "unsupported model format"},
		{"unsupported scheme", "ftp://example.com/a.glb", "unsupported URL scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := failure(t, collect(NewLoader(BackendTypeGLTF).Load(context.Background(), tt.url)))
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := NewLoader(BackendTypeGLTF, WithTimeout(50*time.Millisecond))
	err := failure(t, collect(l.Load(context.Background(), srv.URL+"/slow.glb")))
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error %q does not mention the timeout", err)
	}
}

func TestLoadBreakDisposesAsset(t *testing.T) {
	f, body := triangleFixture(true)
	p := writeFile(t, t.TempDir(), "model.glb", f.glb(body))

	var asset *Asset
	for ev := range NewLoader(BackendTypeGLTF).Load(context.Background(), p) {
		if r, ok := ev.(Ready); ok {
			asset = r.Asset
			break
		}
	}
	if asset == nil {
		t.Fatal("no Ready event")
	}
	if !asset.Root.Children()[0].Mesh().Geometry().Disposed() {
		t.Error("asset was not disposed after the consumer stopped")
	}
}

func TestLoadAsync(t *testing.T) {
	f, body := triangleFixture(true)
	p := writeFile(t, t.TempDir(), "model.glb", f.glb(body))

	events := make(chan LoadEvent, 16)
	ld := NewLoader(BackendTypeGLTF)
	defer ld.Close()
	ld.LoadAsync(context.Background(), p, func(ev LoadEvent) {
		events <- ev
	})

	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case Ready:
				if ev.Asset.MeshCount() != 1 {
					t.Errorf("mesh count %d, want 1", ev.Asset.MeshCount())
				}
				return
			case Failed:
				t.Fatalf("async load failed: %v", ev.Err)
			}
		case <-timeout:
			t.Fatal("async load did not finish")
		}
	}
}

func TestCloseReleasesWorkers(t *testing.T) {
	f, body := triangleFixture(true)
	p := writeFile(t, t.TempDir(), "model.glb", f.glb(body))

	baseline := runtime.NumGoroutine()
	for i := 0; i < 10; i++ {
		ld := NewLoader(BackendTypeGLTF)
		done := make(chan LoadEvent, 16)
		ld.LoadAsync(context.Background(), p, func(ev LoadEvent) {
			done <- ev
		})
	wait:
		for {
			select {
			case ev := <-done:
				switch ev := ev.(type) {
				case Ready:
					ev.Asset.Dispose()
					break wait
				case Failed:
					t.Fatalf("load %d failed: %v", i, ev.Err)
				}
			case <-time.After(5 * time.Second):
				t.Fatalf("load %d did not finish", i)
			}
		}
		if err := ld.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > baseline {
		if time.Now().After(deadline) {
			t.Fatalf("goroutines = %d after closing 10 loaders, baseline %d", runtime.NumGoroutine(), baseline)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLoadAsyncAfterClose(t *testing.T) {
	ld := NewLoader(BackendTypeGLTF)
	if err := ld.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ld.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	var got []LoadEvent
	ld.LoadAsync(context.Background(), "model.glb", func(ev LoadEvent) {
		got = append(got, ev)
	})
	if len(got) != 1 {
		t.Fatalf("events = %v, want one Failed", got)
	}
	if f, ok := got[0].(Failed); !ok || !errors.Is(f.Err, ErrLoaderClosed) {
		t.Fatalf("event = %#v, want Failed{ErrLoaderClosed}", got[0])
	}
}

func TestAssetDisposeDetachesRoot(t *testing.T) {
	f, body := triangleFixture(true)
	p := writeFile(t, t.TempDir(), "model.glb", f.glb(body))
	asset := readyAsset(t, collect(NewLoader(BackendTypeGLTF).Load(context.Background(), p)))

	s := scene.NewScene()
	s.Add(asset.Root)
	if n := asset.Dispose(); n != 1 {
		t.Errorf("Dispose returned %d, want 1", n)
	}
	if len(s.Children()) != 0 {
		t.Error("root still attached after Dispose")
	}
	if n := asset.Dispose(); n != 0 {
		t.Errorf("second Dispose returned %d, want 0", n)
	}
}

func TestAssetName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"assets/spidey.glb", "spidey"},
		{"https://cdn.test/a/b/robot.gltf?x=1", "robot"},
		{"file:///tmp/scene.glb", "scene"},
		{"", "asset"},
	}
	for _, tt := range tests {
		if got := assetName(tt.in); got != tt.want {
			t.Errorf("assetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
