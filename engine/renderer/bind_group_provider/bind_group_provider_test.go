package bind_group_provider

import "testing"

func TestReleaseWithoutResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	if p.Label() != "empty" {
		t.Fatalf("Label = %q", p.Label())
	}
	if p.VertexBuffer() != nil || p.IndexBuffer() != nil || p.BindGroup() != nil || p.Buffer(0) != nil {
		t.Fatal("new provider holds GPU resources")
	}

	p.SetMeshBuffers(nil, nil, 36)
	if p.IndexCount() != 36 {
		t.Fatalf("IndexCount = %d, want 36", p.IndexCount())
	}

	p.Release()
	p.Release()
	if !p.Released() {
		t.Fatal("Released = false after Release")
	}
	if p.IndexCount() != 0 {
		t.Fatalf("IndexCount = %d after Release, want 0", p.IndexCount())
	}
}
