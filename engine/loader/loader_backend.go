package loader

import (
	"fmt"
	"path"
	"strings"
)

// loaderBackend decodes a fetched payload into an Asset. Concrete implementations
// (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode imports an asset from its raw bytes.
	//
	// Parameters:
	//   - name: the asset name
	//   - data: the payload
	//   - resolve: resolver for resources referenced by the payload
	//
	// Returns:
	//   - *Asset: the imported asset
	//   - error: error if decoding fails
	Decode(name string, data []byte, resolve resourceResolver) (*Asset, error)
}

// gltfLoaderBackend is the loaderBackend for glTF JSON and GLB payloads.
type gltfLoaderBackend struct{}

var _ loaderBackend = gltfLoaderBackend{}

func (gltfLoaderBackend) Decode(name string, data []byte, resolve resourceResolver) (*Asset, error) {
	// The importer carries per-document state, so each decode gets its own.
	return newGLTFImporter(resolve).Import(name, data)
}

// resolveBackend selects a backend from the URL's file extension, falling back to
// content sniffing for extensionless URLs.
func (l *loader) resolveBackend(rawURL string, data []byte) (loaderBackend, error) {
	ext := strings.ToLower(path.Ext(strings.SplitN(rawURL, "?", 2)[0]))
	switch {
	case ext == ".gltf" || ext == ".glb":
		return l.backends[BackendTypeGLTF], nil
	case ext == "" && (isGLB(data) || strings.HasPrefix(strings.TrimSpace(string(data[:min(len(data), 64)])), "{")):
		return l.backends[BackendTypeGLTF], nil
	default:
		return nil, fmt.Errorf("unsupported model format: %q", ext)
	}
}
