package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errTruncatedGLB       = errors.New("GLB file truncated")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorOutOfRange = errors.New("accessor reads past the end of its buffer view")
)

// resourceResolver fetches an external resource referenced by a relative URI inside a
// .gltf document (sibling .bin buffers, image files).
type resourceResolver func(uri string) ([]byte, error)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	resolve        resourceResolver
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser defines the interface for parsing glTF/GLB payloads and reading typed
// accessor data out of their buffers. This is internal to the loader package.
type gltfParser interface {
	// Parse decodes a glTF JSON or GLB payload and loads every buffer it references.
	// GLB is detected by its magic number.
	//
	// Parameters:
	//   - data: the complete file contents
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(data []byte) error

	// Document returns the parsed glTF document, or nil before a successful Parse.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// ReadFloats reads an accessor as a flat float slice, converting normalized integer
	// components to [0,1] or [-1,1].
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//   - components: the expected number of components per element
	//
	// Returns:
	//   - []float32: Count*components floats
	//   - error: error if the accessor is missing, mistyped, or out of range
	ReadFloats(accessorIndex int, components int) ([]float32, error)

	// ReadIndices reads an accessor as index data.
	// Handles UNSIGNED_BYTE, UNSIGNED_SHORT, and UNSIGNED_INT component types.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the index data
	//   - error: error if reading fails
	ReadIndices(accessorIndex int) ([]uint32, error)

	// ReadBufferView returns the raw bytes of a buffer view (embedded images).
	//
	// Parameters:
	//   - viewIndex: the index of the buffer view
	//
	// Returns:
	//   - []byte: the view's bytes
	//   - error: error if the view is out of range
	ReadBufferView(viewIndex int) ([]byte, error)

	// Resolve fetches an external or data URI.
	//
	// Parameters:
	//   - uri: the URI as written in the document
	//
	// Returns:
	//   - []byte: the decoded resource
	//   - error: error if the URI cannot be resolved
	Resolve(uri string) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Parameters:
//   - resolve: resolver for external URIs; nil rejects them
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser(resolve resourceResolver) gltfParser {
	return &gltfParserImpl{resolve: resolve}
}

// isGLB reports whether data starts with the GLB magic number.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(data []byte) error {
	if isGLB(data) {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errTruncatedGLB
	}
	if binary.LittleEndian.Uint32(data[0:4]) != glbMagic {
		return errInvalidGLBMagic
	}
	if binary.LittleEndian.Uint32(data[4:8]) != glbVersion {
		return errInvalidGLBVersion
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) {
		return fmt.Errorf("%w: header declares %d bytes, have %d", errTruncatedGLB, total, len(data))
	}

	var jsonChunk []byte
	offset := 12
	for offset+8 <= total {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		start := offset + 8
		end := start + chunkLen
		if chunkLen < 0 || end > total {
			return fmt.Errorf("%w: chunk at %d overruns file", errTruncatedGLB, offset)
		}
		switch chunkType {
		case glbChunkJSON:
			jsonChunk = data[start:end]
		case glbChunkBIN:
			if p.glbBinaryChunk == nil {
				p.glbBinaryChunk = data[start:end]
			}
		}
		// Chunks are 4-byte aligned.
		offset = end + (4-chunkLen%4)%4
	}
	if jsonChunk == nil {
		return errMissingJSONChunk
	}
	return p.parseGLTF(jsonChunk)
}

func (p *gltfParserImpl) parseGLTF(data []byte) error {
	doc := &gltfDocument{}
	if err := json.Unmarshal(bytes.TrimRight(data, " \x00"), doc); err != nil {
		return fmt.Errorf("failed to decode glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	p.document = doc
	return p.loadBuffers()
}

func (p *gltfParserImpl) loadBuffers() error {
	for i := range p.document.Buffers {
		buf := &p.document.Buffers[i]
		var data []byte
		switch {
		case buf.URI == "":
			if i != 0 || p.glbBinaryChunk == nil {
				return fmt.Errorf("%w: buffer %d has no URI and no GLB binary chunk", errInvalidBufferURI, i)
			}
			data = p.glbBinaryChunk
		default:
			var err error
			data, err = p.Resolve(buf.URI)
			if err != nil {
				return fmt.Errorf("failed to load buffer %d: %w", i, err)
			}
		}
		// The GLB BIN chunk may carry up to 3 bytes of padding.
		if len(data) < buf.ByteLength {
			return fmt.Errorf("%w: buffer %d declares %d bytes, got %d", errBufferSizeMismatch, i, buf.ByteLength, len(data))
		}
		buf.data = data[:buf.ByteLength]
	}
	return nil
}

func (p *gltfParserImpl) Resolve(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		comma := strings.IndexByte(uri, ',')
		if comma < 0 || !strings.HasSuffix(uri[:comma], ";base64") {
			return nil, fmt.Errorf("%w: only base64 data URIs are supported", errInvalidBufferURI)
		}
		return base64.StdEncoding.DecodeString(uri[comma+1:])
	}
	if p.resolve == nil {
		return nil, fmt.Errorf("%w: external URI %q cannot be resolved", errInvalidBufferURI, uri)
	}
	return p.resolve(uri)
}

func (p *gltfParserImpl) ReadBufferView(viewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil || viewIndex < 0 || viewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", viewIndex)
	}
	view := doc.BufferViews[viewIndex]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d references missing buffer %d", viewIndex, view.Buffer)
	}
	data := doc.Buffers[view.Buffer].data
	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer %d", viewIndex, view.Buffer)
	}
	return data[view.ByteOffset:end], nil
}

// accessorElements resolves an accessor to its view bytes, element stride and the byte
// size of one component.
func (p *gltfParserImpl) accessorElements(accessorIndex int, components int) (gltfAccessor, []byte, int, int, error) {
	doc := p.document
	if doc == nil || accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return gltfAccessor{}, nil, 0, 0, fmt.Errorf("accessor %d out of range", accessorIndex)
	}
	acc := doc.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return acc, nil, 0, 0, fmt.Errorf("accessor %d: sparse accessors are not supported", accessorIndex)
	}
	if n, ok := gltfAccessorComponents[acc.Type]; !ok || n != components {
		return acc, nil, 0, 0, fmt.Errorf("accessor %d: expected %d components, type is %q", accessorIndex, components, acc.Type)
	}
	size := componentSize(acc.ComponentType)
	if size == 0 {
		return acc, nil, 0, 0, fmt.Errorf("accessor %d: unknown component type %d", accessorIndex, acc.ComponentType)
	}
	if acc.BufferView == nil {
		// No view: the accessor is all zeros.
		return acc, nil, components * size, size, nil
	}

	view, err := p.ReadBufferView(*acc.BufferView)
	if err != nil {
		return acc, nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, err)
	}
	stride := components * size
	if bv := doc.BufferViews[*acc.BufferView]; bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	if acc.Count > 0 {
		last := acc.ByteOffset + (acc.Count-1)*stride + components*size
		if acc.ByteOffset < 0 || last > len(view) {
			return acc, nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorOutOfRange)
		}
	}
	return acc, view[acc.ByteOffset:], stride, size, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex int, components int) ([]float32, error) {
	acc, data, stride, size, err := p.accessorElements(accessorIndex, components)
	if err != nil {
		return nil, err
	}
	out := make([]float32, acc.Count*components)
	if data == nil {
		return out, nil
	}
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for c := 0; c < components; c++ {
			out[i*components+c] = readComponent(data[base+c*size:], acc.ComponentType, acc.Normalized)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, data, stride, _, err := p.accessorElements(accessorIndex, 1)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := range out {
		b := data[i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(b[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("accessor %d: component type %d is not a valid index type", accessorIndex, acc.ComponentType)
		}
	}
	return out, nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	}
	return 0
}

// readComponent decodes one little-endian component as float32.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#animations (normalization table)
func readComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	case gltfComponentTypeUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltfComponentTypeShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case gltfComponentTypeUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}
