// package animator plays keyframe animation clips on scene graph nodes. A Mixer is bound
// to the root of a loaded asset; each clip gets an Action that advances with Mixer.Update
// and writes sampled translations, rotations and scales into the target nodes.
package animator

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// TrackPath is the node property a track animates.
type TrackPath int

const (
	PathTranslation TrackPath = iota
	PathRotation
	PathScale
)

// Components returns the number of floats per keyframe value: 4 for rotations
// (x, y, z, w quaternions) and 3 otherwise.
func (p TrackPath) Components() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	// InterpolationLinear lerps vectors and slerps rotations.
	InterpolationLinear Interpolation = iota
	// InterpolationStep holds each key's value until the next key.
	InterpolationStep
)

// Track is the keyframe data for one property of one node.
type Track struct {
	// Target is the ID of the animated node.
	Target uuid.UUID
	// Path is the animated property.
	Path TrackPath
	// Interpolation is the sampling mode.
	Interpolation Interpolation
	// Times holds ascending key times in seconds.
	Times []float32
	// Values holds Path.Components() floats per key.
	Values []float32
}

// Clip is a named set of tracks played together.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []Track
}

// NewClip creates a clip whose duration is the latest key time across its tracks.
// Tracks without keys, or whose value count does not match their key count, are dropped.
//
// Parameters:
//   - name: the clip name
//   - tracks: the tracks
//
// Returns:
//   - *Clip: the clip
func NewClip(name string, tracks []Track) *Clip {
	c := &Clip{Name: name}
	for _, t := range tracks {
		if len(t.Times) == 0 || len(t.Values) != len(t.Times)*t.Path.Components() {
			continue
		}
		c.Tracks = append(c.Tracks, t)
		c.Duration = max(c.Duration, t.Times[len(t.Times)-1])
	}
	return c
}

// sampleVec3 returns the track's translation or scale at time t.
func (t *Track) sampleVec3(at float32) mgl32.Vec3 {
	i0, i1, alpha := t.locate(at)
	a := mgl32.Vec3{t.Values[i0*3], t.Values[i0*3+1], t.Values[i0*3+2]}
	if i0 == i1 {
		return a
	}
	b := mgl32.Vec3{t.Values[i1*3], t.Values[i1*3+1], t.Values[i1*3+2]}
	return a.Add(b.Sub(a).Mul(alpha))
}

// sampleQuat returns the track's rotation at time t, taking the shorter arc between keys.
func (t *Track) sampleQuat(at float32) mgl32.Quat {
	i0, i1, alpha := t.locate(at)
	a := t.quatAt(i0)
	if i0 == i1 {
		return a
	}
	b := t.quatAt(i1)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, alpha).Normalize()
}

func (t *Track) quatAt(i int) mgl32.Quat {
	v := t.Values[i*4 : i*4+4]
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// locate finds the keys surrounding at. Before the first key and after the last it
// returns the same index twice. Step interpolation always returns the earlier key.
func (t *Track) locate(at float32) (int, int, float32) {
	n := len(t.Times)
	next, _ := slices.BinarySearchFunc(t.Times, at, func(k, target float32) int {
		if k <= target {
			return -1
		}
		return 1
	})
	switch {
	case next == 0:
		return 0, 0, 0
	case next >= n:
		return n - 1, n - 1, 0
	}
	prev := next - 1
	if t.Interpolation == InterpolationStep {
		return prev, prev, 0
	}
	span := t.Times[next] - t.Times[prev]
	if span <= 0 {
		return next, next, 0
	}
	return prev, next, (at - t.Times[prev]) / span
}
