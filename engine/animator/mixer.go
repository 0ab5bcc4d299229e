package animator

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-showcase/engine/scene"
	"github.com/google/uuid"
)

// Mixer drives the actions of one animated subtree.
// Thread-safe for concurrent access.
type Mixer interface {
	// Root returns the node the mixer is bound to.
	Root() scene.Node

	// ClipAction returns the action for clip, creating it on first use. Track targets are
	// resolved against the nodes under Root at that time; tracks whose target is missing
	// are ignored.
	//
	// Parameters:
	//   - clip: the clip to play
	//
	// Returns:
	//   - Action: the clip's action, stopped until Play is called
	ClipAction(clip *Clip) Action

	// Actions returns every action created so far.
	Actions() []Action

	// Update advances every running action by dt seconds and applies the sampled poses.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Time returns the total time the mixer has been advanced.
	Time() float32

	// StopAll stops every action.
	StopAll()
}

// Action is the playback state of one clip within a Mixer.
type Action interface {
	// Clip returns the played clip.
	Clip() *Clip

	// Play starts or resumes playback.
	Play() Action

	// Stop halts playback and rewinds to the start.
	Stop() Action

	// SetLoop controls whether playback wraps at the end of the clip. Actions loop by default.
	SetLoop(loop bool) Action

	// Loop reports whether playback wraps.
	Loop() bool

	// SetTimeScale multiplies the time passed to Update. Negative values play backwards.
	SetTimeScale(scale float32) Action

	// IsRunning reports whether the action is playing.
	IsRunning() bool

	// Time returns the local playback time in seconds.
	Time() float32
}

type boundTrack struct {
	track *Track
	node  scene.Node
}

type mixerImpl struct {
	mu      *sync.Mutex
	root    scene.Node
	actions []*actionImpl
	byClip  map[*Clip]*actionImpl
	time    float32
}

type actionImpl struct {
	mixer     *mixerImpl
	clip      *Clip
	bound     []boundTrack
	running   bool
	loop      bool
	timeScale float32
	time      float32
}

var (
	_ Mixer  = &mixerImpl{}
	_ Action = &actionImpl{}
)

// NewMixer binds a mixer to root.
//
// Parameters:
//   - root: the top of the animated subtree
//
// Returns:
//   - Mixer: the mixer
func NewMixer(root scene.Node) Mixer {
	return &mixerImpl{
		mu:     &sync.Mutex{},
		root:   root,
		byClip: make(map[*Clip]*actionImpl),
	}
}

func (m *mixerImpl) Root() scene.Node {
	return m.root
}

func (m *mixerImpl) ClipAction(clip *Clip) Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byClip[clip]; ok {
		return a
	}

	nodes := make(map[uuid.UUID]scene.Node)
	if m.root != nil {
		m.root.Traverse(func(n scene.Node) bool {
			nodes[n.ID()] = n
			return true
		})
	}

	a := &actionImpl{mixer: m, clip: clip, loop: true, timeScale: 1}
	for i := range clip.Tracks {
		if n, ok := nodes[clip.Tracks[i].Target]; ok {
			a.bound = append(a.bound, boundTrack{track: &clip.Tracks[i], node: n})
		}
	}
	m.byClip[clip] = a
	m.actions = append(m.actions, a)
	return a
}

func (m *mixerImpl) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Action, len(m.actions))
	for i, a := range m.actions {
		out[i] = a
	}
	return out
}

// Update applies actions in creation order, so a later action overrides an earlier one
// that animates the same property.
func (m *mixerImpl) Update(dt float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.time += dt
	for _, a := range m.actions {
		if !a.running {
			continue
		}
		a.advance(dt)
		a.apply()
	}
}

func (m *mixerImpl) Time() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.time
}

func (m *mixerImpl) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		a.running = false
		a.time = 0
	}
}

func (a *actionImpl) Clip() *Clip {
	return a.clip
}

func (a *actionImpl) Play() Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.running = true
	return a
}

func (a *actionImpl) Stop() Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.running = false
	a.time = 0
	return a
}

func (a *actionImpl) SetLoop(loop bool) Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.loop = loop
	return a
}

func (a *actionImpl) Loop() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.loop
}

func (a *actionImpl) SetTimeScale(scale float32) Action {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	a.timeScale = scale
	return a
}

func (a *actionImpl) IsRunning() bool {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.running
}

func (a *actionImpl) Time() float32 {
	a.mixer.mu.Lock()
	defer a.mixer.mu.Unlock()
	return a.time
}

// advance moves local time forward. Looping actions wrap into [0, duration); others clamp
// at the ends, stop, and keep their final pose.
// Caller must hold the mixer mutex.
func (a *actionImpl) advance(dt float32) {
	a.time += dt * a.timeScale
	d := a.clip.Duration
	if d <= 0 {
		a.time = 0
		return
	}
	if a.loop {
		a.time = float32(math.Mod(float64(a.time), float64(d)))
		if a.time < 0 {
			a.time += d
		}
		return
	}
	switch {
	case a.timeScale >= 0 && a.time >= d:
		a.time = d
		a.running = false
	case a.timeScale < 0 && a.time <= 0:
		a.time = 0
		a.running = false
	}
}

// apply writes the sampled pose into the bound nodes.
// Caller must hold the mixer mutex.
func (a *actionImpl) apply() {
	for _, b := range a.bound {
		switch b.track.Path {
		case PathTranslation:
			v := b.track.sampleVec3(a.time)
			b.node.SetPosition(v[0], v[1], v[2])
		case PathScale:
			v := b.track.sampleVec3(a.time)
			b.node.SetScale(v[0], v[1], v[2])
		case PathRotation:
			b.node.SetQuaternion(b.track.sampleQuat(a.time))
		}
	}
}
