package showcase

// State is the asset load state of one mount.
type State int

const (
	// StateLoading is the initial state; the scene holds no asset.
	StateLoading State = iota
	// StateReady means the asset is attached and its clips are playing.
	StateReady
	// StateFailed means the load failed; the scene stays empty for the rest of the mount.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
