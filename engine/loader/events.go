package loader

// LoadEvent is one step of an asset load: Loading, Ready or Failed. A load sequence
// yields zero or more Loading events and ends with exactly one Ready or Failed.
type LoadEvent interface {
	loadEvent()
}

// Loading reports download progress.
type Loading struct {
	// Progress is the fraction of bytes read in [0,1], or negative when the total
	// size is unknown.
	Progress float64
}

// Ready carries the imported asset. The receiver owns it and must Dispose it.
type Ready struct {
	Asset *Asset
}

// Failed carries the reason a load did not produce an asset.
type Failed struct {
	Err error
}

func (Loading) loadEvent() {}
func (Ready) loadEvent()   {}
func (Failed) loadEvent()  {}
