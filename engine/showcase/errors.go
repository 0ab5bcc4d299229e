package showcase

import "errors"

var (
	// ErrAssetLoad matches every AssetLoadFailure via errors.Is.
	ErrAssetLoad = errors.New("failed to load 3D model")
	// ErrLoadAlreadyIssued is returned by LoadAsset after the first call in a mount.
	ErrLoadAlreadyIssued = errors.New("asset load already issued for this mount")
	// ErrTornDown is returned by operations called after Teardown.
	ErrTornDown = errors.New("showcase torn down")
)

// AssetLoadFailure is the recoverable error stored when the asset cannot be fetched or decoded.
type AssetLoadFailure struct {
	// URL is the asset that failed.
	URL string
	// Cause is the underlying fetch or decode error; may be nil.
	Cause error
}

func (e *AssetLoadFailure) Error() string {
	if e.Cause == nil {
		return ErrAssetLoad.Error()
	}
	return ErrAssetLoad.Error() + ": " + e.Cause.Error()
}

func (e *AssetLoadFailure) Unwrap() error {
	return e.Cause
}

func (e *AssetLoadFailure) Is(target error) bool {
	return target == ErrAssetLoad
}
