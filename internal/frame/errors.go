package frame

import "errors"

var (
	// ErrAssetLoad marks a failed load of a requested frame asset. The manager
	// recovers from it by serving the fallback frame.
	ErrAssetLoad = errors.New("frame asset load failed")

	// ErrAssetUnavailable means the fallback frame could not be loaded either.
	// It points at a missing or corrupted asset bundle.
	ErrAssetUnavailable = errors.New("frame asset unavailable")
)

// LoadStage identifies which attempt of a resolution failed.
type LoadStage string

const (
	StagePrimary  LoadStage = "primary"
	StageFallback LoadStage = "fallback"
)

// AssetError describes a failed asset load.
type AssetError struct {
	Stage LoadStage
	Path  string
	Err   error
}

func (e *AssetError) Error() string {
	msg := string(e.Stage) + " frame asset " + e.Path
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// Is matches ErrAssetLoad for primary failures and ErrAssetUnavailable for
// fallback failures, in addition to the wrapped error chain.
func (e *AssetError) Is(target error) bool {
	switch target {
	case ErrAssetLoad:
		return e.Stage == StagePrimary
	case ErrAssetUnavailable:
		return e.Stage == StageFallback
	}
	return false
}
