package track

import "errors"

// ErrInvalidTrackData is returned by Build for unusable control point input.
var ErrInvalidTrackData = errors.New("invalid track data")
