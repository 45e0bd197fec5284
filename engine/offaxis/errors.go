package offaxis

import "errors"

var (
	// ErrInvalidPlaneGeometry reports coincident or collinear plane corners.
	ErrInvalidPlaneGeometry = errors.New("invalid plane geometry")
	// ErrEyeBehindPlane reports a non-positive eye to plane distance after
	// orientation correction.
	ErrEyeBehindPlane = errors.New("eye behind projection plane")
	// ErrDegenerateFrustum reports frustum bounds that collapsed below
	// DegenerateEpsilon.
	ErrDegenerateFrustum = errors.New("degenerate frustum")
	// ErrInvalidClipRange reports near <= 0 or far <= near.
	ErrInvalidClipRange = errors.New("invalid clip range")
)
