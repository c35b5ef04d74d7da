package service

import (
	"context"

	"github.com/paulmach/orb"
)

// Geocoder resolves coordinates to a human-readable address, best-effort.
// Callers must tolerate an error or an empty result.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, pt orb.Point) (string, error)
}
