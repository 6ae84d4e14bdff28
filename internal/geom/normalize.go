// Package geom maps raw geographic point sequences onto the shared planar
// world space all tracks are rendered in.
package geom

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/routeblend/routeblend/internal/types"
)

// Scale converts degree deltas to world units. At this value a city-scale
// track spans tens of thousands of world units.
const Scale = 100000.0

const earthRadiusMeters = 6371000.0

// Normalize converts a raw stream into a Track anchored at its own start
// point: the first point becomes (0,0), x grows east and y grows down-screen
// for increasing longitude/decreasing latitude. Longitude and latitude
// degrees are scaled identically, without cosine-latitude compensation; that
// distortion is accepted so every track stays anchored to a plain linear
// mapping.
//
// Streams with fewer than two points produce no track (ok=false).
func Normalize(activity types.Activity, raw []types.RawPoint) (types.Track, bool) {
	if len(raw) < 2 {
		return types.Track{}, false
	}

	lat0, lon0 := raw[0].Lat, raw[0].Lon
	points := make([]types.Point, len(raw))
	for i, p := range raw {
		points[i] = types.Point{
			X: (p.Lon - lon0) * Scale,
			Y: -(p.Lat - lat0) * Scale,
		}
	}

	if activity.Distance == 0 {
		activity.Distance = streamDistance(raw)
	}

	return types.Track{Activity: activity, Points: points}, true
}

// streamDistance returns the cumulative track distance in meters, preferring
// the stream's own distance channel and falling back to great-circle arcs.
// Display metadata only; geometry never depends on it.
func streamDistance(raw []types.RawPoint) float64 {
	if last := raw[len(raw)-1].Distance; last != nil {
		return *last
	}

	var total float64
	for i := 1; i < len(raw); i++ {
		a := s2.LatLngFromDegrees(raw[i-1].Lat, raw[i-1].Lon)
		b := s2.LatLngFromDegrees(raw[i].Lat, raw[i].Lon)
		total += a.Distance(b).Radians() * earthRadiusMeters
	}
	return total
}

// SimplifyTrack reduces a track's point count with Douglas-Peucker at the
// given world-unit tolerance. Tolerance <= 0 leaves the track untouched.
// The first point is always preserved, so the (0,0) origin anchor survives.
func SimplifyTrack(track types.Track, tolerance float64) types.Track {
	if tolerance <= 0 || len(track.Points) < 3 {
		return track
	}

	ls := make(orb.LineString, len(track.Points))
	for i, p := range track.Points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	ls = simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)

	points := make([]types.Point, len(ls))
	for i, p := range ls {
		points[i] = types.Point{X: p[0], Y: p[1]}
	}
	track.Points = points
	return track
}
