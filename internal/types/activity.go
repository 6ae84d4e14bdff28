package types

import "time"

// RawPoint is a single sample from an activity stream as delivered by the
// upstream API. Time and Distance are optional stream channels.
type RawPoint struct {
	Lat      float64
	Lon      float64
	Time     *time.Time
	Distance *float64
}

// Activity holds the descriptive metadata of one imported activity.
// It is used for display and filtering only, never for geometry.
type Activity struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	StartTime     time.Time `json:"start_time"`
	Distance      float64   `json:"distance"`             // meters
	MovingTime    int       `json:"moving_time"`          // seconds
	ElapsedTime   int       `json:"elapsed_time"`         // seconds
	ElevationGain float64   `json:"total_elevation_gain"` // meters
}
