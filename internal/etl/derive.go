package etl

import (
	"fmt"
	"math"
	"time"
)

const minutesPerDay = 24 * 60

// Delay computes the delay in minutes for one trip from the scheduled
// departure and actual arrival times of day plus the stated travel time.
//
// Both times are combined on a common reference date; an arrival that is
// numerically earlier than the departure is treated as crossing midnight.
// Early and on-time arrivals both report 0; a delay is never negative.
func Delay(scheduled, actual string, travelMinutes int64) (int64, error) {
	if scheduled == "" || actual == "" {
		return 0, fmt.Errorf("missing time value")
	}

	schedMin, err := clockMinutes(scheduled)
	if err != nil {
		return 0, err
	}
	actualMin, err := clockMinutes(actual)
	if err != nil {
		return 0, err
	}

	span := actualMin - schedMin
	if span < 0 {
		span += minutesPerDay
	}

	delay := span - travelMinutes
	if delay > 0 {
		return delay, nil
	}
	return 0, nil
}

// clockMinutes parses an HH:MM time-of-day string into minutes since midnight.
func clockMinutes(s string) (int64, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("not an HH:MM time: %q", s)
	}
	return int64(t.Hour()*60 + t.Minute()), nil
}

// AverageSpeed computes the average speed in km/h from the trip distance and
// the stated travel time. A non-positive travel time yields 0 rather than a
// division anomaly; an infinite or NaN result degrades to null (nil) so it
// never reaches the archive.
func AverageSpeed(distanceKm float64, travelMinutes int64) *float64 {
	if travelMinutes <= 0 {
		zero := 0.0
		return &zero
	}
	v := distanceKm / (float64(travelMinutes) / 60)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}
