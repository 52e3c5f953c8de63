package strava

import "time"

// Activity is a Strava activity summary from the API
type Activity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     time.Time `json:"start_date_local"`
	Distance           float64   `json:"distance"`    // meters
	MovingTime         int       `json:"moving_time"` // seconds
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	AverageWatts       float64   `json:"average_watts"`
	WeightedAvgWatts   float64   `json:"weighted_average_watts"`
	AverageHeartrate   float64   `json:"average_heartrate"`
	SufferScore        float64   `json:"suffer_score"`
	DeviceWatts        bool      `json:"device_watts"`
}

// sportTypes folds Strava's sport subtypes into the canonical set
var sportTypes = map[string]string{
	"Ride":             "Ride",
	"VirtualRide":      "VirtualRide",
	"EBikeRide":        "Ride",
	"GravelRide":       "Ride",
	"MountainBikeRide": "Ride",
	"Handcycle":        "Ride",
	"Run":              "Run",
	"VirtualRun":       "VirtualRun",
	"TrailRun":         "Run",
	"Swim":             "Swim",
	"Walk":             "Walk",
	"Hike":             "Hike",
	"NordicSki":        "NordicSki",
	"AlpineSki":        "AlpineSki",
	"Rowing":           "Rowing",
	"Kayaking":         "Kayaking",
	"WeightTraining":   "WeightTraining",
	"Yoga":             "Yoga",
}

func mapSportType(t string) string {
	if mapped, ok := sportTypes[t]; ok {
		return mapped
	}
	if t == "" {
		return "Other"
	}
	return t
}
