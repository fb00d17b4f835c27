package domain

import (
	"time"
)

// Place is a named city or tourist site that trips start or end at.
type Place struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Kind     string   `json:"kind"` // city | tourist
	Region   string   `json:"region,omitempty"`
	Distance *float64 `json:"distance_km,omitempty"` // computed field
}

// Booking is the read-only view of a ticket booking the simulator needs.
type Booking struct {
	ID            string    `json:"id"`
	PassengerName string    `json:"passenger_name"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureAt   time.Time `json:"departure_at"`
	Seat          int       `json:"seat"`
	Status        string    `json:"status"`
}

// Annotation is a labelled point for the map surface.
type Annotation struct {
	Kind     string   `json:"kind"` // origin | destination | vehicle
	Title    string   `json:"title"`
	Location GeoPoint `json:"location"`
}

// SimulationSnapshot is the observable state of one trip simulation.
type SimulationSnapshot struct {
	ID                string         `json:"id"`
	BookingID         string         `json:"booking_id,omitempty"`
	Origin            string         `json:"origin"`
	Destination       string         `json:"destination"`
	Progress          float64        `json:"progress"`
	Vehicle           GeoPoint       `json:"vehicle"`
	Running           bool           `json:"running"`
	Completed         bool           `json:"completed"`
	StartedAt         *time.Time     `json:"started_at,omitempty"`
	TotalDistance     string         `json:"total_distance"`
	TotalDistanceKm   float64        `json:"total_distance_km"`
	EstimatedDuration string         `json:"estimated_duration"`
	DistanceRemaining string         `json:"distance_remaining"`
	ETA               string         `json:"eta"`
	TimeRemaining     string         `json:"time_remaining"`
	SpinnerAngle      float64        `json:"spinner_angle"`
	Viewport          ViewportRegion `json:"viewport"`
}

// SimulationCompleted is emitted once when a simulation reaches its destination.
type SimulationCompleted struct {
	SimulationID    string    `json:"simulation_id"`
	BookingID       string    `json:"booking_id,omitempty"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
}

// SimulationRun is the persisted record of a finished simulation.
type SimulationRun struct {
	ID              string    `json:"id"`
	SimulationID    string    `json:"simulation_id"`
	BookingID       string    `json:"booking_id,omitempty"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// RatingRequest asks the app to offer the post-trip rating screen.
type RatingRequest struct {
	BookingID    string    `json:"booking_id"`
	SimulationID string    `json:"simulation_id"`
	Destination  string    `json:"destination"`
	StartedAt    time.Time `json:"started_at"`
	RequestedAt  time.Time `json:"requested_at"`
}
