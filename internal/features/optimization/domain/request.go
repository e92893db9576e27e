package domain

// Point is a WGS84 position.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LonLat returns the point in provider order.
func (p Point) LonLat() [2]float64 {
	return [2]float64{p.Longitude, p.Latitude}
}

// Parcel is a package to route. Parcels without a location cannot be submitted.
type Parcel struct {
	Reference string `json:"reference"`
	Location  *Point `json:"location,omitempty"`
}

// Request is an optimization problem in Mapbox Optimization v2 form.
type Request struct {
	Version   int        `json:"version"`
	Locations []Location `json:"locations"`
	Vehicles  []Vehicle  `json:"vehicles"`
	Services  []Service  `json:"services"`
	Options   *Options   `json:"options,omitempty"`
}

// Location is a named coordinate pair, [longitude, latitude].
type Location struct {
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Vehicle starts and ends at named locations.
type Vehicle struct {
	Name          string `json:"name"`
	StartLocation string `json:"start_location"`
	EndLocation   string `json:"end_location"`
}

// Service is a stop at a location, Duration in seconds.
type Service struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Duration int    `json:"duration"`
}

// Options tune the solver.
type Options struct {
	Objectives []string `json:"objectives,omitempty"`
}
