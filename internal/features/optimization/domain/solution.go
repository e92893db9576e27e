package domain

// StopTypeService marks a delivery stop; start and end markers use other types.
const StopTypeService = "service"

// Solution is the provider's answer to a Request.
type Solution struct {
	Routes  []Route `json:"routes"`
	Dropped Dropped `json:"dropped"`
}

// Route is the stop sequence of one vehicle.
type Route struct {
	Vehicle string `json:"vehicle"`
	Stops   []Stop `json:"stops"`
}

// Stop is one visit in a route.
type Stop struct {
	Type     string   `json:"type"`
	Location string   `json:"location"`
	ETA      string   `json:"eta"`
	Odometer float64  `json:"odometer"`
	Wait     float64  `json:"wait,omitempty"`
	Duration float64  `json:"duration,omitempty"`
	Services []string `json:"services,omitempty"`
}

// Dropped lists what the provider could not route.
type Dropped struct {
	Services  []string `json:"services"`
	Shipments []string `json:"shipments"`
}

// Submission is the outcome of submitting a Request: Immediate or Pending.
type Submission interface {
	submission()
}

// Immediate carries a solution returned synchronously.
type Immediate struct {
	Solution *Solution
}

// Pending carries the id of a solution still being computed.
type Pending struct {
	ID string
}

func (Immediate) submission() {}
func (Pending) submission()   {}

// OptimizedStop places one parcel in the visiting order.
type OptimizedStop struct {
	Reference   string `json:"reference"`
	ServiceName string `json:"service"`
	// ETA is the provider's estimated arrival, verbatim.
	ETA string `json:"eta"`
	// Order is 1-based.
	Order int `json:"order"`
}

// Result is the visiting order plus the parcels that could not be routed.
type Result struct {
	Stops    []OptimizedStop `json:"stops"`
	Unrouted []string        `json:"unrouted"`
}
