package domain

// PackageDetail is the tracking detail of a single parcel.
type PackageDetail struct {
	Reference      PackageReference `json:"reference"`
	Barcode        string           `json:"barcode,omitempty"`
	FullAddress    string           `json:"full_address,omitempty"`
	PostalCode     string           `json:"postal_code,omitempty"`
	City           string           `json:"city,omitempty"`
	Country        string           `json:"country,omitempty"`
	Coordinates    *Coordinates     `json:"coordinates,omitempty"`
	Physical       *PhysicalData    `json:"physical,omitempty"`
	DeliveryWindow *DeliveryWindow  `json:"delivery_window,omitempty"`
	Contact        *Contact         `json:"contact,omitempty"`
	Instructions   string           `json:"instructions,omitempty"`
	Comments       string           `json:"comments,omitempty"`
	History        []HistoryEvent   `json:"history,omitempty"`
}

// PhysicalData holds weight, size and declared value.
type PhysicalData struct {
	Weight     *float64    `json:"weight,omitempty"`
	WeightUnit string      `json:"weight_unit,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	Value      *float64    `json:"value,omitempty"`
	Currency   string      `json:"currency,omitempty"`
}

// Dimensions of a parcel.
type Dimensions struct {
	Length *float64 `json:"length,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

// DeliveryWindow is the recipient's preferred delivery slot.
type DeliveryWindow struct {
	Start string   `json:"start,omitempty"`
	End   string   `json:"end,omitempty"`
	Days  []string `json:"days,omitempty"`
}

// Contact is the recipient contact.
type Contact struct {
	LastName  string `json:"last_name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// HistoryEvent is one tracking event.
type HistoryEvent struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	Place       string `json:"place,omitempty"`
}

// DetailResult is the outcome of one detail lookup: either Detail or Failure is set.
type DetailResult struct {
	Detail  *PackageDetail `json:"detail,omitempty"`
	Failure string         `json:"failure,omitempty"`
}

// OK reports whether the lookup produced a detail.
func (r DetailResult) OK() bool {
	return r.Detail != nil && r.Failure == ""
}

// DetailSuccess wraps a fetched detail.
func DetailSuccess(d *PackageDetail) DetailResult {
	return DetailResult{Detail: d}
}

// DetailFailure wraps a per-item failure reason.
func DetailFailure(reason string) DetailResult {
	return DetailResult{Failure: reason}
}
