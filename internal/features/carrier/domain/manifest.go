package domain

// PackageReference is the carrier identifier of a parcel ("refExterneArticle").
type PackageReference string

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the position is usable for routing.
// The carrier sends 0,0 for addresses it could not geocode.
func (c Coordinates) Valid() bool {
	if c.Latitude == 0 && c.Longitude == 0 {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// ManifestEntry is one parcel of a driver's tour.
type ManifestEntry struct {
	Reference     PackageReference `json:"reference"`
	ArticleID     string           `json:"article_id,omitempty"`
	RecipientName string           `json:"recipient_name"`
	AddressLine1  string           `json:"address_line1"`
	AddressLine2  string           `json:"address_line2,omitempty"`
	PostalCode    string           `json:"postal_code"`
	City          string           `json:"city"`
	Coordinates   *Coordinates     `json:"coordinates,omitempty"`
	Status        string           `json:"status"`
	// SequenceHint is the carrier's planned visiting order.
	SequenceHint int    `json:"sequence_hint"`
	Priority     int    `json:"priority,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// References returns the package references of a manifest, in manifest order.
func References(entries []ManifestEntry) []PackageReference {
	refs := make([]PackageReference, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, e.Reference)
	}
	return refs
}
