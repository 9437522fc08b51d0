package types

// Coordinates is a WGS84 point attached to a listing address.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
