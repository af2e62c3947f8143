package models

// Address is a named geographic point stored in the address table.
type Address struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsDeleted bool    `json:"is_deleted"`
}

// NewAddress holds the fields of an address that has not been stored yet.
type NewAddress struct {
	Name      string
	Latitude  float64
	Longitude float64
	IsDeleted bool
}

// AddressPatch is a partial update. A nil field leaves the stored value unchanged.
type AddressPatch struct {
	Name      *string
	Latitude  *float64
	Longitude *float64
	IsDeleted *bool
}

// IsEmpty reports whether the patch sets no field at all.
func (p AddressPatch) IsEmpty() bool {
	return p.Name == nil && p.Latitude == nil && p.Longitude == nil && p.IsDeleted == nil
}

// AddressWithDistance is an address annotated with its distance from a search origin.
type AddressWithDistance struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Coordinates  [2]float64 `json:"coordinates"`
	Distance     float64    `json:"distance"`
	DistanceUnit string     `json:"distance_unit"`
}
