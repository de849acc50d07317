package model

import "time"

// PropertyType classifies a rental property.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCondo      PropertyType = "condo"
	PropertyTypeTownhouse  PropertyType = "townhouse"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOther      PropertyType = "other"
)

// PropertyStatus reflects occupancy of a property.
type PropertyStatus string

const (
	PropertyStatusVacant      PropertyStatus = "vacant"
	PropertyStatusOccupied    PropertyStatus = "occupied"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusInactive    PropertyStatus = "inactive"
)

// IsValid checks if the property type is known.
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeCondo,
		PropertyTypeTownhouse, PropertyTypeCommercial, PropertyTypeOther:
		return true
	}
	return false
}

// IsValid checks if the property status is known.
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusVacant, PropertyStatusOccupied, PropertyStatusMaintenance, PropertyStatusInactive:
		return true
	}
	return false
}

// Property is a rentable unit owned by a landlord.
type Property struct {
	ID           string         `json:"id"`
	LandlordID   string         `json:"landlord_id"`
	Name         string         `json:"name"`
	AddressLine1 string         `json:"address_line1"`
	AddressLine2 string         `json:"address_line2,omitempty"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	PostalCode   string         `json:"postal_code"`
	PropertyType PropertyType   `json:"property_type"`
	Bedrooms     int            `json:"bedrooms"`
	Bathrooms    float64        `json:"bathrooms"`
	SquareFeet   int            `json:"square_feet"`
	RentCents    int64          `json:"rent_cents"`
	Status       PropertyStatus `json:"status"`
	Description  string         `json:"description,omitempty"`
	Amenities    []string       `json:"amenities"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    *time.Time     `json:"-"`
}
