package dto

import (
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// PropertyRequest is the body of POST, PUT and PATCH on /properties.
// Absent fields are left untouched on update.
type PropertyRequest struct {
	LandlordID   *string               `json:"landlord_id"`
	Name         *string               `json:"name" validate:"omitnil,max=200"`
	AddressLine1 *string               `json:"address_line1" validate:"omitnil,max=200"`
	AddressLine2 *string               `json:"address_line2" validate:"omitnil,max=200"`
	City         *string               `json:"city" validate:"omitnil,max=100"`
	State        *string               `json:"state" validate:"omitnil,max=100"`
	PostalCode   *string               `json:"postal_code" validate:"omitnil,max=20"`
	PropertyType *model.PropertyType   `json:"property_type" validate:"omitnil,oneof=apartment house condo townhouse commercial other"`
	Bedrooms     *int                  `json:"bedrooms" validate:"omitnil,gte=0"`
	Bathrooms    *float64              `json:"bathrooms" validate:"omitnil,gte=0"`
	SquareFeet   *int                  `json:"square_feet" validate:"omitnil,gte=0"`
	RentCents    *int64                `json:"rent_cents" validate:"omitnil,gte=0"`
	Status       *model.PropertyStatus `json:"status" validate:"omitnil,oneof=vacant occupied maintenance inactive"`
	Description  *string               `json:"description" validate:"omitnil,max=5000"`
	Amenities    []string              `json:"amenities" validate:"max=50"`
}

// ToInput converts the request to a service input.
func (r PropertyRequest) ToInput() service.PropertyInput {
	return service.PropertyInput{
		LandlordID:   r.LandlordID,
		Name:         r.Name,
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		PropertyType: r.PropertyType,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		SquareFeet:   r.SquareFeet,
		RentCents:    r.RentCents,
		Status:       r.Status,
		Description:  r.Description,
		Amenities:    r.Amenities,
	}
}
