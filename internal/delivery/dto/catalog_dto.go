package dto

import "github.com/shopspring/decimal"

type PackageResponse struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type TimeSlotResponse struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type CatalogResponse struct {
	Packages  []PackageResponse  `json:"packages"`
	TimeSlots []TimeSlotResponse `json:"time_slots"`
}

// AvailabilityResponse is advisory. Degraded is set when occupancy could not be read;
// Occupied is then empty and the final word belongs to the booking write.
type AvailabilityResponse struct {
	Date      string   `json:"date"`
	Occupied  []string `json:"occupied"`
	Available []string `json:"available"`
	Degraded  bool     `json:"degraded,omitempty"`
}
