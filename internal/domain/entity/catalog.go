package entity

import (
	"github.com/shopspring/decimal"
)

// PackageCode identifies a bookable massage package
type PackageCode string

const (
	PackageSwedish      PackageCode = "swedish"
	PackageHotStone     PackageCode = "hotstone"
	PackageAromatherapy PackageCode = "aromatherapy"
)

// TimeSlotCode identifies one of the fixed daily appointment slots
type TimeSlotCode string

type Package struct {
	Code  PackageCode     `json:"code"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type TimeSlot struct {
	Code  TimeSlotCode `json:"code"`
	Label string       `json:"label"`
	Hour  int          `json:"hour"`
}

var packages = []Package{
	{Code: PackageSwedish, Name: "Swedish Relaxation", Price: decimal.NewFromInt(95)},
	{Code: PackageHotStone, Name: "Hot Stone Therapy", Price: decimal.NewFromInt(145)},
	{Code: PackageAromatherapy, Name: "Aromatherapy Bliss", Price: decimal.NewFromInt(120)},
}

// Display order; SlotIndex relies on it.
var timeSlots = []TimeSlot{
	{Code: "9am", Label: "9:00 AM", Hour: 9},
	{Code: "10am", Label: "10:00 AM", Hour: 10},
	{Code: "11am", Label: "11:00 AM", Hour: 11},
	{Code: "12pm", Label: "12:00 PM", Hour: 12},
	{Code: "1pm", Label: "1:00 PM", Hour: 13},
	{Code: "2pm", Label: "2:00 PM", Hour: 14},
	{Code: "3pm", Label: "3:00 PM", Hour: 15},
	{Code: "4pm", Label: "4:00 PM", Hour: 16},
	{Code: "5pm", Label: "5:00 PM", Hour: 17},
}

// Packages returns a copy of the package catalog
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// TimeSlots returns a copy of the daily slots in display order
func TimeSlots() []TimeSlot {
	out := make([]TimeSlot, len(timeSlots))
	copy(out, timeSlots)
	return out
}

func LookupPackage(code string) (Package, bool) {
	for _, p := range packages {
		if string(p.Code) == code {
			return p, true
		}
	}
	return Package{}, false
}

func LookupTimeSlot(code string) (TimeSlot, bool) {
	for _, ts := range timeSlots {
		if string(ts.Code) == code {
			return ts, true
		}
	}
	return TimeSlot{}, false
}

// SlotIndex returns the display position of code, or -1 if it is not in the catalog
func SlotIndex(code TimeSlotCode) int {
	for i, ts := range timeSlots {
		if ts.Code == code {
			return i
		}
	}
	return -1
}

// checkoutPrices holds checkout amounts in cents, keyed by service then duration in minutes.
var checkoutPrices = map[string]map[int]int64{
	"thai":    {30: 6000, 60: 10000},
	"swedish": {30: 5000, 60: 9000},
}

// CheckoutPrice looks up the amount in cents charged at checkout
func CheckoutPrice(service string, durationMinutes int) (int64, bool) {
	byDuration, ok := checkoutPrices[service]
	if !ok {
		return 0, false
	}
	amount, ok := byDuration[durationMinutes]
	return amount, ok
}
