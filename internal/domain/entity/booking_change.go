package entity

import "time"

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeRemoved ChangeType = "removed"
)

// BookingChange signals that the booking set changed. It deliberately carries no booking
// data: receivers re-run their own scoped query.
type BookingChange struct {
	Type  ChangeType `json:"type"`
	Table string     `json:"table"`
	At    time.Time  `json:"at"`
}

func NewBookingChange(changeType ChangeType, at time.Time) BookingChange {
	return BookingChange{Type: changeType, Table: Booking{}.TableName(), At: at}
}
