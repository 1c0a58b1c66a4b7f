package entity

// ReservationRequest is the raw booking form as submitted. Every field is optional until
// validated; nothing of this type is ever handed to storage.
type ReservationRequest struct {
	Name     *string
	Email    *string
	Package  *string
	Date     *string
	TimeSlot *string
}

// ValidatedReservation is a fully checked booking request
type ValidatedReservation struct {
	CustomerName  string
	CustomerEmail string
	Package       PackageCode
	Date          Date
	TimeSlot      TimeSlotCode
}
