package models

// ServiceItem is a service the customer put in the cart.
// Immutable once selected; the duration drives slot filtering.
type ServiceItem struct {
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unitPrice"`
	DurationMinutes int     `json:"durationMinutes"`
}

// ParticipantTag identifies a group-booking member. Absent for individual
// bookings (the authenticated account is the implicit single participant).
type ParticipantTag struct {
	MemberName     string `json:"memberName"`
	MemberCategory string `json:"memberCategory"`
}

// ContactInfo is the contact block attached to appointment creation requests.
type ContactInfo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}
