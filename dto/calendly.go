package dto

// SyncStats are the counters one calendly sync run reports.
type SyncStats struct {
	EventsProcessed int `json:"events_processed"`
	BookingsFound   int `json:"bookings_found"`
	LeadsMatched    int `json:"leads_matched"`
	LeadsUpdated    int `json:"leads_updated"`
	NewBookings     int `json:"new_bookings"`
}

// BookingAnalytics aggregates conversion outcomes across all bookings.
type BookingAnalytics struct {
	TotalBookings         int                `json:"total_bookings"`
	MatchedBookings       int                `json:"matched_bookings"`
	ByPersona             map[string]int     `json:"by_persona"`
	ByVariant             map[string]int     `json:"by_variant"`
	ByTech                map[string]int     `json:"by_tech"`
	OverallConversionRate float64            `json:"overall_conversion_rate,omitempty"`
}
