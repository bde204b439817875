package model

// Promotion is published on the topic exchange under
// <marketing-root>.<destination_id>. The booking side never stores it;
// the marketing notifier only forwards it to subscribers.
type Promotion struct {
	ID            string  `json:"id"`
	DestinationID int     `json:"destination_id"`
	BoardingDate  string  `json:"boarding_date"`
	CreatedAt     string  `json:"created_at"`
	NewCost       float64 `json:"new_cost"`
}
