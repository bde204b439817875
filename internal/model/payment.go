package model

import "encoding/json"

// Transaction is the payload signed by the payment authority. The field
// set must stay in sync with the signer: the signature covers the
// canonical serialization of exactly this object.
type Transaction struct {
	ID                 string  `json:"id"`
	BookingID          string  `json:"booking_id"`
	Status             string  `json:"status"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	CardLast4          string  `json:"card_last4"`
	TransactionID      string  `json:"transaction_id"`
	NumberOfPassengers int     `json:"number_of_passengers"`
	NumberOfCabins     int     `json:"number_of_cabins"`
}

// PaymentEvent is the envelope published on the payment accepted/rejected
// routing keys. Transaction is kept raw so the verifier can reproduce the
// signed bytes without depending on Go struct field ordering.
type PaymentEvent struct {
	Transaction json.RawMessage `json:"transaction"`
	Signature   string          `json:"signature"` // base64
}

// PaymentLinkRequest is the request/reply body sent to the payments
// microservice when a booking is created.
type PaymentLinkRequest struct {
	BookingID     string  `json:"booking_id"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  string  `json:"customer_name"`
}

// PaymentLinkResponse carries the identifiers the booking keeps from the
// payment-link exchange.
type PaymentLinkResponse struct {
	PaymentID   string `json:"payment_id"`
	PaymentLink string `json:"payment_link"`
}
