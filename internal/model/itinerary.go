package model

// Itinerary mirrors the document served by the itinerary microservice.
// The booking side only reads it: cabin cost feeds the total cost
// calculation and available cabins gate booking creation.
type Itinerary struct {
	ID              int      `json:"id"`
	Destination     string   `json:"destination"`
	Origin          string   `json:"origin"`
	ShipName        string   `json:"ship_name"`
	ReturnPort      string   `json:"return_port"`
	PlacesVisited   []string `json:"places_visited"`
	NumberOfNights  int      `json:"number_of_nights"`
	CabinCost       float64  `json:"cabin_cost"`
	CabinCapacity   int      `json:"cabin_capacity"`
	TripContinent   string   `json:"trip_continent"`
	Date            string   `json:"date"`
	AvailableCabins int      `json:"available_cabins"`
}

// ItineraryFilter carries the optional query parameters forwarded to the
// itinerary service when listing itineraries.
type ItineraryFilter struct {
	Origin      string
	Destination string
	Date        string
	MinCabins   int
	Continent   string
}
