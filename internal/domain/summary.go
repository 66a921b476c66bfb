// README: Admin aggregate computed by the store.
package domain

type Summary struct {
	TotalPeople          int `json:"totalPeople"`
	TotalCars            int `json:"totalCars"`
	TotalSeats           int `json:"totalSeats"`
	UnassignedPassengers int `json:"unassignedPassengers"`
}
