package models

// Vaccination is one vaccination event stored on an animal.
type Vaccination struct {
	Date        string `json:"date"`
	Vaccine     string `json:"vaccine"`
	NextDueDate string `json:"nextDueDate"`
	Notes       string `json:"notes"`
	Cost        Number `json:"cost"`
}
