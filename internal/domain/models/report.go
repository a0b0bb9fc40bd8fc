package models

import "time"

// DailyReport aggregates one day of herd milk production and spending.
type DailyReport struct {
	Date          time.Time `bson:"date" json:"date"`
	MilkLiters    float64   `bson:"milk_liters" json:"milk_liters"`
	MorningLiters float64   `bson:"morning_liters" json:"morning_liters"`
	EveningLiters float64   `bson:"evening_liters" json:"evening_liters"`
	AnimalsMilked int       `bson:"animals_milked" json:"animals_milked"`
	Expenses      float64   `bson:"expenses" json:"expenses"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
