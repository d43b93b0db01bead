package models

import "time"

type Bus struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	NumberPlate  string    `json:"numberPlate" db:"number_plate"`
	TotalSeats   int       `json:"totalSeats" db:"total_seats"`
	OperatorName *string   `json:"operatorName,omitempty" db:"operator_name"`
	Category     *string   `json:"category,omitempty" db:"category"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
