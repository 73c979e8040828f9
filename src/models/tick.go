package models

import "time"

// MTick represents one stored price observation and its derived last digit.
type MTick struct {
	Symbol    string    `json:"symbol"`
	Epoch     int64     `json:"epoch"`
	Price     float64   `json:"price"`
	Digit     int       `json:"digit"`
	PipSize   int       `json:"pip_size"`
	CreatedAt time.Time `json:"created_at"`
}
