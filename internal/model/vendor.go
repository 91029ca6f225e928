package model

// Vendor represents a canteen stall.
type Vendor struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	ImageURL     string `json:"image_url"`
}

// Admin represents an operator with read access to every record.
type Admin struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
