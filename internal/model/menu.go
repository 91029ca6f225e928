package model

// DefaultPrepMinutes is used when an item's prep time cannot be found.
const DefaultPrepMinutes = 5

// MenuItem represents something a vendor sells.
type MenuItem struct {
	ID          int64  `json:"id"`
	VendorID    int64  `json:"vendor_id"`
	Name        string `json:"item_name"`
	Price       int    `json:"price"`
	PrepMinutes int    `json:"avg_prep_time"`
	ImageURL    string `json:"image_url"`
	Available   bool   `json:"is_active"`
}
