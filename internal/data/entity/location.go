package entity

// Location is a user's serviceable address. Bookings nest under the first
// existing location for the user; when none exists a default one is
// auto-created during reconciliation.
type Location struct {
	BaseSimple
	UserID      string  `db:"user_id"`
	Lat         float64 `db:"lat"`
	Lng         float64 `db:"lng"`
	Address     string  `db:"address"`
	AutoCreated bool    `db:"auto_created"`
}

// Default address used when a user has no location on file.
const (
	DefaultLocationLat     = -33.918861
	DefaultLocationLng     = 18.4233
	DefaultLocationAddress = "Cape Town, South Africa"
)
