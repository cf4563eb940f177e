package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// DirectoryStats is the main response for the monitor API.
type DirectoryStats struct {
	Status        string `json:"status"` // "healthy", "idle"
	TotalUsers    int64  `json:"totalUsers"`
	Professionals int64  `json:"professionals"`
	Clients       int64  `json:"clients"`
	TotalReviews  int64  `json:"totalReviews"`
}
