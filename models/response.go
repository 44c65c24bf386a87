package models

// SearchResponse is the response for POST /api/v1/search.
type SearchResponse struct {
	Success    bool         `json:"success"`
	Intent     QueryIntent  `json:"intent"`
	Candidates []Candidate  `json:"candidates"`
	Timing     TimingInfo   `json:"timing"`
	Error      *ErrorDetail `json:"error,omitempty"`
}

// DoctorSummary is a listing card as presented by the query pipeline:
// numbered, hospitals only, fees formatted.
type DoctorSummary struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Specialization  string           `json:"speciality"`
	Qualification   string           `json:"qualifications"`
	PMDCVerified    bool             `json:"pmdc_verified"`
	Reviews         string           `json:"reviews"`
	Experience      string           `json:"experience"`
	Satisfaction    string           `json:"satisfaction"`
	ProfileURL      string           `json:"profile_url"`
	Hospitals       []ListedHospital `json:"hospitals"`
	AreasOfInterest []string         `json:"areas_of_interest"`
}

// ListedHospital is a non-video offer as shown in a DoctorSummary.
type ListedHospital struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
	Fee     string `json:"fee"`
}

// ListingResponse is the response for POST /api/v1/listing.
type ListingResponse struct {
	Success bool            `json:"success"`
	URL     string          `json:"url"`
	Doctors []DoctorSummary `json:"doctors"`
	NextURL string          `json:"next_url,omitempty"`
	Timing  TimingInfo      `json:"timing"`
	Error   *ErrorDetail    `json:"error,omitempty"`
}

// ProfileResponse is the response for POST /api/v1/profile.
type ProfileResponse struct {
	Success bool         `json:"success"`
	Profile *Profile     `json:"profile,omitempty"`
	Timing  TimingInfo   `json:"timing"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ReviewsResponse is the response for POST /api/v1/reviews.
type ReviewsResponse struct {
	Success bool           `json:"success"`
	Summary *ReviewSummary `json:"summary,omitempty"`
	Timing  TimingInfo     `json:"timing"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorResponse is the body written by middleware rejections.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo reports how long a request took.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
