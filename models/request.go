package models

// SearchRequest is the payload for POST /api/v1/search.
type SearchRequest struct {
	// Query is free text such as "dermatologist in i8 islamabad". Required.
	Query string `json:"query" binding:"required"`

	// MaxResults caps the number of candidate URLs collected from search
	// providers before validation. Default: 8.
	MaxResults int `json:"max_results,omitempty" binding:"omitempty,min=1,max=30"`
}

// Defaults applies default values to unset fields.
func (r *SearchRequest) Defaults() {
	if r.MaxResults == 0 {
		r.MaxResults = 8
	}
}

// ListingRequest is the payload for POST /api/v1/listing.
type ListingRequest struct {
	// URL is a listing page on the directory. Required.
	URL string `json:"url" binding:"required,url"`

	// Limit caps the number of doctor cards returned. Default: 20.
	Limit int `json:"limit,omitempty" binding:"omitempty,min=1,max=100"`
}

// Defaults applies default values to unset fields.
func (r *ListingRequest) Defaults() {
	if r.Limit == 0 {
		r.Limit = 20
	}
}

// ProfileRequest is the payload for POST /api/v1/profile.
type ProfileRequest struct {
	// URL is a doctor's profile page. Required.
	URL string `json:"url" binding:"required,url"`
}

// ReviewsRequest is the payload for POST /api/v1/reviews.
type ReviewsRequest struct {
	// URL is a doctor's profile page. Required.
	URL string `json:"url" binding:"required,url"`

	// Count is the exact number of reviews returned (padded when the page
	// has fewer). Default: 5.
	Count int `json:"count,omitempty" binding:"omitempty,min=1,max=50"`

	// Summarize requests an LLM summary. Default: true.
	Summarize *bool `json:"summarize,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ReviewsRequest) Defaults() {
	if r.Count == 0 {
		r.Count = 5
	}
	if r.Summarize == nil {
		t := true
		r.Summarize = &t
	}
}
