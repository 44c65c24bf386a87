package models

// Timing is one weekday slot of a practice location.
type Timing struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Hospital is one practice location on a doctor's profile, reconciled from
// the booking data attributes and the prose practice-address sections.
type Hospital struct {
	Name    string   `json:"name"`
	Area    string   `json:"area,omitempty"`
	City    string   `json:"city"`
	Address string   `json:"address"`
	Fee     string   `json:"fee"`
	Timings []Timing `json:"timings"`
}

// Profile is the full detail of one doctor.
type Profile struct {
	ProfileURL            string     `json:"profile_url"`
	Name                  string     `json:"name"`
	Specialization        string     `json:"speciality"`
	Qualification         string     `json:"qualifications"`
	PMDCVerified          bool       `json:"pmdc_verified"`
	ReviewsCount          string     `json:"reviews_count"`
	Experience            string     `json:"experience"`
	SatisfactionRate      string     `json:"satisfaction"`
	WaitTime              string     `json:"wait_time"`
	AvgTimeToPatient      string     `json:"avg_time_to_patient"`
	Rating                string     `json:"patient_satisfaction_rating"`
	Hospitals             []Hospital `json:"hospitals"`
	AreasOfInterest       []string   `json:"areas_of_interest"`
	Phone                 string     `json:"phone"`
	VideoConsultationFee  string     `json:"video_consultation_fee"`
	VideoConsultationTime []Timing   `json:"video_consultation_timings"`
	Services              []string   `json:"services"`
	Statement             string     `json:"professional_statement"`
}

// Placeholder values for reviews that could not be parsed.
const (
	AnonymousReviewer  = "Anonymous"
	RatingUnavailable  = "N/A"
	ReviewUnavailable  = "Review content not available"
	NoReviewsSummary   = "No reviews available for summary."
	NoReviewsAvailable = "No reviews available"
)

// Review is one patient review block.
type Review struct {
	PatientName string   `json:"patient_name"`
	Rating      string   `json:"rating"`
	Text        string   `json:"review_text"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
}

// PlaceholderReview is the entry used to pad short review lists.
func PlaceholderReview() Review {
	return Review{
		PatientName: AnonymousReviewer,
		Rating:      RatingUnavailable,
		Text:        ReviewUnavailable,
		Tags:        []string{},
	}
}

// IsPlaceholder reports whether r is a padding entry.
func (r Review) IsPlaceholder() bool {
	return r.PatientName == AnonymousReviewer && r.Text == ReviewUnavailable && r.Date == ""
}

// ReviewSummary bundles parsed reviews with their summaries.
type ReviewSummary struct {
	DoctorURL    string   `json:"doctor_url"`
	TotalShown   int      `json:"total_reviews_shown"`
	Reviews      []Review `json:"reviews"`
	LLMSummary   string   `json:"llm_summary"`
	BasicSummary string   `json:"basic_summary"`
}
