package models

// Consultation types carried by an Offer.
const (
	ConsultHospital = "Hospital"
	ConsultVideo    = "Video Consultation"
)

// ListingPage is one parsed page of doctor cards. It is read once and discarded.
type ListingPage struct {
	URL     string
	Cards   []Card
	NextURL string // empty when the page has no next link
}

// Card is one doctor's summary entry on a listing page.
type Card struct {
	Name             string  `json:"name"`
	ProfileURL       string  `json:"profile_url"`
	ImageURL         string  `json:"image_url,omitempty"`
	Specialization   string  `json:"speciality"`
	Qualification    string  `json:"qualifications"`
	Experience       string  `json:"experience"`
	SatisfactionRate string  `json:"satisfaction"`
	Reviews          string  `json:"reviews"`
	AreasOfInterest  string  `json:"areas_of_interest"`
	PMDCVerified     bool    `json:"pmdc_verified"`
	Offers           []Offer `json:"offers"`
}

// Offer is a hospital, clinic or video-consultation option nested in a Card.
type Offer struct {
	HospitalName     string `json:"hospital_name"`
	HospitalCity     string `json:"hospital_city"`
	HospitalAddress  string `json:"hospital_address"`
	Fee              string `json:"fee"`
	ConsultationType string `json:"consultation_type"`
	AvailabilityNote string `json:"availability_note,omitempty"`
}

// IsVideo reports whether the offer is a video consultation.
func (o Offer) IsVideo() bool { return o.ConsultationType == ConsultVideo }

// Row is the unit of persistence: doctor fields, one offer, the matched
// schedule and the listing URL it came from.
//
// Column order is fixed; RowHeader lists it.
type Row struct {
	City                 string `csv:"city" json:"city"`
	Name                 string `csv:"name" json:"name"`
	Specialization       string `csv:"specialization" json:"specialization"`
	Qualification        string `csv:"qualification" json:"qualification"`
	Experience           string `csv:"experience" json:"experience"`
	SatisfactionRate     string `csv:"satisfaction_rate" json:"satisfaction_rate"`
	Reviews              string `csv:"reviews" json:"reviews"`
	AreasOfInterest      string `csv:"areas_of_interest" json:"areas_of_interest"`
	ConsultationType     string `csv:"consultation_type" json:"consultation_type"`
	HospitalName         string `csv:"hospital_name" json:"hospital_name"`
	HospitalAddress      string `csv:"hospital_address" json:"hospital_address"`
	HospitalCity         string `csv:"hospital_city" json:"hospital_city"`
	CompleteAddress      string `csv:"complete_address" json:"complete_address"`
	AvailabilitySchedule string `csv:"availability_schedule" json:"availability_schedule"`
	Fee                  string `csv:"fee" json:"fee"`
	ProfileURL           string `csv:"profile_url" json:"profile_url"`
	ImageURL             string `csv:"image_url" json:"image_url"`
	RawSourceURL         string `csv:"raw_source_url" json:"raw_source_url"`
}

// RowHeader is the fixed column order of the row store.
var RowHeader = []string{
	"city", "name", "specialization", "qualification", "experience",
	"satisfaction_rate", "reviews", "areas_of_interest", "consultation_type",
	"hospital_name", "hospital_address", "hospital_city", "complete_address",
	"availability_schedule", "fee", "profile_url", "image_url", "raw_source_url",
}

// Values returns the row's fields in RowHeader order.
func (r Row) Values() []any {
	return []any{
		r.City, r.Name, r.Specialization, r.Qualification, r.Experience,
		r.SatisfactionRate, r.Reviews, r.AreasOfInterest, r.ConsultationType,
		r.HospitalName, r.HospitalAddress, r.HospitalCity, r.CompleteAddress,
		r.AvailabilitySchedule, r.Fee, r.ProfileURL, r.ImageURL, r.RawSourceURL,
	}
}

// City is a discovered city listing root.
type City struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
