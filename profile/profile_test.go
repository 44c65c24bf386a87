package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/docscout/models"
)

const profileHTML = `<html><body>
<h1 class="mb-0">Dr. Ayesha Khan</h1>
<span class="badge">PMDC Verified</span>
<p class="mt-10"><strong class="text-sm">Dermatologist</strong></p>
<p class="text-sm mb-0">MBBS, FCPS (Dermatology) &amp; Cosmetology</p>
<div><i class="fa fa-thumbs-up"></i> 312 Satisfied Patients</div>
<p class="mb-0 text-sm">Experience</p>
<p class="text-bold text-sm">12 Yrs</p>
<p class="mb-0 text-sm">Wait Time</p>
<p class="text-bold">10 - 15 mins</p>
<p class="mb-0 text-sm">Avg. Time to Patient</p>
<p class="text-bold">12 mins</p>
<div class="col-2 text-right">4.9/5</div>
<a href="tel:04238900939">Call</a>
<span class="chips-highlight">Acne</span><span class="chips-highlight">Hair Loss</span><span class="chips-highlight">ab</span>

<div data-hospitalname="Hameed Latif Hospital" data-hospitalcity="Lahore" data-hospitaladdress="14 Abu Bakr Block" data-amount="3,000"></div>
<div data-hospitalname="Video Consultation" data-hospitalcity="Lahore" data-hospitaladdress="Online" data-amount="2,000"></div>

<h3 class="text-bold text-underline">Hameed Latif Hospital</h3>
<p>Area: Garden Town, Lahore</p>
<p>Rs. 2,500</p>
<table>
<tr class="text-sm"><td class="text-bold text-blue">Monday</td><td>05:00 PM - 08:00 PM</td></tr>
<tr class="text-sm"><td class="text-bold text-blue">Tuesday</td><td>05:00 PM - 08:00 PM</td></tr>
</table>
<h3 class="text-bold text-underline">Skin Clinic</h3>
<p>Area: DHA Phase 5, Lahore</p>
<p>Rs. 1,500</p>
<h3 class="text-bold text-underline">Online Video Consultation</h3>
<p>Rs. 1,800</p>
<table><tr class="text-sm"><td class="text-bold text-blue">Saturday</td><td>10:00 AM - 12:00 PM</td></tr></table>

<section><h2>Services</h2><a href="/s/1">Acne Treatment</a><a href="/s/2">Map</a><a href="/s/3">https://x</a></section>
<h2>Professional Statement by Dr. Ayesha</h2>
<div><p>Dr. Ayesha Khan is a <b>consultant</b> dermatologist with
   twelve years of experience treating skin, hair and nail conditions.</p></div>
</body></html>`

func TestParse(t *testing.T) {
	p := Parse(profileHTML, "https://www.marham.pk/doctors/lahore/dermatologist/dr-ayesha-khan")

	assert.Equal(t, "Ayesha Khan", p.Name)
	assert.True(t, p.PMDCVerified)
	assert.Equal(t, "Dermatologist", p.Specialization)
	assert.Equal(t, "MBBS, FCPS (Dermatology) & Cosmetology", p.Qualification)
	assert.Equal(t, "312", p.ReviewsCount)
	assert.Equal(t, "12 Yrs", p.Experience)
	assert.Equal(t, "10 - 15 mins", p.WaitTime)
	assert.Equal(t, "12 mins", p.AvgTimeToPatient)
	assert.Equal(t, "4.9/5", p.Rating)
	assert.Equal(t, "04238900939", p.Phone)
	assert.Equal(t, []string{"Acne", "Hair Loss"}, p.AreasOfInterest)
	assert.Equal(t, []string{"Acne Treatment"}, p.Services)
	assert.True(t, strings.HasPrefix(p.Statement, "Dr. Ayesha Khan is a consultant dermatologist with twelve"))
}

func TestParse_Hospitals(t *testing.T) {
	p := Parse(profileHTML, "")

	require.Len(t, p.Hospitals, 2)
	assert.Equal(t, models.Hospital{
		Name:    "Hameed Latif Hospital",
		Area:    "Garden Town",
		City:    "Lahore",
		Address: "14 Abu Bakr Block",
		Fee:     "Rs. 3000",
		Timings: []models.Timing{
			{Day: "Monday", Time: "05:00 PM - 08:00 PM"},
			{Day: "Tuesday", Time: "05:00 PM - 08:00 PM"},
		},
	}, p.Hospitals[0], "booking values win, prose fills blanks and timings")

	assert.Equal(t, models.Hospital{
		Name:    "Skin Clinic",
		Area:    "DHA Phase 5",
		City:    "Lahore",
		Address: "DHA Phase 5, Lahore",
		Fee:     "Rs. 1,500",
		Timings: []models.Timing{},
	}, p.Hospitals[1])

	assert.Equal(t, "Rs. 2000", p.VideoConsultationFee)
	assert.Equal(t, []models.Timing{{Day: "Saturday", Time: "10:00 AM - 12:00 PM"}}, p.VideoConsultationTime)
}

func TestParse_Empty(t *testing.T) {
	p := Parse(`<html><body><p>Just a moment...</p></body></html>`, "u")
	assert.Equal(t, "u", p.ProfileURL)
	assert.Empty(t, p.Name)
	assert.False(t, p.PMDCVerified)
	assert.NotNil(t, p.Hospitals)
	assert.NotNil(t, p.VideoConsultationTime)
	assert.Empty(t, p.Services)
}

func TestParse_FallbackStrategies(t *testing.T) {
	doc := `<h1 class="title">Prof. Imran Ali</h1>
<p class="mt-10"><strong>Cardiology</strong></p>
<p class="text-sm">MBBS, MRCP</p>
<h2 class="x"> 48 Reviews</h2>
<span>15 Years Experience</span>
<span>Mobile 0300-1234567</span>`

	p := Parse(doc, "")
	assert.Equal(t, "Imran Ali", p.Name)
	assert.Equal(t, "Cardiology", p.Specialization)
	assert.Equal(t, "MBBS, MRCP", p.Qualification)
	assert.Equal(t, "48", p.ReviewsCount)
	assert.Equal(t, "03001234567", p.Phone)
}

func TestParse_QualificationNeedsDegree(t *testing.T) {
	p := Parse(`<p class="text-sm">Consultant</p><p class="text-sm mb-0">Diploma in Dermatology</p>`, "")
	assert.Empty(t, p.Qualification)
}

func TestParse_QualificationIsCaseSensitive(t *testing.T) {
	p := Parse(`<p class="text-sm">Treats skin problems</p><p class="text-sm">MBBS, FCPS</p>`, "")
	assert.Equal(t, "MBBS, FCPS", p.Qualification)

	p = Parse(`<p class="text-sm mb-0">Hamdard University Hospital</p><p class="text-sm">MBBS</p>`, "")
	assert.Equal(t, "MBBS", p.Qualification)
}

func TestParse_StatsIgnoreCase(t *testing.T) {
	doc := `<p class="mb-0 text-sm">Wait time</p>
<p class="text-bold">10 mins</p>
<p class="mb-0 text-sm">avg. time to patient</p>
<p class="text-bold">
  20 mins</p>
<DIV class="col-2 text-right">4.7/5</DIV>`

	p := Parse(doc, "")
	assert.Equal(t, "10 mins", p.WaitTime)
	assert.Equal(t, "20 mins", p.AvgTimeToPatient)
	assert.Equal(t, "4.7/5", p.Rating)
}

func TestField_Window(t *testing.T) {
	doc := strings.Repeat(" ", headerWindow) + `<p class="text-sm">MBBS</p>`
	assert.Empty(t, qualificationField.read(doc), "markup past the window is ignored")
	assert.Equal(t, "MBBS", qualificationField.read(strings.TrimSpace(doc)))
}

func TestStatement_Bounds(t *testing.T) {
	short := `<h2>Professional Statement</h2><div><p>Too short to keep.</p></div>`
	assert.Empty(t, statement(short))

	long := `<h2>Professional Statement</h2><div><p>` + strings.Repeat("word ", 200) + `</p></div>`
	assert.Len(t, []rune(statement(long)), maxStatement)
}

func TestSplitAreaCity(t *testing.T) {
	a, c := splitAreaCity("Gulberg III, Lahore")
	assert.Equal(t, "Gulberg III", a)
	assert.Equal(t, "Lahore", c)

	a, c = splitAreaCity("DHA Phase 5, Karachi, Sindh")
	assert.Equal(t, "DHA Phase 5", a)
	assert.Equal(t, "Karachi", c, "second part is the city")

	a, c = splitAreaCity("Saddar")
	assert.Equal(t, "Saddar", a)
	assert.Empty(t, c)
}
