package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/docscout/models"
	"github.com/use-agent/docscout/schedule"
)

const listingHTML = `<html><body>
<div class="row shadow-card">
  <div class="col-9 col-md-10">
    <a class="dr_profile_opened_from_listing" href="/doctors/lahore/dermatologist/dr-ayesha-khan?from=list#top">
      <h3>Dr. Ayesha   Khan</h3>
    </a>
    <picture><source media="(min-width: 600px)" srcset="//cdn.marham.pk/a.webp 1x, //cdn.marham.pk/a2.webp 2x"></picture>
    <p class="mb-0 text-sm">Dermatologist</p>
    <p class="text-sm">MBBS, FCPS (Dermatology)</p>
    <span>PMDC Verified</span>
  </div>
  <div class="row">
    <div class="col-4"><p>Reviews</p><p>1,245</p></div>
    <div class="col-4"><p>Experience</p><p>12 Yrs</p></div>
    <div class="col-4"><p>Satisfaction</p><p>98%</p></div>
  </div>
  <span class="chips">Acne</span><span class="chips"> </span><span class="chips-highlight">Hair Loss</span>
  <div class="product-card" data-hospitalname="Hameed Latif Hospital" data-hospitalcity="Lahore"
       data-hospitaladdress="14 Abu Bakr Block" data-amount="3000" data-hospitaltype="1">
    <p class="text-sm text-wrap">14 Abu Bakr Block, Garden Town</p>
  </div>
  <div class="product-card" data-hospitalname="Online Video Consultation" data-amount="2000" data-hospitaltype="2">
    <p class="text-sm">Available today</p>
  </div>
</div>
<div class="row shadow-card">
  <h3>Dr. No Offers</h3>
  <a class="text-blue" href="https://elsewhere.com/dr-x">profile</a>
  <img class="round-img" src="/img/x.png">
  <p class="text-sm">MBBS</p>
</div>
<ul class="pagination"><li class="next"><a href="?page=2">Next</a></li></ul>
</body></html>`

func listingContext() Context {
	return Context{
		PageURL:     "https://www.marham.pk/doctors/lahore/dermatologist",
		DefaultCity: "Lahore",
	}
}

func TestParseListing(t *testing.T) {
	page, err := ParseListing(listingHTML, listingContext())
	require.NoError(t, err)
	require.Len(t, page.Cards, 2)

	c := page.Cards[0]
	assert.Equal(t, "Dr. Ayesha Khan", c.Name)
	assert.Equal(t, "https://www.marham.pk/doctors/lahore/dermatologist/dr-ayesha-khan", c.ProfileURL)
	assert.Equal(t, "https://cdn.marham.pk/a.webp", c.ImageURL)
	assert.Equal(t, "Dermatologist", c.Specialization)
	assert.Equal(t, "MBBS, FCPS (Dermatology)", c.Qualification)
	assert.Equal(t, "1,245", c.Reviews)
	assert.Equal(t, "12 Yrs", c.Experience)
	assert.Equal(t, "98%", c.SatisfactionRate)
	assert.Equal(t, "Acne, Hair Loss", c.AreasOfInterest)
	assert.True(t, c.PMDCVerified)

	require.Len(t, c.Offers, 2)
	assert.Equal(t, models.Offer{
		HospitalName:     "Hameed Latif Hospital",
		HospitalCity:     "Lahore",
		HospitalAddress:  "14 Abu Bakr Block",
		Fee:              "3000",
		ConsultationType: models.ConsultHospital,
		AvailabilityNote: "14 Abu Bakr Block, Garden Town",
	}, c.Offers[0])
	assert.Equal(t, models.ConsultVideo, c.Offers[1].ConsultationType)
	assert.Equal(t, "Lahore", c.Offers[1].HospitalCity)

	other := page.Cards[1]
	assert.Empty(t, other.ProfileURL, "off-host profile links are dropped")
	assert.Equal(t, "https://www.marham.pk/img/x.png", other.ImageURL)
	assert.Empty(t, other.Offers)

	assert.Equal(t, "https://www.marham.pk/doctors/lahore/dermatologist?page=2", page.NextURL)
}

func TestParseListing_Empty(t *testing.T) {
	page, err := ParseListing(`<html><body><p>Just a moment...</p></body></html>`, listingContext())
	require.NoError(t, err)
	assert.Empty(t, page.Cards)
	assert.Empty(t, page.NextURL)
}

func TestPickSpecQual(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		textSm   []string
		wantSpec string
		wantQual string
	}{
		{"both present", "Cardiologist", []string{"Cardiologist", "MBBS, FCPS"}, "Cardiologist", "MBBS, FCPS"},
		{"lone element without specialization is qualification", "", []string{"MBBS"}, "", "MBBS"},
		{"lone element with specialization", "Cardiologist", []string{"Cardiologist"}, "Cardiologist", ""},
		{"nothing", "", nil, "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, qual := PickSpecQual(tc.spec, tc.textSm)
			assert.Equal(t, tc.wantSpec, spec)
			assert.Equal(t, tc.wantQual, qual)
		})
	}
}

func TestBuildCard_Metrics(t *testing.T) {
	card := BuildCard(RawCard{
		Name: "Dr. X",
		MetricBlocks: [][]string{
			{"Reviews", "7 Years"},
			{"95 %"},
		},
	}, listingContext())
	assert.Equal(t, "7 Years", card.Experience)
	assert.Equal(t, "95 %", card.SatisfactionRate)
	assert.Empty(t, card.Reviews)
}

func TestBuildOffer_Defaults(t *testing.T) {
	o := BuildOffer(RawOffer{Type: " 2 "}, "Multan")
	assert.Equal(t, "Unknown", o.HospitalName)
	assert.Equal(t, "Multan", o.HospitalCity)
	assert.True(t, o.IsVideo())

	o = BuildOffer(RawOffer{Name: "Video Clinic", Type: "1"}, "Multan")
	assert.True(t, o.IsVideo())
}

func TestRows(t *testing.T) {
	card := models.Card{
		Name:           "Dr. A",
		Specialization: "ENT Specialist",
		ProfileURL:     "https://www.marham.pk/doctors/lahore/ent-specialist/dr-a",
		Offers: []models.Offer{
			{HospitalName: "Hameed Latif Hospital", HospitalCity: "Lahore", Fee: "2500", AvailabilityNote: "Garden Town", ConsultationType: models.ConsultHospital},
			{HospitalName: "Online Video Consultation", HospitalCity: "Lahore", Fee: "1500", ConsultationType: models.ConsultVideo},
			{HospitalName: "Surgimed", HospitalCity: "Lahore", ConsultationType: models.ConsultHospital},
		},
	}
	sched := schedule.ProfileSchedule{{Title: "Hameed Latif Hospital Lahore", Hours: "Mon: 5-8"}}

	rows := Rows(card, sched, "https://www.marham.pk/doctors/lahore")
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, "Dr. A", r.Name)
		assert.Equal(t, "ENT Specialist", r.Specialization)
		assert.Equal(t, card.ProfileURL, r.ProfileURL)
		assert.Equal(t, "https://www.marham.pk/doctors/lahore", r.RawSourceURL)
	}
	assert.Equal(t, "Mon: 5-8", rows[0].AvailabilitySchedule)
	assert.Equal(t, "Garden Town", rows[0].CompleteAddress)
	assert.Empty(t, rows[2].AvailabilitySchedule)
	assert.Len(t, rows[0].Values(), len(models.RowHeader))
}

func TestRows_NoOffers(t *testing.T) {
	assert.Empty(t, Rows(models.Card{Name: "Dr. B"}, nil, "u"))
}

func TestDiscoverCities(t *testing.T) {
	html := `<html><body>
	<a href="/doctors/multan">Multan</a>
	<a href="https://www.marham.pk/doctors/karachi">Karachi</a>
	<a href="/doctors/lahore/">Lahore</a>
	<a href="/doctors/lahore/">Lahore</a>
	<a href="/doctors/lahore/dermatologist">Dermatologists in Lahore</a>
	<a href="/doctors/top-10">Top 10</a>
	<a href="/doctors/empty"> </a>
	<a href="/hospitals/lahore">Hospitals</a>
	</body></html>`

	cities, err := DiscoverCities(html, "https://www.marham.pk/doctors")
	require.NoError(t, err)
	assert.Equal(t, []models.City{
		{Name: "Karachi", URL: "https://www.marham.pk/doctors/karachi"},
		{Name: "Lahore", URL: "https://www.marham.pk/doctors/lahore/"},
		{Name: "Multan", URL: "https://www.marham.pk/doctors/multan"},
	}, cities)
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, "https://www.marham.pk/dr/a",
		CanonicalURL("//www.marham.pk/dr/a?x=1#y", "https://www.marham.pk/", "marham.pk"))
	assert.Empty(t, CanonicalURL("javascript:void(0)", "https://www.marham.pk/", "marham.pk"))
	assert.Empty(t, CanonicalURL("https://notmarham.pk/dr/a", "https://www.marham.pk/", "marham.pk"))
}

func TestLines(t *testing.T) {
	page, err := ParseListing(`<div class="row shadow-card"><h3>A<br>B</h3></div>`, listingContext())
	require.NoError(t, err)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "A B", page.Cards[0].Name)
}
