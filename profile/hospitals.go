package profile

import (
	"html"
	"regexp"
	"strings"

	"github.com/use-agent/docscout/models"
)

var (
	bookingRe  = regexp.MustCompile(`data-hospitalname="([^"]+)"[^>]*data-hospitalcity="([^"]+)"[^>]*data-hospitaladdress="([^"]+)"[^>]*data-amount="([^"]+)"`)
	sectionRe  = regexp.MustCompile(`<h3[^>]*class="text-bold text-underline"[^>]*>`)
	sectionHdr = regexp.MustCompile(`^([^<]+)</h3>`)
	areaRe     = regexp.MustCompile(`(?i)<p[^>]*>Area:\s*([^<]+)</p>`)
	feeRe      = regexp.MustCompile(`<p[^>]*>Rs\.\s*([0-9,]+)`)
	timingRe   = regexp.MustCompile(`<tr[^>]*class="text-sm"[^>]*>\s*<td[^>]*class="text-bold text-blue"[^>]*>([^<]+)</td>\s*<td[^>]*>([^<]+)</td>\s*</tr>`)
)

const videoBooking = "Video Consultation"

// practices is the reconciled set of practice locations, keyed by
// lower-cased name and kept in first-seen order.
type practices struct {
	list         []models.Hospital
	index        map[string]int
	videoFee     string
	videoTimings []models.Timing
}

// hospitals merges the booking data attributes with the prose practice
// sections. Booking entries come first; prose sections fill blank fields of
// known practices, add new ones, and are the only source of timings.
func hospitals(doc string) *practices {
	p := &practices{index: make(map[string]int)}
	p.readBookings(doc)
	p.readSections(doc)
	return p
}

// ── 1. Booking data attributes ──

func (p *practices) readBookings(doc string) {
	for _, m := range bookingRe.FindAllStringSubmatch(doc, -1) {
		name := strings.TrimSpace(html.UnescapeString(m[1]))
		amount := strings.TrimSpace(m[4])

		if name == videoBooking {
			if p.videoFee == "" && amount != "" {
				p.videoFee = rupees(amount)
			}
			continue
		}
		key := strings.ToLower(name)
		if _, ok := p.index[key]; ok || name == "" {
			continue
		}
		h := models.Hospital{
			Name:    name,
			City:    strings.TrimSpace(html.UnescapeString(m[2])),
			Address: strings.TrimSpace(html.UnescapeString(m[3])),
			Timings: []models.Timing{},
		}
		if amount != "" {
			h.Fee = rupees(amount)
		}
		p.add(key, h)
	}
}

// ── 2. Prose practice sections ──

func (p *practices) readSections(doc string) {
	locs := sectionRe.FindAllStringIndex(doc, -1)
	for i, loc := range locs {
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		sec := doc[loc[1]:end]

		hdr := sectionHdr.FindStringSubmatch(sec)
		if hdr == nil {
			continue
		}
		name := strings.TrimSpace(html.UnescapeString(hdr[1]))
		if name == "" {
			continue
		}
		timings := sectionTimings(sec)

		lower := strings.ToLower(name)
		if strings.Contains(lower, "video") || strings.Contains(lower, "online") {
			if p.videoFee == "" {
				if m := feeRe.FindStringSubmatch(sec); m != nil {
					p.videoFee = "Rs. " + m[1]
				}
			}
			if len(timings) > 0 {
				p.videoTimings = timings
			}
			continue
		}

		var areaCity, fee string
		if m := areaRe.FindStringSubmatch(sec); m != nil {
			areaCity = strings.TrimSpace(html.UnescapeString(m[1]))
		}
		if m := feeRe.FindStringSubmatch(sec); m != nil {
			fee = "Rs. " + m[1]
		}
		area, city := splitAreaCity(areaCity)

		if idx, ok := p.index[lower]; ok {
			h := &p.list[idx]
			if h.Area == "" {
				h.Area = area
			}
			if h.City == "" {
				h.City = city
			}
			if h.Fee == "" {
				h.Fee = fee
			}
			if len(timings) > 0 {
				h.Timings = timings
			}
			continue
		}
		if timings == nil {
			timings = []models.Timing{}
		}
		p.add(lower, models.Hospital{
			Name:    name,
			Area:    area,
			City:    city,
			Address: areaCity,
			Fee:     fee,
			Timings: timings,
		})
	}
}

func (p *practices) add(key string, h models.Hospital) {
	p.index[key] = len(p.list)
	p.list = append(p.list, h)
}

func sectionTimings(sec string) []models.Timing {
	var out []models.Timing
	for _, m := range timingRe.FindAllStringSubmatch(sec, -1) {
		out = append(out, models.Timing{
			Day:  strings.TrimSpace(m[1]),
			Time: strings.TrimSpace(m[2]),
		})
	}
	return out
}

// splitAreaCity splits "Gulberg, Lahore" into its area and city. A value
// without a comma is taken as the area.
func splitAreaCity(s string) (area, city string) {
	if s == "" {
		return "", ""
	}
	parts := strings.Split(s, ",")
	area = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		city = strings.TrimSpace(parts[1])
	}
	return area, city
}

// rupees formats a booking amount such as "2,500 " as "Rs. 2500".
func rupees(amount string) string {
	amount = strings.NewReplacer(",", "", " ", "").Replace(amount)
	return "Rs. " + amount
}
