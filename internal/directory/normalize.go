package directory

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/unicode/norm"

	"github.com/prospectly/leadgen-cli/internal/model"
	"github.com/prospectly/leadgen-cli/pkg/apify"
)

// defaultRegion is the region hint for parsing phone numbers that carry no
// country prefix.
const defaultRegion = "US"

// Normalize maps a raw provider listing onto the canonical lead shape. It
// is pure and defensive: missing optional fields stay absent, never become
// sentinel strings.
func Normalize(l apify.Listing) model.Lead {
	lead := model.Lead{
		PlaceID:      strings.TrimSpace(l.PlaceID),
		Name:         cleanName(l.Name),
		Address:      strings.TrimSpace(l.Address),
		Phone:        normalizePhone(l.Phone),
		Website:      strings.TrimSpace(l.Website),
		Category:     strings.Join(l.Categories, ", "),
		Rating:       l.Rating,
		ReviewsCount: l.ReviewsCount,
		Status:       model.LeadStatusNew,
	}
	if l.Location != nil {
		lat, lng := l.Location.Lat, l.Location.Lng
		lead.Latitude = &lat
		lead.Longitude = &lng
	}
	return lead
}

// cleanName trims and NFC-normalizes a business name; scraped names arrive
// with decomposed accents and stray whitespace.
func cleanName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// normalizePhone formats a scraped phone number as E.164 when it parses;
// otherwise the trimmed raw value is kept (best-effort, never dropped).
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
