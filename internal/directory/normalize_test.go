package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospectly/leadgen-cli/internal/model"
	"github.com/prospectly/leadgen-cli/pkg/apify"
)

func TestNormalize(t *testing.T) {
	rating := 4.2
	lead := Normalize(apify.Listing{
		Name:         "  Joe's   Plumbing  ",
		Address:      " 1 Main St ",
		Phone:        "(415) 555-0100",
		Website:      " https://joesplumbing.example ",
		Categories:   []string{"Plumber", "Contractor"},
		Rating:       &rating,
		ReviewsCount: 12,
		Location:     &apify.GeoPoint{Lat: 37.77, Lng: -122.42},
		PlaceID:      " place-1 ",
	})

	assert.Equal(t, "Joe's Plumbing", lead.Name)
	assert.Equal(t, "1 Main St", lead.Address)
	assert.Equal(t, "+14155550100", lead.Phone)
	assert.Equal(t, "https://joesplumbing.example", lead.Website)
	assert.Equal(t, "Plumber, Contractor", lead.Category)
	assert.Equal(t, "place-1", lead.PlaceID)
	assert.Equal(t, model.LeadStatusNew, lead.Status)
	require.NotNil(t, lead.Rating)
	assert.Equal(t, 4.2, *lead.Rating)
	require.NotNil(t, lead.Latitude)
	assert.Equal(t, 37.77, *lead.Latitude)
	require.NotNil(t, lead.Longitude)
	assert.Equal(t, -122.42, *lead.Longitude)
}

func TestNormalize_MissingOptionalFields(t *testing.T) {
	lead := Normalize(apify.Listing{
		Name:    "Bare Minimum LLC",
		PlaceID: "place-2",
	})

	assert.Equal(t, "Bare Minimum LLC", lead.Name)
	assert.Empty(t, lead.Address)
	assert.Empty(t, lead.Phone)
	assert.Empty(t, lead.Website)
	assert.Empty(t, lead.Category)
	assert.Nil(t, lead.Rating)
	assert.Nil(t, lead.Latitude)
	assert.Nil(t, lead.Longitude)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"(415) 555-0100", "+14155550100"},
		{"415-555-0100", "+14155550100"},
		{"+44 20 7946 0958", "+442079460958"},
		// Unparseable numbers keep their trimmed raw form.
		{" call us! ", "call us!"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePhone(tt.raw), "raw=%q", tt.raw)
	}
}

func TestCleanName_NFC(t *testing.T) {
	// "é" as e + combining acute composes to a single rune.
	assert.Equal(t, "Café Léon", cleanName("Café  Léon"))
}
