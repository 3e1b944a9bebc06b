package model

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Criteria describes the ideal-customer profile a lead is scored against.
type Criteria struct {
	// OurBusiness names the company running the campaign, so the model can
	// judge fit from its perspective.
	OurBusiness string `yaml:"our_business" json:"our_business"`

	// Description is free text describing the target customer.
	Description string `yaml:"description" json:"description"`

	Industries  []string `yaml:"industries" json:"industries,omitempty"`
	Services    []string `yaml:"services" json:"services,omitempty"`
	CompanySize string   `yaml:"company_size" json:"company_size,omitempty"`
	MinRating   float64  `yaml:"min_rating" json:"min_rating,omitempty"`
}

// LoadCriteria reads an ideal-customer profile from a YAML file.
func LoadCriteria(path string) (*Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "criteria: read %s", path)
	}

	var c Criteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "criteria: parse %s", path)
	}
	if c.Description == "" {
		return nil, eris.Errorf("criteria: %s has no description", path)
	}
	return &c, nil
}

// Describe renders the criteria as prompt text.
func (c Criteria) Describe() string {
	var b strings.Builder
	b.WriteString(c.Description)
	if len(c.Industries) > 0 {
		fmt.Fprintf(&b, "\nTarget industries: %s", strings.Join(c.Industries, ", "))
	}
	if len(c.Services) > 0 {
		fmt.Fprintf(&b, "\nServices of interest: %s", strings.Join(c.Services, ", "))
	}
	if c.CompanySize != "" {
		fmt.Fprintf(&b, "\nPreferred company size: %s", c.CompanySize)
	}
	if c.MinRating > 0 {
		fmt.Fprintf(&b, "\nMinimum acceptable rating: %.1f", c.MinRating)
	}
	return b.String()
}
