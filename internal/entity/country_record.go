package entity

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Row is one relational row, column name to value.
type Row map[string]any

// Clone returns a shallow copy so callers can add columns without touching the source.
func (r Row) Clone() Row {
	out := make(Row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CountryRecord is the nested document fanned out to the country tables.
type CountryRecord struct {
	Country             Row      `json:"country"`
	EntryRequirements   Row      `json:"entry_requirements,omitempty"`
	Vaccines            []Row    `json:"vaccines,omitempty"`
	CustomsRestrictions Row      `json:"customs_restrictions,omitempty"`
	EstimatedBudget     Row      `json:"estimated_budget,omitempty"`
	RealTimeAlerts      Row      `json:"real_time_alerts,omitempty"`
	EmergencyContacts   Row      `json:"emergency_contacts,omitempty"`
	Currency            Row      `json:"currency,omitempty"`
	PaymentMethods      Row      `json:"payment_methods,omitempty"`
	LanguagesSpoken     []string `json:"languages_spoken,omitempty"`
	DominantReligions   []string `json:"dominant_religions,omitempty"`
	LocalLawsCustoms    Row      `json:"local_laws_customs,omitempty"`
	SurvivalPhrasebook  []Row    `json:"survival_phrasebook,omitempty"`
	SimEsim             Row      `json:"sim_esim,omitempty"`
}

// CountryID returns the parent key carried by the country row.
func (c CountryRecord) CountryID() (string, error) {
	raw, ok := c.Country["id"]
	if !ok {
		return "", fmt.Errorf("country record has no id")
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", fmt.Errorf("country id must be a non-empty string, got %v", raw)
	}
	return id, nil
}

//go:embed sample_country.json
var sampleCountry []byte

// SampleCountryRecord returns the bundled record for the United States.
func SampleCountryRecord() (CountryRecord, error) {
	return DecodeCountryRecord(sampleCountry)
}

func DecodeCountryRecord(data []byte) (CountryRecord, error) {
	var rec CountryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return CountryRecord{}, fmt.Errorf("decode country record: %w", err)
	}
	return rec, nil
}
