package postgres

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/advisory-service/internal/usecase"
)

func TestCountrySchemaCoversRelayTables(t *testing.T) {
	children := []string{
		"entry_requirements", "vaccines", "customs_restrictions", "estimated_budget",
		"real_time_alerts", "emergency_contacts", "currency", "payment_methods",
		"languages_spoken", "dominant_religions", "local_laws_customs",
		"survival_phrasebook", "sim_esim",
	}

	assert.Contains(t, CountrySchema, "CREATE TABLE IF NOT EXISTS countries (")
	for _, table := range children {
		assert.True(t, usecase.IsChildTable(table), table)
		assert.Contains(t, CountrySchema, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (", table))
	}
}

func TestCountrySchemaStoresStringListsAsArrays(t *testing.T) {
	for _, column := range []string{"prohibited_items", "main_rules", "providers"} {
		assert.Regexp(t, column+`\s+TEXT\[\]`, CountrySchema)
	}
}
