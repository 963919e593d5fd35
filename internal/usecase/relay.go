package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/pkg/metrics"
)

// ErrNoRowsReturned marks an insert the backend accepted without returning the written row.
var ErrNoRowsReturned = errors.New("insert returned no data")

const countriesTable = "countries"

// InsertOutcome is the result of one row sent to one table.
type InsertOutcome struct {
	Table string
	Row   entity.Row
	OK    bool
	Err   error
}

// Report lists every insert attempted for a record, in the order they were issued.
type Report struct {
	CountryID string
	Outcomes  []InsertOutcome
}

// Succeeded counts the inserts that returned data.
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK {
			n++
		}
	}
	return n
}

// Failed returns the outcomes that did not succeed.
func (r Report) Failed() []InsertOutcome {
	var out []InsertOutcome
	for _, o := range r.Outcomes {
		if !o.OK {
			out = append(out, o)
		}
	}
	return out
}

// Relay fans a CountryRecord out to the country tables.
type Relay interface {
	Insert(ctx context.Context, record entity.CountryRecord) Report
}

type relayUseCase struct {
	writer repository.TableWriter
	logger *zap.Logger
}

// NewRelay creates a new instance of the relay use case.
func NewRelay(writer repository.TableWriter, logger *zap.Logger) Relay {
	metrics.Init()
	return &relayUseCase{writer: writer, logger: logger}
}

// childGroup is one child table and the rows the record carries for it.
type childGroup struct {
	table string
	rows  []entity.Row
}

func childGroups(rec entity.CountryRecord) []childGroup {
	one := func(r entity.Row) []entity.Row {
		if r == nil {
			return nil
		}
		return []entity.Row{r}
	}
	wrap := func(column string, values []string) []entity.Row {
		rows := make([]entity.Row, 0, len(values))
		for _, v := range values {
			rows = append(rows, entity.Row{column: v})
		}
		return rows
	}

	return []childGroup{
		{"entry_requirements", one(rec.EntryRequirements)},
		{"vaccines", rec.Vaccines},
		{"customs_restrictions", one(rec.CustomsRestrictions)},
		{"estimated_budget", one(rec.EstimatedBudget)},
		{"real_time_alerts", one(rec.RealTimeAlerts)},
		{"emergency_contacts", one(rec.EmergencyContacts)},
		{"currency", one(rec.Currency)},
		{"payment_methods", one(rec.PaymentMethods)},
		{"languages_spoken", wrap("language", rec.LanguagesSpoken)},
		{"dominant_religions", wrap("religion", rec.DominantReligions)},
		{"local_laws_customs", one(rec.LocalLawsCustoms)},
		{"survival_phrasebook", rec.SurvivalPhrasebook},
		{"sim_esim", one(rec.SimEsim)},
	}
}

// IsChildTable reports whether table is one of the tables keyed by country_id.
func IsChildTable(table string) bool {
	for _, g := range childGroups(entity.CountryRecord{}) {
		if g.table == table {
			return true
		}
	}
	return false
}

func (uc *relayUseCase) Insert(ctx context.Context, record entity.CountryRecord) Report {
	var report Report

	report.Outcomes = append(report.Outcomes, uc.insertRow(ctx, countriesTable, record.Country))

	countryID, err := record.CountryID()
	if err != nil {
		uc.logger.Error("cannot relay child rows", zap.Error(err))
		return report
	}
	report.CountryID = countryID

	for _, group := range childGroups(record) {
		for _, row := range group.rows {
			child := row.Clone()
			child["country_id"] = countryID
			report.Outcomes = append(report.Outcomes, uc.insertRow(ctx, group.table, child))
		}
	}

	uc.logger.Info("relay finished",
		zap.String("country_id", countryID),
		zap.Int("inserted", report.Succeeded()),
		zap.Int("failed", len(report.Failed())),
	)
	return report
}

func (uc *relayUseCase) insertRow(ctx context.Context, table string, row entity.Row) InsertOutcome {
	out := InsertOutcome{Table: table, Row: row}

	data, err := uc.writer.Insert(ctx, table, row)
	switch {
	case err != nil:
		out.Err = fmt.Errorf("insert into %s: %w", table, err)
	case len(data) == 0:
		out.Err = fmt.Errorf("insert into %s: %w", table, ErrNoRowsReturned)
	default:
		out.OK = true
	}

	if out.OK {
		metrics.RelayInsertsTotal.WithLabelValues(table, "success").Inc()
		uc.logger.Info("row inserted", zap.String("table", table))
	} else {
		metrics.RelayInsertsTotal.WithLabelValues(table, "failure").Inc()
		uc.logger.Error("row insert failed", zap.String("table", table), zap.Error(out.Err))
	}
	return out
}
