package api

import (
	"fmt"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/batches"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/internal/reports"
	"github.com/JaimeStill/worldmap/internal/screening"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Applications applications.System
	Persons      persons.System
	Issuances    issuances.System
	Batches      batches.System
	Screening    screening.System
	Reports      reports.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	appsSystem := applications.New(db, runtime.Logger, runtime.Pagination)
	personsSystem := persons.New(db, runtime.Logger, runtime.Pagination)

	issuancesSystem := issuances.New(
		db,
		appsSystem,
		runtime.Logger,
		runtime.Pagination,
		runtime.Screening.IssueOptions(),
	)

	batchesSystem := batches.New(
		db,
		appsSystem,
		personsSystem,
		issuancesSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	engine, err := matching.New(runtime.Screening.MatchingOptions())
	if err != nil {
		return nil, fmt.Errorf("match engine init failed: %w", err)
	}

	screeningSystem := screening.New(
		screening.Deps{
			Engine:   engine,
			Registry: screening.NewRegistry(db, personsSystem, issuancesSystem),
			Issuer:   issuancesSystem,
			Archive:  runtime.Storage,
			Metrics:  screening.NewMetrics(runtime.Metrics),
		},
		runtime.Logger,
	)

	return &Domain{
		Applications: appsSystem,
		Persons:      personsSystem,
		Issuances:    issuancesSystem,
		Batches:      batchesSystem,
		Screening:    screeningSystem,
		Reports:      reports.New(appsSystem, personsSystem, runtime.Logger, runtime.Pagination),
	}, nil
}
