package screening

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/worldmap/internal/applications"
	"github.com/JaimeStill/worldmap/internal/batches"
	"github.com/JaimeStill/worldmap/internal/decision"
	"github.com/JaimeStill/worldmap/internal/eligibility"
	"github.com/JaimeStill/worldmap/internal/intake"
	"github.com/JaimeStill/worldmap/internal/issuances"
	"github.com/JaimeStill/worldmap/internal/matching"
	"github.com/JaimeStill/worldmap/internal/persons"
	"github.com/JaimeStill/worldmap/pkg/formatting"
	"github.com/JaimeStill/worldmap/pkg/spreadsheet"
	"github.com/JaimeStill/worldmap/pkg/storage"
)

const (
	passFirst  = "first"
	passSecond = "second"

	commitClean    = "clean"
	commitOverride = "override"

	// second pass outcomes for rows that clear the admissibility gates
	outcomeOK   = "OK"
	outcomeHeld = "HELD"
)

// Archive key prefixes. Keys are {prefix}/{batch_id}/{file}.
const (
	IntakePrefix = "intake"
	ExportPrefix = "exports"
)

type pipeline struct {
	engine   *matching.Engine
	registry Registry
	issuer   Issuer
	archive  Archive
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Deps collects the collaborators of the pipeline. Archive and Metrics may be nil.
type Deps struct {
	Engine   *matching.Engine
	Registry Registry
	Issuer   Issuer
	Archive  Archive
	Metrics  *Metrics
}

// New creates the screening pipeline implementing the System interface.
func New(deps Deps, logger *slog.Logger) System {
	return &pipeline{
		engine:   deps.Engine,
		registry: deps.Registry,
		issuer:   deps.Issuer,
		archive:  deps.Archive,
		metrics:  deps.Metrics,
		logger:   logger.With("system", "screening"),
		now:      time.Now,
	}
}

func (p *pipeline) Handler(maxUploadSize int64) *Handler {
	return NewHandler(p, p.logger, maxUploadSize)
}

func (p *pipeline) Check(ctx context.Context, cmd CheckCommand) (*CheckedBatch, error) {
	if len(cmd.Sources) == 0 {
		return nil, ErrNoSources
	}

	batch := &CheckedBatch{
		BatchID:   batches.NewID(),
		Label:     strings.TrimSpace(cmd.Label),
		CheckedAt: p.now(),
		Threshold: p.engine.Options().Threshold,
		Sources:   []string{},
		Rows:      []CheckedRow{},
		Errors:    []SourceError{},
		Groups:    []decision.Group{},
	}

	var apps []applications.Application
	for _, src := range cmd.Sources {
		rows, err := intake.Prepare(src, batch.BatchID)
		if err != nil {
			p.logger.Warn("source rejected", "batch_id", batch.BatchID, "source", src.Name, "error", err)
			batch.Errors = append(batch.Errors, SourceError{Source: src.Name, Error: err.Error()})
			continue
		}
		batch.Sources = append(batch.Sources, src.Name)
		apps = append(apps, rows...)
	}

	if len(apps) == 0 {
		if len(batch.Errors) > 0 {
			return batch, nil
		}
		return nil, ErrNoRows
	}

	snap, err := p.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	results, err := p.match(ctx, passFirst, apps, snap)
	if err != nil {
		return nil, err
	}

	batch.Rows = make([]CheckedRow, len(apps))
	for i, a := range apps {
		a.RowID = batches.RowID(batch.BatchID, i+1)
		d := decision.Evaluate(a, results[i])
		batch.Rows[i] = CheckedRow{
			RowID:       a.RowID,
			Application: a,
			Match:       results[i],
			Decision:    d,
		}
		p.metrics.ObserveRow(passFirst, string(d.Status))
	}

	batch.Summary = summarize(batch.Rows)
	batch.Groups = decision.Groups(decisionRows(batch.Rows))

	p.archiveSources(ctx, batch.BatchID, cmd.Sources)

	p.logger.Info(
		"batch checked",
		"batch_id", batch.BatchID,
		"rows", batch.Summary.Total,
		"approved_ready", batch.Summary.ApprovedReady,
		"needs_review", batch.Summary.NeedsReview,
		"source_errors", len(batch.Errors),
	)
	return batch, nil
}

func (p *pipeline) Recheck(ctx context.Context, batch CheckedBatch) (*SecondCheck, error) {
	if batch.BatchID == "" {
		return nil, ErrMissingBatch
	}

	second := &SecondCheck{
		BatchID:   batch.BatchID,
		CheckedAt: p.now(),
		OK:        []CheckedRow{},
		Held:      []CheckedRow{},
		Dropped:   []CheckedRow{},
	}

	var ready []CheckedRow
	for _, r := range batch.Ready() {
		r, err := restore(batch.BatchID, r)
		if err != nil {
			return nil, err
		}
		if d, ok := decision.Admissible(r.Application); !ok {
			p.logger.Warn(
				"row dropped from second pass",
				"batch_id", batch.BatchID,
				"row_id", r.RowID,
				"status", d.Status,
				"reason", d.Reason,
			)
			r.Decision = d
			second.Dropped = append(second.Dropped, r)
			p.metrics.ObserveRow(passSecond, string(d.Status))
			continue
		}
		ready = append(ready, r)
	}

	if len(ready) == 0 {
		second.Persons = []persons.Person{}
		second.Issuances = []issuances.Issuance{}
		return second, nil
	}

	results, err := p.rematch(ctx, ready)
	if err != nil {
		return nil, err
	}

	for i, row := range ready {
		row.Match = results[i]
		row.Decision = decision.Evaluate(row.Application, results[i])
		if row.Decision.Status == applications.StatusApprovedReady && decision.SecondPassClean(results[i]) {
			second.OK = append(second.OK, row)
			p.metrics.ObserveRow(passSecond, outcomeOK)
			continue
		}
		second.Held = append(second.Held, row)
		p.metrics.ObserveRow(passSecond, outcomeHeld)
	}

	people, issued, err := p.registry.Related(ctx, relatedPersons(second.Held))
	if err != nil {
		return nil, fmt.Errorf("load matched registry records: %w", err)
	}
	second.Persons, second.Issuances = people, issued

	p.metrics.AddHeld(len(second.Held))
	p.logger.Info(
		"batch rechecked",
		"batch_id", batch.BatchID,
		"ok", len(second.OK),
		"held", len(second.Held),
		"dropped", len(second.Dropped),
	)
	return second, nil
}

func (p *pipeline) Commit(ctx context.Context, cmd CommitCommand) (*CommitResult, error) {
	second, err := p.Recheck(ctx, cmd.Batch)
	if err != nil {
		return nil, err
	}

	result := &CommitResult{
		Committed: []applications.Application{},
		Held:      second.Held,
	}
	if len(second.OK) == 0 {
		p.logger.Info("nothing to commit", "batch_id", cmd.Batch.BatchID, "held", len(second.Held))
		return result, nil
	}

	rows := make([]applications.Application, len(second.OK))
	for i, r := range second.OK {
		a := r.Application
		a.Status = applications.StatusApprovedReady
		a.MatchedPersonID = nil
		rows[i] = a
	}

	b, inserted, err := p.registry.Commit(ctx, batches.CreateCommand{
		ID:          cmd.Batch.BatchID,
		SourceLabel: cmd.Batch.Label,
		SourceFiles: sourceFiles(second.OK),
		Notes:       cmd.Notes,
	}, rows)
	if err != nil {
		return nil, err
	}

	result.Batch = &b
	result.Committed = inserted

	p.metrics.AddCommitted(commitClean, len(inserted))
	p.logger.Info(
		"batch committed",
		"batch_id", b.ID,
		"committed", len(inserted),
		"held", len(second.Held),
	)
	return result, nil
}

func (p *pipeline) Override(ctx context.Context, cmd OverrideCommand) (*CommitResult, error) {
	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, ErrOverrideReason
	}
	if cmd.BatchID == "" {
		return nil, ErrMissingBatch
	}
	if len(cmd.Rows) == 0 {
		return nil, ErrNothingHeld
	}

	held := make([]CheckedRow, len(cmd.Rows))
	for i, r := range cmd.Rows {
		r, err := restore(cmd.BatchID, r)
		if err != nil {
			return nil, err
		}
		if d, ok := decision.Admissible(r.Application); !ok {
			return nil, fmt.Errorf("%w: row %s is %s (%s)", ErrNotOverridable, r.RowID, d.Status, d.Reason)
		}
		held[i] = r
	}

	results, err := p.rematch(ctx, held)
	if err != nil {
		return nil, err
	}

	note := reason
	if admin := strings.TrimSpace(cmd.Admin); admin != "" {
		note = fmt.Sprintf("OVERRIDE by %s: %s", admin, reason)
	}

	rows := make([]applications.Application, len(held))
	for i, r := range held {
		if decision.SecondPassClean(results[i]) {
			return nil, fmt.Errorf("%w: row %s has no registry match, commit it instead", ErrNotOverridable, r.RowID)
		}
		a := r.Application
		a.Status = applications.StatusApprovedException
		a.SystemFlags = eligibility.WithOverride(a.SystemFlags)
		a.AdminNotes = note
		a.MatchedPersonID = overrideMatch(results[i])
		rows[i] = a
	}

	b, inserted, err := p.registry.Commit(ctx, batches.CreateCommand{
		ID:          cmd.BatchID,
		SourceLabel: cmd.Label,
		SourceFiles: sourceFiles(held),
	}, rows)
	if err != nil {
		return nil, err
	}

	p.metrics.AddCommitted(commitOverride, len(inserted))
	p.logger.Info(
		"override committed",
		"batch_id", b.ID,
		"committed", len(inserted),
		"admin", cmd.Admin,
	)
	return &CommitResult{Batch: &b, Committed: inserted, Held: []CheckedRow{}}, nil
}

func (p *pipeline) Issue(ctx context.Context, cmd issuances.IssueCommand) (*issuances.IssueResult, error) {
	result, err := p.issuer.Issue(ctx, cmd)
	if err != nil {
		return nil, err
	}

	for _, o := range result.Outcomes {
		p.metrics.ObserveIssue(string(o.Status))
	}
	return result, nil
}

func (p *pipeline) ExportChecked(ctx context.Context, batch CheckedBatch) ([]byte, error) {
	if batch.BatchID == "" {
		return nil, ErrMissingBatch
	}

	data, err := checkedWorkbook(batch).Bytes()
	if err != nil {
		return nil, fmt.Errorf("export checked batch %s: %w", batch.BatchID, err)
	}

	p.archiveExport(ctx, batch.BatchID, "checked.xlsx", data)
	return data, nil
}

func (p *pipeline) ExportRecheck(ctx context.Context, batch CheckedBatch) ([]byte, error) {
	second, err := p.Recheck(ctx, batch)
	if err != nil {
		return nil, err
	}

	data, err := recheckWorkbook(*second).Bytes()
	if err != nil {
		return nil, fmt.Errorf("export second check %s: %w", batch.BatchID, err)
	}

	p.archiveExport(ctx, batch.BatchID, "second_check.xlsx", data)
	return data, nil
}

func (p *pipeline) match(
	ctx context.Context,
	pass string,
	apps []applications.Application,
	snap matching.Snapshot,
) ([]matching.Result, error) {
	start := time.Now()
	results, err := p.engine.Match(ctx, apps, snap)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveMatchLatency(pass, time.Since(start))
	return results, nil
}

// rematch runs rows against a fresh registry snapshot.
func (p *pipeline) rematch(ctx context.Context, rows []CheckedRow) ([]matching.Result, error) {
	snap, err := p.registry.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	apps := make([]applications.Application, len(rows))
	for i, r := range rows {
		apps[i] = r.Application
	}
	return p.match(ctx, passSecond, apps, snap)
}

// restore rebuilds a returned row's application from its submitted fields,
// so normalized fields and flags are derived here and never taken from the
// caller. The row must carry an ID of batchID.
func restore(batchID string, r CheckedRow) (CheckedRow, error) {
	if !strings.HasPrefix(r.RowID, batchID+"-") {
		return r, fmt.Errorf("%w: %q", ErrForeignRow, r.RowID)
	}

	a := applications.Prepare(r.Application.Raw())
	a.SourceFile = r.Application.SourceFile
	a.BatchID = batchID
	a.RowID = r.RowID

	r.Application = a
	return r, nil
}

// overrideMatch picks the registry person an override is recorded against:
// the exact match when there is one, else the best fuzzy candidate.
func overrideMatch(r matching.Result) *int64 {
	if r.MatchedPersonID != nil {
		return r.MatchedPersonID
	}
	if len(r.Candidates) > 0 {
		id := r.Candidates[0].PersonID
		return &id
	}
	return nil
}

func (p *pipeline) archiveSources(ctx context.Context, batchID string, sources []intake.Source) {
	if p.archive == nil {
		return
	}
	for _, src := range sources {
		key := storage.Key(IntakePrefix, batchID, src.Name)
		if err := p.archive.Upload(ctx, key, bytes.NewReader(src.Data), spreadsheet.ContentType); err != nil {
			p.logger.Warn("archive source failed", "key", key, "error", err)
			continue
		}
		p.logger.Info("source archived", "key", key, "size", formatting.FormatBytes(int64(len(src.Data)), 1))
	}
}

func (p *pipeline) archiveExport(ctx context.Context, batchID, name string, data []byte) {
	if p.archive == nil {
		return
	}
	key := storage.Key(ExportPrefix, batchID, name)
	if err := p.archive.Upload(ctx, key, bytes.NewReader(data), spreadsheet.ContentType); err != nil {
		p.logger.Warn("archive export failed", "key", key, "error", err)
	}
}

// relatedPersons collects every person a held row points at, through an
// exact match or a fuzzy candidate, sorted by ID.
func relatedPersons(rows []CheckedRow) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, r := range rows {
		if r.Match.MatchedPersonID != nil {
			add(*r.Match.MatchedPersonID)
		}
		for _, c := range r.Match.Candidates {
			add(c.PersonID)
		}
	}

	slices.Sort(ids)
	return ids
}

func sourceFiles(rows []CheckedRow) []string {
	var files []string
	for _, r := range rows {
		if f := r.Application.SourceFile; f != "" && !slices.Contains(files, f) {
			files = append(files, f)
		}
	}
	return files
}
