package core

// service.go is the two-phase import protocol: Preview validates a batch
// and captures it in a session; Confirm consumes the session token and
// applies the exact preview-time snapshot through the backend. Confirm
// never re-reads source data, so there is no drift between what was
// validated and what is committed.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tenjam/shopsync/internal/canon"
)

// MaxHeaderSearchRows bounds the scan for the contract header row.
var MaxHeaderSearchRows = 20

// Service drives the preview/confirm protocol against one backend.
// Preview calls may run concurrently; each produces an independent session.
type Service struct {
	backend  Backend
	sessions *SessionStore
}

// NewService creates a Service with the given session validity window.
func NewService(backend Backend, sessionTTL time.Duration) *Service {
	return &Service{
		backend:  backend,
		sessions: NewSessionStore(sessionTTL),
	}
}

// Preview parses and validates one entity batch and captures the validated
// snapshot in a new session. The returned result always carries a token;
// when Errors is non-empty the session is blocked and Confirm will reject
// it regardless of what the caller does with the token.
func (s *Service) Preview(ctx context.Context, entity EntityType, content []byte, format string) (*PreviewResult, error) {
	def, ok := Get(entity)
	if !ok {
		return nil, fmt.Errorf("unknown entity type: %s", entity)
	}
	if format != "" && !strings.EqualFold(format, "csv") {
		return nil, fmt.Errorf("unsupported format %q (only csv)", format)
	}

	content = SanitizeUTF8(content)
	records, err := ParseCSV(content)
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty content")
	}

	headerPos := findHeader(records, def.Columns)
	if headerPos < 0 {
		return nil, fmt.Errorf("header not found (expected columns: %s)", strings.Join(def.Columns, ", "))
	}
	header := cleanHeader(def, records[headerPos])
	if !def.Dynamic && len(header) > len(def.Columns) {
		header = header[:len(def.Columns)]
	}
	idx := MakeHeaderIndex(header)
	keyPos := keyColumn(def, idx)

	set := RowSet{Columns: header}
	summary := PreviewSummary{}
	var errs, warns []Diagnostic

	for i, raw := range records[headerPos+1:] {
		line := headerPos + i + 2
		summary.TotalRows++

		if IsEmptyRow(raw) || keyPos >= len(raw) || CleanCell(raw[keyPos]) == "" {
			summary.SkippedRows++
			continue
		}
		if len(raw) < len(def.Columns) {
			errs = append(errs, Diagnostic{Line: line,
				Message: fmt.Sprintf("expected %d columns, got %d", len(def.Columns), len(raw))})
			summary.ErrorRows++
			continue
		}

		row := NormalizeRow(def, idx, raw)
		if fieldErrs := ValidateFields(def, idx, row, line); len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			summary.ErrorRows++
			continue
		}

		set.Rows = append(set.Rows, row)
		summary.ValidRows++
	}

	if def.Validate != nil && len(errs) == 0 {
		refErrs, refWarns := def.Validate(ctx, set, s.backend)
		errs = append(errs, refErrs...)
		warns = append(warns, refWarns...)
	}
	summary.Warnings = len(warns)

	session := s.sessions.Create(entity, set, errs, warns)

	return &PreviewResult{
		Token:    session.Token,
		Entity:   entity,
		Summary:  summary,
		Errors:   errs,
		Warnings: warns,
	}, nil
}

// Confirm consumes a session token and atomically applies its snapshot.
// The token must be confirmed under the same entity type it was previewed
// for. Replaying Confirm with an already-consumed token deterministically
// rejects rather than double-applying.
func (s *Service) Confirm(ctx context.Context, entity EntityType, token string) (*CommitSummary, error) {
	session, err := s.sessions.Consume(token, entity)
	if err != nil {
		return nil, err
	}

	summary, err := s.backend.Apply(ctx, Batch{Entity: session.Entity, Set: session.Set})
	if err != nil {
		return nil, fmt.Errorf("apply %s batch: %w", session.Entity, err)
	}
	return &summary, nil
}

// Sessions exposes the session store for introspection in tests.
func (s *Service) Sessions() *SessionStore { return s.sessions }

// cleanHeader normalizes the matched header row. Fixed contract columns
// are lowercased; the dynamic tail carries worker identities whose case is
// part of the identity, so those cells are only cleaned and canonicalized.
// A lowercased worker column would commit a different identity than the
// production-history rows reference.
func cleanHeader(def Definition, header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = CleanCell(h)
		if i < len(def.Columns) {
			out[i] = strings.ToLower(h)
		} else {
			out[i] = canon.Worker(h)
		}
	}
	// Drop trailing blank header cells left by spreadsheet exports.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// findHeader scans the leading records for the row matching the contract
// columns. The contract is a prefix match: dynamic entities carry extra
// discovered columns after the fixed ones.
func findHeader(records [][]string, columns []string) int {
	limit := MaxHeaderSearchRows
	if len(records) < limit {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		if matchesContract(records[i], columns) {
			return i
		}
	}
	return -1
}

func matchesContract(row []string, columns []string) bool {
	if len(row) < len(columns) {
		return false
	}
	for i, want := range columns {
		if !strings.EqualFold(CleanCell(row[i]), want) {
			return false
		}
	}
	return true
}

func keyColumn(def Definition, idx HeaderIndex) int {
	for _, spec := range def.FieldSpecs {
		if spec.Key {
			if pos, ok := idx[strings.ToLower(spec.Name)]; ok {
				return pos
			}
		}
	}
	return 0
}
