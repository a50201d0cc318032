package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenjam/shopsync/internal/core"
	"github.com/tenjam/shopsync/internal/schema"
)

// ddl is applied on startup. The schema intentionally mirrors the
// interchange contracts one-to-one; the import API is the only writer.
const ddl = `
CREATE TABLE IF NOT EXISTS workers (
	name        text PRIMARY KEY,
	hourly_cost numeric NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS equipment (
	code          text PRIMARY KEY,
	work_category text,
	work_type     text,
	station_count integer NOT NULL DEFAULT 0,
	hourly_cost   numeric NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS certifications (
	equipment_code text NOT NULL,
	worker_name    text NOT NULL,
	PRIMARY KEY (equipment_code, worker_name)
);
CREATE TABLE IF NOT EXISTS product_steps (
	product_name   text NOT NULL,
	version_name   text NOT NULL,
	version_number integer NOT NULL DEFAULT 1,
	is_default     boolean NOT NULL DEFAULT false,
	step_code      text NOT NULL,
	external_id    text,
	category       text,
	component      text,
	task_name      text,
	time_seconds   integer NOT NULL DEFAULT 0,
	equipment_code text,
	dependencies   text,
	PRIMARY KEY (product_name, version_name, step_code)
);
CREATE TABLE IF NOT EXISTS orders (
	id           uuid PRIMARY KEY,
	product_name text NOT NULL,
	quantity     integer NOT NULL,
	due_date     date NOT NULL,
	status       text NOT NULL
);
CREATE TABLE IF NOT EXISTS production_events (
	id             uuid PRIMARY KEY,
	product_name   text NOT NULL,
	due_date       date NOT NULL,
	version_name   text NOT NULL,
	step_code      text NOT NULL,
	worker_name    text NOT NULL,
	work_date      date NOT NULL,
	start_time     text,
	end_time       text,
	units_produced integer NOT NULL DEFAULT 0
);
`

// Postgres is the pgx-backed import backend. Apply runs each batch inside
// one transaction, so a failed batch commits nothing.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and ensures the schema exists.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() { p.pool.Close() }

// Ping reports backend liveness for the health probe.
func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Apply persists one validated batch inside a single transaction.
func (p *Postgres) Apply(ctx context.Context, batch core.Batch) (core.CommitSummary, error) {
	summary := core.CommitSummary{
		Entity:    batch.Entity,
		Counts:    make(map[string]int),
		AppliedAt: time.Now().UTC(),
	}

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return summary, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	switch batch.Entity {
	case core.EntityEquipmentMatrix:
		err = p.applyEquipment(ctx, tx, batch.Set, &summary)
	case core.EntityProducts:
		err = p.applyProducts(ctx, tx, batch.Set, &summary)
	case core.EntityOrders:
		err = p.applyOrders(ctx, tx, batch.Set, &summary)
	case core.EntityProductionHistory:
		err = p.applyProduction(ctx, tx, batch.Set, &summary)
	default:
		err = fmt.Errorf("unknown entity type: %s", batch.Entity)
	}
	if err != nil {
		return summary, err
	}

	if err := tx.Commit(ctx); err != nil {
		return summary, fmt.Errorf("commit: %w", err)
	}
	return summary, nil
}

// applyEquipment replaces the equipment matrix wholesale: the source sheet
// is a full snapshot, not a delta.
func (p *Postgres) applyEquipment(ctx context.Context, tx pgx.Tx, set core.RowSet, summary *core.CommitSummary) error {
	fixed := len(schema.EquipmentColumns)
	workerNames := set.Columns[fixed:]
	idx := core.MakeHeaderIndex(set.Columns)

	for _, table := range []string{"certifications", "equipment", "workers"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}

	equipment := 0
	for _, row := range set.Rows {
		code := core.Cell(row, idx, "equipment_code")

		if code == schema.CostSentinel {
			for i, name := range workerNames {
				cost := ""
				if fixed+i < len(row) {
					cost = row[fixed+i]
				}
				_, err := tx.Exec(ctx,
					`INSERT INTO workers (name, hourly_cost) VALUES ($1, $2)
					 ON CONFLICT (name) DO UPDATE SET hourly_cost = EXCLUDED.hourly_cost`,
					name, toPgNumeric(cost))
				if err != nil {
					return fmt.Errorf("insert worker %q: %w", name, err)
				}
			}
			continue
		}

		stations, _ := core.ParseIntCell(core.Cell(row, idx, "station_count"))
		_, err := tx.Exec(ctx,
			`INSERT INTO equipment (code, work_category, work_type, station_count, hourly_cost)
			 VALUES ($1, $2, $3, $4, $5)`,
			code,
			toPgText(core.Cell(row, idx, "work_category")),
			toPgText(core.Cell(row, idx, "work_type")),
			stations,
			toPgNumeric(core.Cell(row, idx, "hourly_cost")))
		if err != nil {
			return fmt.Errorf("insert equipment %q: %w", code, err)
		}
		equipment++

		for i, name := range workerNames {
			if fixed+i < len(row) && core.FlagSet(row[fixed+i]) {
				_, err := tx.Exec(ctx,
					`INSERT INTO certifications (equipment_code, worker_name) VALUES ($1, $2)
					 ON CONFLICT DO NOTHING`, code, name)
				if err != nil {
					return fmt.Errorf("insert certification %q/%q: %w", code, name, err)
				}
			}
		}
	}

	summary.Committed = len(set.Rows)
	summary.Counts["equipment"] = equipment
	summary.Counts["workers"] = len(workerNames)
	return nil
}

func (p *Postgres) applyProducts(ctx context.Context, tx pgx.Tx, set core.RowSet, summary *core.CommitSummary) error {
	idx := core.MakeHeaderIndex(set.Columns)

	// Re-importing a product version replaces its steps.
	cleared := make(map[[2]string]bool)
	for _, row := range set.Rows {
		key := [2]string{core.Cell(row, idx, "product_name"), core.Cell(row, idx, "version_name")}
		if !cleared[key] {
			if _, err := tx.Exec(ctx,
				`DELETE FROM product_steps WHERE product_name = $1 AND version_name = $2`,
				key[0], key[1]); err != nil {
				return fmt.Errorf("clear steps for %s %s: %w", key[0], key[1], err)
			}
			cleared[key] = true
		}

		versionNumber, _ := core.ParseIntCell(core.Cell(row, idx, "version_number"))
		seconds, _ := core.ParseIntCell(core.Cell(row, idx, "time_seconds"))
		_, err := tx.Exec(ctx,
			`INSERT INTO product_steps
			 (product_name, version_name, version_number, is_default, step_code, external_id,
			  category, component, task_name, time_seconds, equipment_code, dependencies)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			key[0], key[1], versionNumber,
			core.FlagSet(core.Cell(row, idx, "is_default")),
			core.Cell(row, idx, "step_code"),
			toPgText(core.Cell(row, idx, "external_id")),
			toPgText(core.Cell(row, idx, "category")),
			toPgText(core.Cell(row, idx, "component")),
			toPgText(core.Cell(row, idx, "task_name")),
			seconds,
			toPgText(core.Cell(row, idx, "equipment_code")),
			toPgText(core.Cell(row, idx, "dependencies")))
		if err != nil {
			return fmt.Errorf("insert step %q: %w", core.Cell(row, idx, "step_code"), err)
		}
	}

	summary.Committed = len(set.Rows)
	summary.Counts["steps"] = len(set.Rows)
	summary.Counts["versions"] = len(cleared)
	return nil
}

func (p *Postgres) applyOrders(ctx context.Context, tx pgx.Tx, set core.RowSet, summary *core.CommitSummary) error {
	idx := core.MakeHeaderIndex(set.Columns)

	for _, row := range set.Rows {
		qty, _ := core.ParseIntCell(core.Cell(row, idx, "quantity"))
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, product_name, quantity, due_date, status)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(),
			core.Cell(row, idx, "product_name"),
			qty,
			toPgDate(core.Cell(row, idx, "due_date")),
			core.Cell(row, idx, "status"))
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
	}

	summary.Committed = len(set.Rows)
	summary.Counts["orders"] = len(set.Rows)
	return nil
}

func (p *Postgres) applyProduction(ctx context.Context, tx pgx.Tx, set core.RowSet, summary *core.CommitSummary) error {
	idx := core.MakeHeaderIndex(set.Columns)

	for _, row := range set.Rows {
		units, _ := core.ParseIntCell(core.Cell(row, idx, "units_produced"))
		_, err := tx.Exec(ctx,
			`INSERT INTO production_events
			 (id, product_name, due_date, version_name, step_code, worker_name,
			  work_date, start_time, end_time, units_produced)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(),
			core.Cell(row, idx, "product_name"),
			toPgDate(core.Cell(row, idx, "due_date")),
			core.Cell(row, idx, "version_name"),
			core.Cell(row, idx, "step_code"),
			core.Cell(row, idx, "worker_name"),
			toPgDate(core.Cell(row, idx, "work_date")),
			toPgText(core.Cell(row, idx, "start_time")),
			toPgText(core.Cell(row, idx, "end_time")),
			units)
		if err != nil {
			return fmt.Errorf("insert production event: %w", err)
		}
	}

	summary.Committed = len(set.Rows)
	summary.Counts["events"] = len(set.Rows)
	return nil
}

// StepCodes returns the committed step codes for a product version.
func (p *Postgres) StepCodes(ctx context.Context, product, version string) (map[string]bool, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT step_code FROM product_steps WHERE product_name = $1 AND version_name = $2`,
		product, version)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		out[code] = true
	}
	return out, rows.Err()
}

// Workers returns the worker identities from the committed equipment matrix.
func (p *Postgres) Workers(ctx context.Context) (map[string]bool, error) {
	rows, err := p.pool.Query(ctx, `SELECT name FROM workers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = true
	}
	return out, rows.Err()
}

// ProductExists reports whether a product has committed steps.
func (p *Postgres) ProductExists(ctx context.Context, product string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM product_steps WHERE product_name = $1)`, product).Scan(&exists)
	return exists, err
}

// Conversions to pgtype values. Empty cells become NULLs; the interchange
// format normalizes absent numerics to zero before rows get here, so an
// invalid value at this layer is already a bug upstream.

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgDate(s string) pgtype.Date {
	t, ok := core.ParseDateCell(s)
	if !ok {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func toPgNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if s == "" {
		s = "0"
	}
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}
	}
	return n
}
