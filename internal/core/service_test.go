package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeBackend is an in-memory Backend stub for protocol tests.
type fakeBackend struct {
	products map[string]bool
	workers  map[string]bool
	steps    map[string]map[string]bool // product + "\x00" + version

	applied  []Batch
	applyErr error
}

func (f *fakeBackend) Apply(ctx context.Context, batch Batch) (CommitSummary, error) {
	if f.applyErr != nil {
		return CommitSummary{}, f.applyErr
	}
	f.applied = append(f.applied, batch)
	return CommitSummary{
		Entity:    batch.Entity,
		Committed: len(batch.Set.Rows),
		AppliedAt: time.Now(),
	}, nil
}

func (f *fakeBackend) StepCodes(ctx context.Context, product, version string) (map[string]bool, error) {
	return f.steps[product+"\x00"+version], nil
}

func (f *fakeBackend) Workers(ctx context.Context) (map[string]bool, error) {
	return f.workers, nil
}

func (f *fakeBackend) ProductExists(ctx context.Context, product string) (bool, error) {
	return f.products[product], nil
}

const ordersCSV = `product_name,quantity,due_date,status
Tenjam Blue,10,2025-06-01,pending
,,,
Tenjam Blue,5,2025-06-15,done
`

func TestPreviewConfirm(t *testing.T) {
	backend := &fakeBackend{products: map[string]bool{"Tenjam Blue": true}}
	svc := NewService(backend, time.Minute)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, EntityOrders, []byte(ordersCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if preview.Blocked() {
		t.Fatalf("preview blocked: %v", preview.Errors)
	}
	if preview.Token == "" {
		t.Fatal("no token issued")
	}
	s := preview.Summary
	if s.TotalRows != 3 || s.ValidRows != 2 || s.SkippedRows != 1 || s.ErrorRows != 0 {
		t.Errorf("summary = %+v", s)
	}

	commit, err := svc.Confirm(ctx, EntityOrders, preview.Token)
	if err != nil {
		t.Fatal(err)
	}
	if commit.Entity != EntityOrders || commit.Committed != 2 {
		t.Errorf("commit = %+v", commit)
	}
	if len(backend.applied) != 1 || len(backend.applied[0].Set.Rows) != 2 {
		t.Errorf("backend applied = %+v", backend.applied)
	}

	// Replay is rejected, not double-applied.
	if _, err := svc.Confirm(ctx, EntityOrders, preview.Token); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("replay err = %v, want ErrSessionConsumed", err)
	}
	if len(backend.applied) != 1 {
		t.Errorf("replay re-applied the batch")
	}
}

func TestPreviewBlocksConfirm(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewService(backend, time.Minute)
	ctx := context.Background()

	// The dependency names a step that is not in the batch.
	content := strings.Join([]string{
		"product_name,version_name,version_number,is_default,step_code,external_id,category,component,task_name,time_seconds,equipment_code,dependencies",
		"Tenjam Blue,v1.0,1,Y,S1,,Cut,Foam,Cut foam,120,CFA1,S9:finish",
		"",
	}, "\n")

	preview, err := svc.Preview(ctx, EntityProducts, []byte(content), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !preview.Blocked() {
		t.Fatal("unresolved dependency did not block the preview")
	}
	if preview.Token == "" {
		t.Fatal("blocked preview still carries a token for diagnostics")
	}

	if _, err := svc.Confirm(ctx, EntityProducts, preview.Token); !errors.Is(err, ErrSessionBlocked) {
		t.Errorf("confirm err = %v, want ErrSessionBlocked", err)
	}
	if len(backend.applied) != 0 {
		t.Errorf("blocked session reached the backend: %+v", backend.applied)
	}
}

func TestPreviewFieldErrors(t *testing.T) {
	backend := &fakeBackend{products: map[string]bool{"Tenjam Blue": true}}
	svc := NewService(backend, time.Minute)

	content := `product_name,quantity,due_date,status
Tenjam Blue,zero,2025-06-01,pending
Tenjam Blue,5,2025-06-15,shipped
`
	preview, err := svc.Preview(context.Background(), EntityOrders, []byte(content), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if preview.Summary.ErrorRows != 2 {
		t.Errorf("error rows = %d, want 2", preview.Summary.ErrorRows)
	}
	if len(preview.Errors) != 2 {
		t.Fatalf("errors = %v", preview.Errors)
	}
	if preview.Errors[0].Field != "quantity" || preview.Errors[1].Field != "status" {
		t.Errorf("error fields = %q/%q", preview.Errors[0].Field, preview.Errors[1].Field)
	}
}

func TestPreviewRejectsInputErrors(t *testing.T) {
	svc := NewService(&fakeBackend{}, time.Minute)
	ctx := context.Background()

	if _, err := svc.Preview(ctx, EntityType("widgets"), []byte(ordersCSV), "csv"); err == nil {
		t.Error("unknown entity accepted")
	}
	if _, err := svc.Preview(ctx, EntityOrders, []byte(ordersCSV), "xlsx"); err == nil {
		t.Error("non-csv format accepted")
	}
	if _, err := svc.Preview(ctx, EntityOrders, nil, "csv"); err == nil {
		t.Error("empty content accepted")
	}
	if _, err := svc.Preview(ctx, EntityOrders, []byte("a,b\n1,2\n"), "csv"); err == nil {
		t.Error("content without contract header accepted")
	}
}

func TestPreviewHeaderOffset(t *testing.T) {
	backend := &fakeBackend{products: map[string]bool{"Tenjam Blue": true}}
	svc := NewService(backend, time.Minute)

	// Exports often carry a title row above the contract header.
	content := `Orders export 2025-06-01,,,
product_name,quantity,due_date,status
Tenjam Blue,10,2025-06-01,pending
`
	preview, err := svc.Preview(context.Background(), EntityOrders, []byte(content), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if preview.Summary.ValidRows != 1 {
		t.Errorf("summary = %+v", preview.Summary)
	}
	if len(preview.Errors) > 0 {
		t.Errorf("errors = %v", preview.Errors)
	}
}

func TestConfirmApplyFailure(t *testing.T) {
	backend := &fakeBackend{
		products: map[string]bool{"Tenjam Blue": true},
		applyErr: errors.New("connection reset"),
	}
	svc := NewService(backend, time.Minute)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, EntityOrders, []byte(ordersCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, EntityOrders, preview.Token); err == nil {
		t.Fatal("failed apply reported success")
	}
	// The session was consumed before the apply attempt; the token is spent.
	if _, err := svc.Confirm(ctx, EntityOrders, preview.Token); !errors.Is(err, ErrSessionConsumed) {
		t.Errorf("retry err = %v, want ErrSessionConsumed", err)
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	svc := NewService(&fakeBackend{}, time.Minute)
	if _, err := svc.Confirm(context.Background(), EntityOrders, "bogus"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestConfirmWrongEntity(t *testing.T) {
	backend := &fakeBackend{products: map[string]bool{"Tenjam Blue": true}}
	svc := NewService(backend, time.Minute)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, EntityOrders, []byte(ordersCSV), "csv")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Confirm(ctx, EntityProducts, preview.Token); !errors.Is(err, ErrSessionEntity) {
		t.Fatalf("err = %v, want ErrSessionEntity", err)
	}
	if len(backend.applied) != 0 {
		t.Fatal("mismatched confirm reached the backend")
	}

	// The token survives the mismatch and confirms under its own entity.
	commit, err := svc.Confirm(ctx, EntityOrders, preview.Token)
	if err != nil {
		t.Fatal(err)
	}
	if commit.Entity != EntityOrders {
		t.Errorf("commit entity = %s", commit.Entity)
	}
}
