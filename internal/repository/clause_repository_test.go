package repository_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/repository"
	"github.com/nurpe/salesops-contracts/internal/testutil"
)

func TestCompileClausesExactDuration(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewClauseRepository(db)
	ctx := context.Background()

	a := testutil.SeedService(t, db, "Social media")
	b := testutil.SeedService(t, db, "Paid ads")
	testutil.SeedClause(t, db, a.ID, 6, 1, "A: six month reporting cadence")
	testutil.SeedClause(t, db, a.ID, 12, 1, "A: annual reporting cadence")
	testutil.SeedClause(t, db, b.ID, 6, 2, "B: six month ad budget review")
	testutil.SeedClause(t, db, b.ID, 3, 1, "B: quarterly ad budget review")

	got, err := repo.CompileClauses(ctx, []uuid.UUID{a.ID, b.ID}, 6)
	if err != nil {
		t.Fatalf("CompileClauses: %v", err)
	}
	want := []string{"A: six month reporting cadence", "B: six month ad budget review"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clauses: want=%v got=%v", want, got)
	}
}

func TestCompileClausesOrderingIsDeterministic(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewClauseRepository(db)
	ctx := context.Background()

	a := testutil.SeedService(t, db, "SEO")
	b := testutil.SeedService(t, db, "Content")
	testutil.SeedClause(t, db, b.ID, 12, 3, "third clause text")
	testutil.SeedClause(t, db, a.ID, 12, 1, "first clause text")
	testutil.SeedClause(t, db, b.ID, 12, 2, "second clause text")

	first, err := repo.CompileClauses(ctx, []uuid.UUID{a.ID, b.ID}, 12)
	if err != nil {
		t.Fatalf("CompileClauses: %v", err)
	}
	want := []string{"first clause text", "second clause text", "third clause text"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("clauses: want=%v got=%v", want, first)
	}

	for i := 0; i < 5; i++ {
		again, err := repo.CompileClauses(ctx, []uuid.UUID{b.ID, a.ID}, 12)
		if err != nil {
			t.Fatalf("CompileClauses: %v", err)
		}
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d: want=%v got=%v", i, first, again)
		}
	}
}

func TestCompileClausesNoMatchIsEmpty(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewClauseRepository(db)
	ctx := context.Background()

	s := testutil.SeedService(t, db, "Branding")
	testutil.SeedClause(t, db, s.ID, 12, 1, "annual branding clause")

	got, err := repo.CompileClauses(ctx, []uuid.UUID{s.ID}, 6)
	if err != nil {
		t.Fatalf("CompileClauses: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got=%#v", got)
	}

	got, err = repo.CompileClauses(ctx, nil, 6)
	if err != nil {
		t.Fatalf("CompileClauses without services: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got=%#v", got)
	}
}

func TestCreateAndListClauses(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewClauseRepository(db)
	ctx := context.Background()

	s := testutil.SeedService(t, db, "Video")
	exists, err := repo.ServiceExists(ctx, s.ID)
	if err != nil || !exists {
		t.Fatalf("ServiceExists: want=true got=%v err=%v", exists, err)
	}
	exists, err = repo.ServiceExists(ctx, uuid.New())
	if err != nil || exists {
		t.Fatalf("ServiceExists unknown: want=false got=%v err=%v", exists, err)
	}

	clause := &model.Clause{ID: uuid.New(), ServiceID: s.ID, ClauseText: "two videos per month", DurationMonths: 3, SortOrder: 1}
	if err := repo.CreateClause(ctx, clause); err != nil {
		t.Fatalf("CreateClause: %v", err)
	}
	clauses, err := repo.ListClauses(ctx)
	if err != nil {
		t.Fatalf("ListClauses: %v", err)
	}
	if len(clauses) != 1 || clauses[0].ClauseText != clause.ClauseText {
		t.Fatalf("ListClauses: want=[%s] got=%v", clause.ClauseText, clauses)
	}
}

func TestCompileClausesSixMonthPackage(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewClauseRepository(db)

	a := testutil.SeedService(t, db, "A")
	b := testutil.SeedService(t, db, "B")
	testutil.SeedClause(t, db, a.ID, 12, 1, "service A twelve month clause")
	testutil.SeedClause(t, db, b.ID, 6, 1, "service B six month clause")
	pkg := testutil.SeedPackage(t, db, 6, "60000", a, b)

	got, err := repo.CompileClauses(context.Background(), pkg.ServiceIDs, pkg.DurationMonths)
	if err != nil {
		t.Fatalf("CompileClauses: %v", err)
	}
	want := []string{"service B six month clause"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("clauses: want=%v got=%v", want, got)
	}
}
