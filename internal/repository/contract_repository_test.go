package repository_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/repository"
	"github.com/nurpe/salesops-contracts/internal/testutil"
)

func TestGetPackageKeepsServiceOrder(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)

	first := testutil.SeedService(t, db, "first")
	second := testutil.SeedService(t, db, "second")
	pkg := testutil.SeedPackage(t, db, 6, "90000", first, second)

	got, err := repo.GetPackage(context.Background(), pkg.ID)
	if err != nil {
		t.Fatalf("GetPackage: %v", err)
	}
	if len(got.ServiceIDs) != 2 || got.ServiceIDs[0] != first.ID || got.ServiceIDs[1] != second.ID {
		t.Fatalf("service ids: want=[%s %s] got=%v", first.ID, second.ID, got.ServiceIDs)
	}
	if !got.TotalPrice.Equal(model.MustParseMoney("90000")) {
		t.Fatalf("total price: want=90000 got=%s", got.TotalPrice)
	}
}

func TestGetContractIncludesAddons(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)

	agent := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	contract := testutil.SeedContract(t, db, agent, pkg, "100000", "clause one", "clause two")
	addon := testutil.SeedAddon(t, db, "Extra reel", "2500")
	testutil.LinkAddon(t, db, contract, addon)

	got, err := repo.GetContract(context.Background(), contract.ID)
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if len(got.Clauses) != 2 || got.Clauses[1] != "clause two" {
		t.Fatalf("clauses: want=[clause one clause two] got=%v", got.Clauses)
	}
	if len(got.Addons) != 1 || got.Addons[0].Name != "Extra reel" || got.Addons[0].IsApproved {
		t.Fatalf("addons: want one unapproved Extra reel got=%+v", got.Addons)
	}
}

func TestApproveContractAddonOnlyOnce(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)
	ctx := context.Background()

	agent := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	admin := testutil.SeedUser(t, db, model.UserRoleAdmin, "Omar")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	contract := testutil.SeedContract(t, db, agent, pkg, "100000")
	addon := testutil.SeedAddon(t, db, "Extra reel", "2500")
	testutil.LinkAddon(t, db, contract, addon)

	approved, err := repo.ApproveContractAddon(ctx, contract.ID, addon.ID, admin.ID, time.Now().UTC())
	if err != nil || !approved {
		t.Fatalf("first approve: want=true got=%v err=%v", approved, err)
	}
	approved, err = repo.ApproveContractAddon(ctx, contract.ID, addon.ID, admin.ID, time.Now().UTC())
	if err != nil || approved {
		t.Fatalf("second approve: want=false got=%v err=%v", approved, err)
	}

	link, err := repo.GetContractAddon(ctx, contract.ID, addon.ID)
	if err != nil {
		t.Fatalf("GetContractAddon: %v", err)
	}
	if !link.IsApproved || link.ApprovedBy == nil || *link.ApprovedBy != admin.ID {
		t.Fatalf("link: want approved by %s got=%+v", admin.ID, link)
	}
}

func TestListAuditEntriesNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)
	ctx := context.Background()

	agent := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	contract := testutil.SeedContract(t, db, agent, pkg, "100000")

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	entries := []model.AuditEntry{
		{ContractID: contract.ID, UserID: agent.ID, Action: model.AuditActionContractCreated, Details: "created", CreatedAt: base},
		{ContractID: contract.ID, UserID: agent.ID, Action: model.AuditActionContractUpdated, Details: "same second a", CreatedAt: base.Add(time.Minute)},
		{ContractID: contract.ID, UserID: agent.ID, Action: model.AuditActionContractUpdated, Details: "same second b", CreatedAt: base.Add(time.Minute)},
	}
	for i := range entries {
		if err := repo.AppendAuditEntry(ctx, &entries[i]); err != nil {
			t.Fatalf("AppendAuditEntry: %v", err)
		}
	}

	got, err := repo.ListAuditEntries(ctx, contract.ID)
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	want := []string{"same second b", "same second a", "created"}
	if len(got) != len(want) {
		t.Fatalf("entries: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i].Details != want[i] {
			t.Fatalf("entry %d: want=%q got=%q", i, want[i], got[i].Details)
		}
		if got[i].UserName != "Sara" {
			t.Fatalf("entry %d user name: want=Sara got=%q", i, got[i].UserName)
		}
	}
}

func TestListContractsFiltersByAgent(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)
	ctx := context.Background()

	sara := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	omar := testutil.SeedUser(t, db, model.UserRoleAgent, "Omar")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	testutil.SeedContract(t, db, sara, pkg, "100000")
	testutil.SeedContract(t, db, omar, pkg, "100000")

	all, err := repo.ListContracts(ctx, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListContracts all: want=2 got=%d err=%v", len(all), err)
	}
	own, err := repo.ListContracts(ctx, &sara.ID)
	if err != nil || len(own) != 1 || own[0].SalesAgentID != sara.ID {
		t.Fatalf("ListContracts own: want one for %s got=%+v err=%v", sara.ID, own, err)
	}
	none, err := repo.ListContracts(ctx, ptr(uuid.New()))
	if err != nil || len(none) != 0 {
		t.Fatalf("ListContracts unknown: want=0 got=%d err=%v", len(none), err)
	}
}

func TestListContractsNewestFirstWithDescendingTieBreak(t *testing.T) {
	db := testutil.DB(t)
	repo := repository.NewContractRepository(db)
	ctx := context.Background()

	agent := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	older := testutil.SeedContract(t, db, agent, pkg, "100000")
	tied := []*model.Contract{
		testutil.SeedContract(t, db, agent, pkg, "100000"),
		testutil.SeedContract(t, db, agent, pkg, "100000"),
		testutil.SeedContract(t, db, agent, pkg, "100000"),
	}

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	if err := db.Model(&model.Contract{}).Where("id = ?", older.ID).Update("created_at", base).Error; err != nil {
		t.Fatalf("age contract: %v", err)
	}
	want := make([]string, 0, len(tied)+1)
	for _, c := range tied {
		if err := db.Model(&model.Contract{}).Where("id = ?", c.ID).Update("created_at", base.Add(time.Hour)).Error; err != nil {
			t.Fatalf("align contract: %v", err)
		}
		want = append(want, c.ID.String())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(want)))
	want = append(want, older.ID.String())

	got, err := repo.ListContracts(ctx, nil)
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("contracts: want=%d got=%d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID.String() != want[i] {
			t.Fatalf("contract %d: want=%s got=%s", i, want[i], got[i].ID)
		}
	}
}

func TestListContractTotals(t *testing.T) {
	db := testutil.DB(t)
	reports := repository.NewReportRepository(db)

	agent := testutil.SeedUser(t, db, model.UserRoleAgent, "Sara")
	pkg := testutil.SeedPackage(t, db, 6, "100000")
	testutil.SeedContract(t, db, agent, pkg, "100000")
	testutil.SeedContract(t, db, agent, pkg, "2500.50")

	rows, err := reports.ListContractTotals(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("ListContractTotals: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: want=2 got=%d", len(rows))
	}
	sum := rows[0].TotalAmount.Add(rows[1].TotalAmount)
	if !sum.Equal(model.MustParseMoney("102500.50")) {
		t.Fatalf("sum: want=102500.50 got=%s", sum)
	}
}

func ptr[T any](v T) *T { return &v }
