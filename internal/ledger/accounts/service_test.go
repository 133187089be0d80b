package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

type memoryRepo struct {
	nextID   int64
	accounts map[int64]Account
	posted   map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, accounts: make(map[int64]Account), posted: make(map[int64]bool)}
}

func (m *memoryRepo) GetByCode(_ context.Context, companyID int64, code string) (Account, error) {
	for _, a := range m.accounts {
		if a.CompanyID == companyID && a.Code == code {
			return a, nil
		}
	}
	return Account{}, shared.ErrAccountNotFound
}

func (m *memoryRepo) GetByID(_ context.Context, companyID, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok || a.CompanyID != companyID {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (m *memoryRepo) Insert(_ context.Context, acc Account) (Account, error) {
	for _, a := range m.accounts {
		if a.CompanyID == acc.CompanyID && a.Code == acc.Code {
			return Account{}, shared.ErrDuplicateCode
		}
	}
	acc.ID = m.nextID
	m.nextID++
	acc.CreatedAt = time.Now()
	acc.UpdatedAt = acc.CreatedAt
	m.accounts[acc.ID] = acc
	return acc, nil
}

func (m *memoryRepo) List(_ context.Context, companyID int64) ([]Account, error) {
	var out []Account
	for id := int64(1); id < m.nextID; id++ {
		if a, ok := m.accounts[id]; ok && a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryRepo) HasPostedEntries(_ context.Context, accountID int64) (bool, error) {
	return m.posted[accountID], nil
}

func (m *memoryRepo) Delete(_ context.Context, companyID, id int64) error {
	a, ok := m.accounts[id]
	if !ok || a.CompanyID != companyID {
		return shared.ErrAccountNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, companyID, id int64, active bool) error {
	a, ok := m.accounts[id]
	if !ok || a.CompanyID != companyID {
		return shared.ErrAccountNotFound
	}
	a.IsActive = active
	m.accounts[id] = a
	return nil
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	first, err := svc.GetOrCreate(ctx, 1, CodeCash, "Cash", ledger.AccountTypeAsset)
	require.NoError(t, err)
	require.True(t, first.IsSystem)

	second, err := svc.GetOrCreate(ctx, 1, CodeCash, "Cash", ledger.AccountTypeAsset)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.accounts, 1)
}

func TestGetOrCreateRequiresMetadataForMissingAccount(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.GetOrCreate(context.Background(), 1, "9999", "", "")
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestInitializeChartIsRepeatable(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	require.NoError(t, svc.InitializeChart(ctx, 1))
	count := len(repo.accounts)
	require.Equal(t, len(StandardChart), count)

	require.NoError(t, svc.InitializeChart(ctx, 1))
	require.Len(t, repo.accounts, count)
}

func TestInitializeChartIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	require.NoError(t, svc.InitializeChart(ctx, 1))
	require.NoError(t, svc.InitializeChart(ctx, 2))
	require.Len(t, repo.accounts, 2*len(StandardChart))
}

func TestCreateRejectsMismatchedParentType(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	parent, err := svc.Create(ctx, Account{CompanyID: 1, Code: "1500", Name: "Fixed Assets", Type: ledger.AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Account{CompanyID: 1, Code: "4500", Name: "Misc Income", Type: ledger.AccountTypeRevenue, ParentID: &parent.ID})
	require.ErrorIs(t, err, shared.ErrValidation)

	child, err := svc.Create(ctx, Account{CompanyID: 1, Code: "1510", Name: "Vehicles", Type: ledger.AccountTypeAsset, ParentID: &parent.ID})
	require.NoError(t, err)
	require.Equal(t, parent.ID, *child.ParentID)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(ctx, Account{CompanyID: 1, Code: "1500", Name: "Fixed Assets", Type: ledger.AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Account{CompanyID: 1, Code: "1500", Name: "Duplicate", Type: ledger.AccountTypeAsset})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestDeleteGuards(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)

	system, err := svc.GetOrCreate(ctx, 1, CodeCash, "Cash", ledger.AccountTypeAsset)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, 1, system.ID), shared.ErrSystemAccount)

	used, err := svc.Create(ctx, Account{CompanyID: 1, Code: "5500", Name: "Freight", Type: ledger.AccountTypeExpense})
	require.NoError(t, err)
	repo.posted[used.ID] = true
	require.ErrorIs(t, svc.Delete(ctx, 1, used.ID), shared.ErrAccountInUse)

	unused, err := svc.Create(ctx, Account{CompanyID: 1, Code: "5600", Name: "Travel", Type: ledger.AccountTypeExpense})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 1, unused.ID))
}

func TestTreeBuildsHierarchy(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo())

	parent, err := svc.Create(ctx, Account{CompanyID: 1, Code: "1500", Name: "Fixed Assets", Type: ledger.AccountTypeAsset})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Account{CompanyID: 1, Code: "1510", Name: "Vehicles", Type: ledger.AccountTypeAsset, ParentID: &parent.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Account{CompanyID: 1, Code: "2100", Name: "Payable", Type: ledger.AccountTypeLiability})
	require.NoError(t, err)

	roots, err := svc.Tree(ctx, 1)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	require.Equal(t, "1500", roots[0].Account.Code)
	require.Len(t, roots[0].Children, 1)
	require.Equal(t, "1510", roots[0].Children[0].Account.Code)
}

func TestResolverCachesWithinScope(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo)
	resolver := NewResolver(svc, 1)

	first, err := resolver.System(ctx, CodeSales)
	require.NoError(t, err)
	second, err := resolver.System(ctx, CodeSales)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, repo.accounts, 1)

	_, err = resolver.System(ctx, "0000")
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}
