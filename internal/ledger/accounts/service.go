package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// Service manages the chart of accounts.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the chart of accounts service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the account with the given code, creating it as a
// system account when absent and name/type metadata is supplied. It has no
// side effects when the account already exists.
func (s *Service) GetOrCreate(ctx context.Context, companyID int64, code, name string, typ ledger.AccountType) (Account, error) {
	acc, err := s.repo.GetByCode(ctx, companyID, code)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, shared.ErrAccountNotFound) {
		return Account{}, err
	}
	if name == "" || !typ.Valid() {
		return Account{}, fmt.Errorf("%w: account %q missing and no create metadata", shared.ErrAccountNotFound, code)
	}
	created, err := s.repo.Insert(ctx, Account{
		CompanyID: companyID,
		Code:      code,
		Name:      name,
		Type:      typ,
		IsSystem:  true,
		IsActive:  true,
	})
	if errors.Is(err, shared.ErrDuplicateCode) {
		// Lost a create race; the row exists now.
		return s.repo.GetByCode(ctx, companyID, code)
	}
	return created, err
}

// InitializeChart idempotently ensures the standard account set exists for
// the company. Safe to call on every request.
func (s *Service) InitializeChart(ctx context.Context, companyID int64) error {
	for _, def := range StandardChart {
		if _, err := s.GetOrCreate(ctx, companyID, def.Code, def.Name, def.Type); err != nil {
			return fmt.Errorf("accounts: initialize chart %s: %w", def.Code, err)
		}
	}
	return nil
}

// Create adds a user-defined account.
func (s *Service) Create(ctx context.Context, acc Account) (Account, error) {
	acc.Code = strings.TrimSpace(acc.Code)
	if acc.Code == "" || strings.TrimSpace(acc.Name) == "" {
		return Account{}, fmt.Errorf("%w: code and name required", shared.ErrValidation)
	}
	if !acc.Type.Valid() {
		return Account{}, fmt.Errorf("%w: unknown account type %q", shared.ErrValidation, acc.Type)
	}
	if acc.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, acc.CompanyID, *acc.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Type != acc.Type {
			return Account{}, fmt.Errorf("%w: parent type %s does not match %s", shared.ErrValidation, parent.Type, acc.Type)
		}
	}
	acc.IsActive = true
	return s.repo.Insert(ctx, acc)
}

// Get fetches a single account scoped to the company.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Account, error) {
	return s.repo.GetByID(ctx, companyID, id)
}

// GetByCode fetches an account by its company-scoped code.
func (s *Service) GetByCode(ctx context.Context, companyID int64, code string) (Account, error) {
	return s.repo.GetByCode(ctx, companyID, code)
}

// List returns the company's accounts ordered by code.
func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.List(ctx, companyID)
}

// TreeNode is an account with its children, for chart displays.
type TreeNode struct {
	Account  Account
	Children []*TreeNode
}

// Tree assembles the parent/child hierarchy from the flat account list.
func (s *Service) Tree(ctx context.Context, companyID int64) ([]*TreeNode, error) {
	accs, err := s.repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	nodes := make(map[int64]*TreeNode, len(accs))
	for _, a := range accs {
		nodes[a.ID] = &TreeNode{Account: a}
	}
	var roots []*TreeNode
	for _, a := range accs {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// Delete removes an account. System accounts and accounts referenced by
// posted entries are protected; reversal is the only supported correction.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	acc, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return err
	}
	if acc.IsSystem {
		return shared.ErrSystemAccount
	}
	used, err := s.repo.HasPostedEntries(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.ErrAccountInUse
	}
	return s.repo.Delete(ctx, companyID, id)
}

// Deactivate hides an account from new postings without deleting history.
func (s *Service) Deactivate(ctx context.Context, companyID, id int64) error {
	return s.repo.SetActive(ctx, companyID, id, false)
}
