package accounts

import (
	"context"
	"fmt"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// Resolver caches account lookups for the duration of a single posting
// call. It is created per operation and must not be shared across requests
// or companies.
type Resolver struct {
	svc       *Service
	companyID int64
	cache     map[string]Account
}

// NewResolver scopes a resolver to one company for one posting operation.
func NewResolver(svc *Service, companyID int64) *Resolver {
	return &Resolver{svc: svc, companyID: companyID, cache: make(map[string]Account)}
}

// System resolves a well-known system account code, creating the account
// from the standard chart definition on first use.
func (r *Resolver) System(ctx context.Context, code string) (Account, error) {
	if acc, ok := r.cache[code]; ok {
		return acc, nil
	}
	def, ok := standardDefinition(code)
	if !ok {
		return Account{}, fmt.Errorf("%w: %q is not a system account code", shared.ErrAccountNotFound, code)
	}
	acc, err := r.svc.GetOrCreate(ctx, r.companyID, def.Code, def.Name, def.Type)
	if err != nil {
		return Account{}, err
	}
	r.cache[code] = acc
	return acc, nil
}

func standardDefinition(code string) (Definition, bool) {
	for _, def := range StandardChart {
		if def.Code == code {
			return def, true
		}
	}
	return Definition{}, false
}
