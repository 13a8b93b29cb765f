package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Store represents one storefront of the multi-tenant deployment.
type Store struct {
	shared.BaseAggregateRoot
	Name              string
	HostName          string // host name this store answers on
	DefaultCurrencyID *uuid.UUID
	DefaultLanguageID *uuid.UUID
	DisplayOrder      int
}

// NewStore creates a new store
func NewStore(name, hostName string) (*Store, error) {
	name = strings.TrimSpace(name)
	hostName = strings.ToLower(strings.TrimSpace(hostName))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_STORE_NAME", "Store name cannot be empty")
	}
	if hostName == "" {
		return nil, shared.NewDomainError("INVALID_STORE_HOST", "Store host name cannot be empty")
	}

	return &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		HostName:          hostName,
	}, nil
}
