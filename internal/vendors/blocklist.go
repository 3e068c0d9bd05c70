package vendors

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/rentkart/rentkart-backend/pkg/errors"
)

type blocklistStore interface {
	SAdd(ctx context.Context, key string, members ...any) error
	SRem(ctx context.Context, key string, members ...any) error
	SIsMember(ctx context.Context, key string, member any) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	VendorBlocklistKey() string
}

// Blocklist tracks vendors suspended from receiving new quotations.
type Blocklist interface {
	IsBlocked(ctx context.Context, vendorID uuid.UUID) (bool, error)
	Block(ctx context.Context, vendorID uuid.UUID) error
	Unblock(ctx context.Context, vendorID uuid.UUID) error
	ListBlocked(ctx context.Context) ([]uuid.UUID, error)
}

type blocklist struct {
	store blocklistStore
}

// NewBlocklist builds a blocklist backed by a redis set.
func NewBlocklist(store blocklistStore) (Blocklist, error) {
	if store == nil {
		return nil, fmt.Errorf("blocklist store required")
	}
	return &blocklist{store: store}, nil
}

func (b *blocklist) IsBlocked(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	if vendorID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	blocked, err := b.store.SIsMember(ctx, b.store.VendorBlocklistKey(), vendorID.String())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vendor blocklist")
	}
	return blocked, nil
}

func (b *blocklist) Block(ctx context.Context, vendorID uuid.UUID) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if err := b.store.SAdd(ctx, b.store.VendorBlocklistKey(), vendorID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "block vendor")
	}
	return nil
}

func (b *blocklist) Unblock(ctx context.Context, vendorID uuid.UUID) error {
	if vendorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if err := b.store.SRem(ctx, b.store.VendorBlocklistKey(), vendorID.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unblock vendor")
	}
	return nil
}

func (b *blocklist) ListBlocked(ctx context.Context) ([]uuid.UUID, error) {
	members, err := b.store.SMembers(ctx, b.store.VendorBlocklistKey())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blocked vendors")
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
