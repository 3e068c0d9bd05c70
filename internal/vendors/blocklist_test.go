package vendors

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeBlocklistStore struct {
	members map[string]bool
}

func newFakeBlocklistStore() *fakeBlocklistStore {
	return &fakeBlocklistStore{members: map[string]bool{}}
}

func (f *fakeBlocklistStore) SAdd(ctx context.Context, key string, members ...any) error {
	for _, member := range members {
		f.members[member.(string)] = true
	}
	return nil
}

func (f *fakeBlocklistStore) SRem(ctx context.Context, key string, members ...any) error {
	for _, member := range members {
		delete(f.members, member.(string))
	}
	return nil
}

func (f *fakeBlocklistStore) SIsMember(ctx context.Context, key string, member any) (bool, error) {
	return f.members[member.(string)], nil
}

func (f *fakeBlocklistStore) SMembers(ctx context.Context, key string) ([]string, error) {
	out := make([]string, 0, len(f.members))
	for member := range f.members {
		out = append(out, member)
	}
	return out, nil
}

func (f *fakeBlocklistStore) VendorBlocklistKey() string {
	return "rk:vendor_blocklist"
}

func TestBlocklistRoundTrip(t *testing.T) {
	t.Parallel()

	list, err := NewBlocklist(newFakeBlocklistStore())
	if err != nil {
		t.Fatalf("new blocklist: %v", err)
	}
	ctx := context.Background()
	vendorID := uuid.New()

	blocked, err := list.IsBlocked(ctx, vendorID)
	if err != nil {
		t.Fatalf("is blocked: %v", err)
	}
	if blocked {
		t.Fatal("expected vendor to start unblocked")
	}

	if err := list.Block(ctx, vendorID); err != nil {
		t.Fatalf("block: %v", err)
	}
	blocked, err = list.IsBlocked(ctx, vendorID)
	if err != nil {
		t.Fatalf("is blocked: %v", err)
	}
	if !blocked {
		t.Fatal("expected vendor to be blocked")
	}

	ids, err := list.ListBlocked(ctx)
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(ids) != 1 || ids[0] != vendorID {
		t.Fatalf("unexpected blocklist contents %v", ids)
	}

	if err := list.Unblock(ctx, vendorID); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	blocked, err = list.IsBlocked(ctx, vendorID)
	if err != nil {
		t.Fatalf("is blocked: %v", err)
	}
	if blocked {
		t.Fatal("expected vendor to be unblocked again")
	}
}

func TestBlocklistRejectsNilVendor(t *testing.T) {
	t.Parallel()

	list, err := NewBlocklist(newFakeBlocklistStore())
	if err != nil {
		t.Fatalf("new blocklist: %v", err)
	}

	if _, err := list.IsBlocked(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected validation error for nil vendor id")
	}
	if err := list.Block(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected validation error for nil vendor id")
	}
}
