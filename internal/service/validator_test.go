package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuseats/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestValidator(f *fakeStore) *EligibilityValidator {
	return NewEligibilityValidator(f, f, f, zap.NewNop())
}

func TestCanCreate_StallMustExist(t *testing.T) {
	f := newFakeStore()
	v := newTestValidator(f)

	userID := f.addUser("alice")
	if err := v.CanCreate(context.Background(), userID, uuid.New(), nil); !errors.Is(err, domain.ErrStallNotFound) {
		t.Fatalf("expected ErrStallNotFound, got %v", err)
	}
}

func TestCanCreate_OrderChecksRunInOrder(t *testing.T) {
	f := newFakeStore()
	v := newTestValidator(f)
	ctx := context.Background()

	userID := f.addUser("alice")
	stallID := f.addStall("noodles")

	// missing order
	phantom := uuid.New()
	if err := v.CanCreate(ctx, userID, stallID, &phantom); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	// an order for another stall is rejected even though it is completed
	otherStall := f.addStall("dumplings")
	mismatched := f.addOrder(userID, otherStall, domain.OrderStatusCompleted)
	if err := v.CanCreate(ctx, userID, stallID, &mismatched); !errors.Is(err, domain.ErrOrderStallMismatch) {
		t.Fatalf("expected ErrOrderStallMismatch, got %v", err)
	}

	// unfinished orders cannot be reviewed
	for _, status := range []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPreparing, domain.OrderStatusCancelled} {
		orderID := f.addOrder(userID, stallID, status)
		if err := v.CanCreate(ctx, userID, stallID, &orderID); !errors.Is(err, domain.ErrOrderNotCompleted) {
			t.Fatalf("status %s: expected ErrOrderNotCompleted, got %v", status, err)
		}
	}

	completed := f.addOrder(userID, stallID, domain.OrderStatusCompleted)
	if err := v.CanCreate(ctx, userID, stallID, &completed); err != nil {
		t.Fatalf("completed order: unexpected error: %v", err)
	}

	// once the order has a review, the next attempt is a duplicate
	f.reviews[uuid.New()] = &domain.Review{
		ID:      uuid.New(),
		UserID:  userID,
		StallID: stallID,
		OrderID: &completed,
		Rating:  4.0,
	}
	if err := v.CanCreate(ctx, userID, stallID, &completed); !errors.Is(err, domain.ErrDuplicateOrderReview) {
		t.Fatalf("expected ErrDuplicateOrderReview, got %v", err)
	}
}

func TestCanCreate_StandaloneDuplicate(t *testing.T) {
	f := newFakeStore()
	v := newTestValidator(f)
	ctx := context.Background()

	userID := f.addUser("alice")
	stallID := f.addStall("noodles")

	if err := v.CanCreate(ctx, userID, stallID, nil); err != nil {
		t.Fatalf("first standalone review: unexpected error: %v", err)
	}

	f.seedReview(userID, stallID, 4.0, time.Now())
	if err := v.CanCreate(ctx, userID, stallID, nil); !errors.Is(err, domain.ErrDuplicateStallReview) {
		t.Fatalf("expected ErrDuplicateStallReview, got %v", err)
	}

	// another user is free to review the same stall
	otherID := f.addUser("bob")
	if err := v.CanCreate(ctx, otherID, stallID, nil); err != nil {
		t.Fatalf("other user: unexpected error: %v", err)
	}
}

func TestCanMutate_OwnerOnly(t *testing.T) {
	f := newFakeStore()
	v := newTestValidator(f)

	ownerID := f.addUser("alice")
	strangerID := f.addUser("mallory")
	review := &domain.Review{ID: uuid.New(), UserID: ownerID}

	if err := v.CanMutate(ownerID, review); err != nil {
		t.Fatalf("owner: unexpected error: %v", err)
	}
	if err := v.CanMutate(strangerID, review); !errors.Is(err, domain.ErrNotReviewOwner) {
		t.Fatalf("stranger: expected ErrNotReviewOwner, got %v", err)
	}
}
