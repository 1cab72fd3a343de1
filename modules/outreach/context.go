package outreach

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

func withOwner(ctx context.Context, owner uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

func ownerFromContext(ctx context.Context) uuid.UUID {
	owner, _ := ctx.Value(ownerKey).(uuid.UUID)
	return owner
}

var errNilOwner = errors.New("nil owner id")

func parseOwner(raw string) (uuid.UUID, error) {
	owner, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if owner == uuid.Nil {
		return uuid.Nil, errNilOwner
	}
	return owner, nil
}
