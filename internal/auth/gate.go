package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"multipost-bot/internal/database"
	"multipost-bot/internal/database/models"
)

// GateInterface is implemented by Gate and by test mocks.
type GateInterface interface {
	Authorize(ctx context.Context, userID int64, roles ...models.Role) (bool, error)
	Role(ctx context.Context, userID int64) (models.Role, error)
}

// Gate checks a requester's stored role before an operation is allowed.
// Unknown users and the `user` role are denied everything.
type Gate struct {
	users database.UserRepository
}

// NewGate creates a new Gate. The user repository must not be nil.
func NewGate(users database.UserRepository) (*Gate, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository cannot be nil")
	}
	return &Gate{users: users}, nil
}

// Authorize reports whether the user's stored role is one of the given
// roles. A missing user record is a plain deny, not an error.
func (g *Gate) Authorize(ctx context.Context, userID int64, roles ...models.Role) (bool, error) {
	role, err := g.Role(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		// Deny on lookup failure; the caller decides whether to surface it.
		log.Printf("[RoleGate User:%d] Error fetching user: %v. Denying.", userID, err)
		return false, err
	}

	for _, allowed := range roles {
		if role == allowed {
			return true, nil
		}
	}
	return false, nil
}

// Role returns the stored role of the user, or database.ErrNotFound.
func (g *Gate) Role(ctx context.Context, userID int64) (models.Role, error) {
	user, err := g.users.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}
