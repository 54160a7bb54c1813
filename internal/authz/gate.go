package authz

import (
	"context"
	"log/slog"

	"devhub/internal/identity"
	"devhub/internal/middleware"
	"devhub/internal/models"
)

// TokenVerifier validates a session token.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*identity.Claims, error)
}

// RoleLookup loads the immutable role of a profile.
type RoleLookup interface {
	GetRole(ctx context.Context, profileID uint) (models.Role, error)
}

// Gate turns bearer tokens into identities.
type Gate struct {
	verifier TokenVerifier
	roles    RoleLookup
}

// NewGate creates a Gate.
func NewGate(verifier TokenVerifier, roles RoleLookup) *Gate {
	return &Gate{verifier: verifier, roles: roles}
}

// Identify resolves token to an Identity. Any failure, including a token for
// an account without a profile, yields Anonymous.
func (g *Gate) Identify(ctx context.Context, token string) Identity {
	if token == "" || g.verifier == nil {
		return Anonymous()
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return Anonymous()
	}

	id := g.IdentifyAccount(ctx, claims.AccountID)
	if id.Authenticated() {
		id.TokenID = claims.TokenID
	}
	return id
}

// IdentifyAccount builds the identity of an already authenticated account,
// e.g. one redeemed from a WebSocket ticket.
func (g *Gate) IdentifyAccount(ctx context.Context, accountID uint) Identity {
	if accountID == 0 || g.roles == nil {
		return Anonymous()
	}

	role, err := g.roles.GetRole(ctx, accountID)
	if err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			middleware.Logger.WarnContext(ctx, "role lookup failed",
				slog.Uint64("account_id", uint64(accountID)),
				slog.String("error", err.Error()))
		}
		return Anonymous()
	}

	return Identity{AccountID: accountID, Role: role}
}
