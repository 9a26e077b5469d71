package roblox

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
)

// EconomyProvider reads balances and memberships.
type EconomyProvider struct {
	s *Session
}

// Currency returns the robux balance of user. Only the authenticated user's
// own balance is visible.
func (p *EconomyProvider) Currency(ctx context.Context, user entity.Identifier) (int64, error) {
	body, err := p.s.get(ctx, "economy", fmt.Sprintf("v1/users/%d/currency", user.EntityID()), nil)
	if err != nil {
		return 0, fmt.Errorf("get currency of %d: %w", user.EntityID(), err)
	}
	return gjson.GetBytes(body, "robux").Int(), nil
}

// HasPremium reports whether user holds a premium membership.
func (p *EconomyProvider) HasPremium(ctx context.Context, user entity.Identifier) (bool, error) {
	body, err := p.s.get(ctx, "premiumfeatures", fmt.Sprintf("v1/users/%d/validate-membership", user.EntityID()), nil)
	if err != nil {
		return false, fmt.Errorf("validate membership of %d: %w", user.EntityID(), err)
	}
	return gjson.ParseBytes(body).Bool(), nil
}
