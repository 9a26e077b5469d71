package roblox

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// Asset is an item held in a user's inventory.
type Asset struct {
	entity.Base
	session *Session

	Name      string
	AssetType AssetType
	Created   time.Time
	Updated   time.Time

	// Owner is nil when the listing omits it.
	Owner *User
}

// Kind implements entity.Entity.
func (a *Asset) Kind() entity.Kind { return entity.KindAsset }

// Link returns the catalog page URL.
func (a *Asset) Link() string {
	return a.session.urls.URLf("www", "catalog/%d", a.ID)
}

// String implements fmt.Stringer.
func (a *Asset) String() string {
	return fmt.Sprintf("Asset(%d, %s)", a.ID, a.Name)
}

// InventoryProvider reads user inventories.
type InventoryProvider struct {
	s *Session
}

// CanView reports whether the inventory of user is visible to the session.
func (p *InventoryProvider) CanView(ctx context.Context, user entity.Identifier) (bool, error) {
	body, err := p.s.get(ctx, "inventory", fmt.Sprintf("v1/users/%d/can-view-inventory", user.EntityID()), nil)
	if err != nil {
		return false, fmt.Errorf("can view inventory of %d: %w", user.EntityID(), err)
	}
	return gjson.GetBytes(body, "canView").Bool(), nil
}

// Assets iterates the assets of one type held by user.
func (p *InventoryProvider) Assets(user entity.Identifier, assetType AssetType, pageSize int) *pagination.Iterator[*Asset] {
	rawURL := p.s.urls.URLf("inventory", "v2/users/%d/inventory/%d", user.EntityID(), assetType)
	return pagination.New(p.s.transport, rawURL, pageSize,
		func(ctx context.Context, item gjson.Result) (*Asset, error) {
			base, err := entity.BaseFrom(item, "assetId", "id")
			if err != nil {
				return nil, err
			}
			a := &Asset{
				Base:      base,
				session:   p.s,
				Name:      firstString(item, "assetName", "name"),
				AssetType: assetType,
				Created:   timeAt(item.Get("created")),
				Updated:   timeAt(item.Get("updated")),
			}
			a.Owner, err = entity.ResolveOptional[*User](ctx, p.s, p.s.Users, entity.RefOf(a),
				entity.Embedded(item, "owner", "userId", "id"))
			if err != nil {
				return nil, err
			}
			return a, nil
		})
}
