package roblox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// UserDisplay holds the name fields most payloads embed with a user id.
type UserDisplay struct {
	Name             string
	DisplayName      string
	HasVerifiedBadge bool
}

// UserProfile holds the fields only the user endpoint returns.
type UserProfile struct {
	Description string
	Created     time.Time
	IsBanned    bool
}

// User is a platform account. Display and Profile are nil when the payload
// the user was built from did not carry them.
type User struct {
	entity.Base
	session *Session

	Display *UserDisplay
	Profile *UserProfile
}

// Kind implements entity.Entity.
func (u *User) Kind() entity.Kind { return entity.KindUser }

// Resolved reports whether u holds the fully fetched form.
func (u *User) Resolved() bool { return u.Profile != nil }

// Name returns the username, or "" for a stub without display fields.
func (u *User) Name() string {
	if u.Display == nil {
		return ""
	}
	return u.Display.Name
}

// DisplayName returns the display name, or "" for a stub without display fields.
func (u *User) DisplayName() string {
	if u.Display == nil {
		return ""
	}
	return u.Display.DisplayName
}

// Link returns the profile page URL.
func (u *User) Link() string {
	return u.session.urls.URLf("www", "users/%d/profile", u.ID)
}

// String implements fmt.Stringer.
func (u *User) String() string {
	if name := u.Name(); name != "" {
		return fmt.Sprintf("User(%d, %s)", u.ID, name)
	}
	return fmt.Sprintf("User(%d)", u.ID)
}

// Refresh fetches a new snapshot of u and replaces the cache entry. u is not modified.
func (u *User) Refresh(ctx context.Context) (*User, error) {
	return refreshed(ctx, u.session, cache.BucketUsers, u.ID, u.session.Users.fetch)
}

// Presence returns the user's current presence.
func (u *User) Presence(ctx context.Context) (*Presence, error) {
	return u.session.Presence.Get(ctx, u)
}

// Friends returns the user's friends.
func (u *User) Friends(ctx context.Context) ([]*Friend, error) {
	return u.session.Friends.List(ctx, u)
}

// MutualFriends returns the friends u shares with other.
func (u *User) MutualFriends(ctx context.Context, other entity.Identifier) ([]*Friend, error) {
	return u.session.Friends.Mutual(ctx, u, other)
}

// Badges iterates the badges awarded to the user, newest first.
func (u *User) Badges(pageSize int) *pagination.Iterator[*UserBadge] {
	return u.session.Badges.UserBadges(u, pageSize)
}

// Games iterates the universes the user created.
func (u *User) Games(pageSize int) *pagination.Iterator[*Universe] {
	return u.session.Universes.UserGames(u, pageSize)
}

// Inventory iterates the user's assets of one type.
func (u *User) Inventory(assetType AssetType, pageSize int) *pagination.Iterator[*Asset] {
	return u.session.Inventory.Assets(u, assetType, pageSize)
}

// CanViewInventory reports whether the user's inventory is visible to the session.
func (u *User) CanViewInventory(ctx context.Context) (bool, error) {
	return u.session.Inventory.CanView(ctx, u)
}

// Currency returns the user's robux balance.
func (u *User) Currency(ctx context.Context) (int64, error) {
	return u.session.Economy.Currency(ctx, u)
}

// HasPremium reports whether the user holds a premium membership.
func (u *User) HasPremium(ctx context.Context) (bool, error) {
	return u.session.Economy.HasPremium(ctx, u)
}

// Thumbnail returns one user thumbnail.
func (u *User) Thumbnail(ctx context.Context, kind UserThumbnailType, opts ThumbnailOptions) (*Thumbnail, error) {
	thumbs, err := u.session.Thumbnails.Users(ctx, []entity.Identifier{u}, kind, opts)
	if err != nil {
		return nil, err
	}
	if len(thumbs) == 0 {
		return nil, fmt.Errorf("thumbnail for user %d: %w", u.ID, ErrNotFound)
	}
	return thumbs[0], nil
}

// Avatar returns the user's avatar configuration.
func (u *User) Avatar(ctx context.Context) (*AvatarDetails, error) {
	return u.session.Avatar.Details(ctx, u)
}

// CurrentlyWearing returns the asset ids the user's avatar wears.
func (u *User) CurrentlyWearing(ctx context.Context) ([]int64, error) {
	return u.session.Avatar.CurrentlyWearing(ctx, u)
}

// Outfits iterates the user's saved outfits.
func (u *User) Outfits(outfitType OutfitType, pageSize int) *pagination.Iterator[*Outfit] {
	return u.session.Avatar.Outfits(u, outfitType, pageSize)
}

// UserProvider looks up users. It implements entity.Source[*User].
type UserProvider struct {
	s *Session
}

// Base returns an id-only user without a request.
func (p *UserProvider) Base(id int64) (*User, error) {
	base, err := entity.NewBase(id)
	if err != nil {
		return nil, err
	}
	return &User{Base: base, session: p.s}, nil
}

// Partial builds a user from the id and the display fields of an embedding payload.
func (p *UserProvider) Partial(base entity.Base, fragment gjson.Result) *User {
	return &User{Base: base, session: p.s, Display: userDisplay(fragment)}
}

// Get returns the user with id, fetching it at most once per session.
func (p *UserProvider) Get(ctx context.Context, id int64) (*User, error) {
	return cached(ctx, p.s, cache.BucketUsers, id, p.fetch)
}

// Authenticated returns the user the session's token belongs to.
func (p *UserProvider) Authenticated(ctx context.Context) (*AuthenticatedUser, error) {
	body, err := p.s.get(ctx, "users", "v1/users/authenticated", nil)
	if err != nil {
		return nil, fmt.Errorf("get authenticated user: %w", err)
	}
	base, err := entity.BaseFrom(gjson.ParseBytes(body))
	if err != nil {
		return nil, err
	}
	u, err := p.Get(ctx, base.ID)
	if err != nil {
		return nil, err
	}
	return &AuthenticatedUser{User: u}, nil
}

// ByUsernames resolves usernames to users carrying display fields. Unknown
// names are omitted.
func (p *UserProvider) ByUsernames(ctx context.Context, usernames []string, excludeBanned bool) ([]*User, error) {
	body, err := p.s.post(ctx, "users", "v1/usernames/users", map[string]any{
		"usernames":          usernames,
		"excludeBannedUsers": excludeBanned,
	})
	if err != nil {
		return nil, fmt.Errorf("get users by username: %w", err)
	}
	return p.list(gjson.GetBytes(body, "data"))
}

// ByUsername resolves a single username.
func (p *UserProvider) ByUsername(ctx context.Context, username string, excludeBanned bool) (*User, error) {
	users, err := p.ByUsernames(ctx, []string{username}, excludeBanned)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return users[0], nil
}

// ByIDs resolves ids to users carrying display fields. Unknown ids are omitted.
func (p *UserProvider) ByIDs(ctx context.Context, ids []int64, excludeBanned bool) ([]*User, error) {
	body, err := p.s.post(ctx, "users", "v1/users", map[string]any{
		"userIds":            ids,
		"excludeBannedUsers": excludeBanned,
	})
	if err != nil {
		return nil, fmt.Errorf("get users by id: %w", err)
	}
	return p.list(gjson.GetBytes(body, "data"))
}

func (p *UserProvider) list(data gjson.Result) ([]*User, error) {
	users := make([]*User, 0, len(data.Array()))
	for _, item := range data.Array() {
		base, err := entity.BaseFrom(item, "id", "userId")
		if err != nil {
			return nil, err
		}
		users = append(users, p.Partial(base, item))
	}
	return users, nil
}

func (p *UserProvider) fetch(ctx context.Context, id int64) (*User, error) {
	body, err := p.s.get(ctx, "users", "v1/users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return p.fromPayload(gjson.ParseBytes(body))
}

// fromPayload builds the full form from a users endpoint payload.
func (p *UserProvider) fromPayload(data gjson.Result) (*User, error) {
	base, err := entity.BaseFrom(data, "id", "userId")
	if err != nil {
		return nil, err
	}
	return &User{
		Base:    base,
		session: p.s,
		Display: userDisplay(data),
		Profile: &UserProfile{
			Description: data.Get("description").String(),
			Created:     timeAt(data.Get("created")),
			IsBanned:    data.Get("isBanned").Bool(),
		},
	}, nil
}

// userDisplay reads the name fields under either naming the platform uses.
func userDisplay(v gjson.Result) *UserDisplay {
	name := firstString(v, "name", "username")
	display := v.Get("displayName").String()
	if name == "" && display == "" {
		return nil
	}
	return &UserDisplay{
		Name:             name,
		DisplayName:      display,
		HasVerifiedBadge: v.Get("hasVerifiedBadge").Bool(),
	}
}

func firstString(v gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := v.Get(p); s.Type == gjson.String && s.Str != "" {
			return s.Str
		}
	}
	return ""
}
