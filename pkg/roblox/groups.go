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

// GroupShout is the status message pinned on a group.
type GroupShout struct {
	Body    string
	Poster  *User
	Created time.Time
	Updated time.Time
}

// GroupDetails holds the fields the group endpoint returns.
type GroupDetails struct {
	Description        string
	MemberCount        int64
	PublicEntryAllowed bool
	IsLocked           bool
	HasVerifiedBadge   bool

	// Owner is nil for ownerless groups.
	Owner *User
	Shout *GroupShout
}

// Group is a platform group.
type Group struct {
	entity.Base
	session *Session

	Name    string
	Details *GroupDetails
}

// Kind implements entity.Entity.
func (g *Group) Kind() entity.Kind { return entity.KindGroup }

// Resolved reports whether g holds the fully fetched form.
func (g *Group) Resolved() bool { return g.Details != nil }

// Link returns the group page URL.
func (g *Group) Link() string {
	return g.session.urls.URLf("www", "communities/%d/about", g.ID)
}

// String implements fmt.Stringer.
func (g *Group) String() string {
	return fmt.Sprintf("Group(%d, %s)", g.ID, g.Name)
}

// Refresh fetches a new snapshot of g and replaces the cache entry.
func (g *Group) Refresh(ctx context.Context) (*Group, error) {
	return refreshed(ctx, g.session, cache.BucketGroups, g.ID, g.session.Groups.fetch)
}

// Members iterates the group's members with their roles.
func (g *Group) Members(pageSize int) *pagination.Iterator[*GroupMember] {
	return g.session.Groups.Members(g, pageSize)
}

// GroupRole is a rank within a group.
type GroupRole struct {
	ID   int64
	Name string
	Rank int
}

// GroupMember is a user's membership in a group.
type GroupMember struct {
	*User
	Group entity.Identifier
	Role  GroupRole
}

// GroupProvider looks up groups. It implements entity.Source[*Group].
type GroupProvider struct {
	s *Session
}

// Base returns an id-only group without a request.
func (p *GroupProvider) Base(id int64) (*Group, error) {
	base, err := entity.NewBase(id)
	if err != nil {
		return nil, err
	}
	return &Group{Base: base, session: p.s}, nil
}

// Partial builds a group from the id and the name of an embedding payload.
func (p *GroupProvider) Partial(base entity.Base, fragment gjson.Result) *Group {
	return &Group{Base: base, session: p.s, Name: fragment.Get("name").String()}
}

// Get returns the group with id, fetching it at most once per session.
func (p *GroupProvider) Get(ctx context.Context, id int64) (*Group, error) {
	return cached(ctx, p.s, cache.BucketGroups, id, p.fetch)
}

// Members iterates the members of group.
func (p *GroupProvider) Members(group entity.Identifier, pageSize int) *pagination.Iterator[*GroupMember] {
	rawURL := p.s.urls.URLf("groups", "v1/groups/%d/users", group.EntityID())
	return pagination.New(p.s.transport, rawURL, pageSize,
		func(_ context.Context, item gjson.Result) (*GroupMember, error) {
			user := item.Get("user")
			base, err := entity.BaseFrom(user, "userId", "id")
			if err != nil {
				return nil, err
			}
			role := item.Get("role")
			return &GroupMember{
				User:  p.s.Users.Partial(base, user),
				Group: group,
				Role: GroupRole{
					ID:   role.Get("id").Int(),
					Name: role.Get("name").String(),
					Rank: int(role.Get("rank").Int()),
				},
			}, nil
		})
}

func (p *GroupProvider) fetch(ctx context.Context, id int64) (*Group, error) {
	body, err := p.s.get(ctx, "groups", "v1/groups/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("get group %d: %w", id, err)
	}
	return p.fromPayload(ctx, gjson.ParseBytes(body))
}

func (p *GroupProvider) fromPayload(ctx context.Context, data gjson.Result) (*Group, error) {
	base, err := entity.BaseFrom(data)
	if err != nil {
		return nil, err
	}
	g := &Group{
		Base:    base,
		session: p.s,
		Name:    data.Get("name").String(),
		Details: &GroupDetails{
			Description:        data.Get("description").String(),
			MemberCount:        data.Get("memberCount").Int(),
			PublicEntryAllowed: data.Get("publicEntryAllowed").Bool(),
			IsLocked:           data.Get("isLocked").Bool(),
			HasVerifiedBadge:   data.Get("hasVerifiedBadge").Bool(),
		},
	}
	ref := entity.RefOf(g)

	shout := data.Get("shout")
	err = p.s.resolveSiblings(ctx,
		func(ctx context.Context) error {
			owner, err := entity.ResolveOptional[*User](ctx, p.s, p.s.Users, ref,
				entity.Embedded(data, "owner", "userId", "id"))
			g.Details.Owner = owner
			return err
		},
		func(ctx context.Context) error {
			if !entity.Present(shout) {
				return nil
			}
			poster, err := entity.Resolve[*User](ctx, p.s, p.s.Users, ref,
				entity.Embedded(shout, "poster", "userId", "id"))
			if err != nil {
				return err
			}
			g.Details.Shout = &GroupShout{
				Body:    shout.Get("body").String(),
				Poster:  poster,
				Created: timeAt(shout.Get("created")),
				Updated: timeAt(shout.Get("updated")),
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
