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

// BadgeStatistics holds award counters of a badge.
type BadgeStatistics struct {
	PastDayAwardedCount int64
	AwardedCount        int64
	WinRatePercentage   float64
}

// BadgeDetails holds the fields the badge endpoints return.
type BadgeDetails struct {
	Description string
	Enabled     bool
	IconImageID int64
	Created     time.Time
	Updated     time.Time
	Statistics  BadgeStatistics
}

// Badge is an award a universe grants to players.
type Badge struct {
	entity.Base
	session *Session

	Name string

	// AwardingUniverse is nil when the payload omits it, as universe badge
	// listings do.
	AwardingUniverse *Universe

	Details *BadgeDetails
}

// Kind implements entity.Entity.
func (b *Badge) Kind() entity.Kind { return entity.KindBadge }

// Resolved reports whether b holds the fully fetched form.
func (b *Badge) Resolved() bool { return b.Details != nil }

// Link returns the badge page URL.
func (b *Badge) Link() string {
	return b.session.urls.URLf("www", "badges/%d/badge", b.ID)
}

// String implements fmt.Stringer.
func (b *Badge) String() string {
	return fmt.Sprintf("Badge(%d, %s)", b.ID, b.Name)
}

// Refresh fetches a new snapshot of b and replaces the cache entry.
func (b *Badge) Refresh(ctx context.Context) (*Badge, error) {
	return refreshed(ctx, b.session, cache.BucketBadges, b.ID, b.session.Badges.fetch)
}

// Icon returns the badge icon.
func (b *Badge) Icon(ctx context.Context, opts ThumbnailOptions) (*Thumbnail, error) {
	thumbs, err := b.session.Thumbnails.BadgeIcons(ctx, []entity.Identifier{b}, opts)
	if err != nil {
		return nil, err
	}
	if len(thumbs) == 0 {
		return nil, fmt.Errorf("icon for badge %d: %w", b.ID, ErrNotFound)
	}
	return thumbs[0], nil
}

// UserBadge is a badge as listed in a user's awarded badges.
type UserBadge struct {
	*Badge

	// Awarder is the place the badge was earned in.
	Awarder *Place
}

// BadgeProvider looks up badges. It implements entity.Source[*Badge].
type BadgeProvider struct {
	s *Session
}

// Base returns an id-only badge without a request.
func (p *BadgeProvider) Base(id int64) (*Badge, error) {
	base, err := entity.NewBase(id)
	if err != nil {
		return nil, err
	}
	return &Badge{Base: base, session: p.s}, nil
}

// Partial builds a badge from the id and the name of an embedding payload.
func (p *BadgeProvider) Partial(base entity.Base, fragment gjson.Result) *Badge {
	return &Badge{Base: base, session: p.s, Name: fragment.Get("name").String()}
}

// Get returns the badge with id, fetching it at most once per session.
func (p *BadgeProvider) Get(ctx context.Context, id int64) (*Badge, error) {
	return cached(ctx, p.s, cache.BucketBadges, id, p.fetch)
}

// UniverseBadges iterates the badges universe awards.
func (p *BadgeProvider) UniverseBadges(universe entity.Identifier, pageSize int) *pagination.Iterator[*Badge] {
	rawURL := p.s.urls.URLf("badges", "v1/universes/%d/badges", universe.EntityID())
	return pagination.New(p.s.transport, rawURL, pageSize, p.fromPayload)
}

// UserBadges iterates the badges awarded to user, newest first.
func (p *BadgeProvider) UserBadges(user entity.Identifier, pageSize int) *pagination.Iterator[*UserBadge] {
	rawURL := p.s.urls.URLf("badges", "v1/users/%d/badges", user.EntityID())
	it := pagination.New(p.s.transport, rawURL, pageSize,
		func(ctx context.Context, item gjson.Result) (*UserBadge, error) {
			badge, err := p.fromPayload(ctx, item)
			if err != nil {
				return nil, err
			}
			awarder, err := entity.Resolve[*Place](ctx, p.s, p.s.Places, entity.RefOf(badge),
				entity.Embedded(item, "awarder"))
			if err != nil {
				return nil, err
			}
			return &UserBadge{Badge: badge, Awarder: awarder}, nil
		})
	return it.SortBy(Descending)
}

func (p *BadgeProvider) fetch(ctx context.Context, id int64) (*Badge, error) {
	body, err := p.s.get(ctx, "badges", "v1/badges/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, fmt.Errorf("get badge %d: %w", id, err)
	}
	return p.fromPayload(ctx, gjson.ParseBytes(body))
}

func (p *BadgeProvider) fromPayload(ctx context.Context, data gjson.Result) (*Badge, error) {
	base, err := entity.BaseFrom(data)
	if err != nil {
		return nil, err
	}
	stats := data.Get("statistics")
	b := &Badge{
		Base:    base,
		session: p.s,
		Name:    data.Get("name").String(),
		Details: &BadgeDetails{
			Description: data.Get("description").String(),
			Enabled:     data.Get("enabled").Bool(),
			IconImageID: data.Get("iconImageId").Int(),
			Created:     timeAt(data.Get("created")),
			Updated:     timeAt(data.Get("updated")),
			Statistics: BadgeStatistics{
				PastDayAwardedCount: stats.Get("pastDayAwardedCount").Int(),
				AwardedCount:        stats.Get("awardedCount").Int(),
				WinRatePercentage:   stats.Get("winRatePercentage").Float(),
			},
		},
	}

	b.AwardingUniverse, err = entity.ResolveOptional[*Universe](ctx, p.s, p.s.Universes, entity.RefOf(b),
		entity.Embedded(data, "awardingUniverse"))
	if err != nil {
		return nil, err
	}
	return b, nil
}
