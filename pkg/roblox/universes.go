package roblox

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// Creator types a universe may report.
const (
	CreatorUser  = "User"
	CreatorGroup = "Group"
)

// UniverseDetails holds the fields the universe endpoints return.
type UniverseDetails struct {
	Description       string
	Playing           int64
	Visits            int64
	MaxPlayers        int
	Price             int64
	Genre             string
	IsGenreEnforced   bool
	CopyingAllowed    bool
	IsFavoritedByUser bool
	FavoritedCount    int64
	Created           time.Time
	Updated           time.Time
}

// Universe groups the places of one experience.
type Universe struct {
	entity.Base
	session *Session

	Name string

	// RootPlace is the entry place. Nil when the payload does not name one.
	RootPlace *Place

	// Creator is a *User or a *Group depending on CreatorType. Nil when the
	// payload does not name a creator.
	Creator     entity.Entity
	CreatorType string

	Details *UniverseDetails
}

// Kind implements entity.Entity.
func (u *Universe) Kind() entity.Kind { return entity.KindUniverse }

// Resolved reports whether u holds the fully fetched form.
func (u *Universe) Resolved() bool { return u.Details != nil }

// Link returns the game page URL of the root place, or "" without one.
func (u *Universe) Link() string {
	if u.RootPlace == nil {
		return ""
	}
	return u.RootPlace.Link()
}

// String implements fmt.Stringer.
func (u *Universe) String() string {
	return fmt.Sprintf("Universe(%d, %s)", u.ID, u.Name)
}

// Refresh fetches a new snapshot of u and replaces the cache entry.
func (u *Universe) Refresh(ctx context.Context) (*Universe, error) {
	return refreshed(ctx, u.session, cache.BucketUniverses, u.ID, u.session.Universes.fetch)
}

// Badges iterates the badges the universe awards.
func (u *Universe) Badges(pageSize int) *pagination.Iterator[*Badge] {
	return u.session.Badges.UniverseBadges(u, pageSize)
}

// Thumbnails returns the universe's thumbnails.
func (u *Universe) Thumbnails(ctx context.Context, opts ThumbnailOptions) ([]*Thumbnail, error) {
	sets, err := u.session.Thumbnails.Universes(ctx, []entity.Identifier{u}, opts)
	if err != nil {
		return nil, err
	}
	for _, set := range sets {
		if set.UniverseID == u.ID {
			return set.Thumbnails, nil
		}
	}
	return nil, fmt.Errorf("thumbnails for universe %d: %w", u.ID, ErrNotFound)
}

// UniverseProvider looks up universes. It implements entity.Source[*Universe].
type UniverseProvider struct {
	s *Session
}

// Base returns an id-only universe without a request.
func (p *UniverseProvider) Base(id int64) (*Universe, error) {
	base, err := entity.NewBase(id)
	if err != nil {
		return nil, err
	}
	return &Universe{Base: base, session: p.s}, nil
}

// Partial builds a universe from the id, name and root place id of an
// embedding payload.
func (p *UniverseProvider) Partial(base entity.Base, fragment gjson.Result) *Universe {
	u := &Universe{Base: base, session: p.s, Name: fragment.Get("name").String()}
	if id := fragment.Get("rootPlaceId").Int(); id > 0 {
		u.RootPlace = p.s.Places.Partial(entity.Base{ID: id}, gjson.Result{})
	}
	return u
}

// Get returns the universe with id, fetching it at most once per session.
func (p *UniverseProvider) Get(ctx context.Context, id int64) (*Universe, error) {
	return cached(ctx, p.s, cache.BucketUniverses, id, p.fetch)
}

// ByPlace returns the universe placeID belongs to.
func (p *UniverseProvider) ByPlace(ctx context.Context, placeID int64) (*Universe, error) {
	id, err := p.s.Places.UniverseID(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return p.Get(ctx, id)
}

// Multiget fetches several universes in one request. Unknown ids are omitted.
func (p *UniverseProvider) Multiget(ctx context.Context, ids []int64) ([]*Universe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := p.s.get(ctx, "games", "v1/games", url.Values{"universeIds": {joinIDs(ids)}})
	if err != nil {
		return nil, fmt.Errorf("get universes: %w", err)
	}

	items := gjson.GetBytes(body, "data").Array()
	universes := make([]*Universe, 0, len(items))
	for _, item := range items {
		u, err := p.fromPayload(ctx, item)
		if err != nil {
			return nil, err
		}
		universes = append(universes, u)
	}
	return universes, nil
}

// MultigetByPlaces fetches the universes of several places.
func (p *UniverseProvider) MultigetByPlaces(ctx context.Context, placeIDs []int64) ([]*Universe, error) {
	places, err := p.s.Places.Multiget(ctx, placeIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(places))
	ids := make([]int64, 0, len(places))
	for _, place := range places {
		if place.UniverseID <= 0 {
			continue
		}
		if _, ok := seen[place.UniverseID]; ok {
			continue
		}
		seen[place.UniverseID] = struct{}{}
		ids = append(ids, place.UniverseID)
	}
	return p.Multiget(ctx, ids)
}

// UserGames iterates the universes user created.
func (p *UniverseProvider) UserGames(user entity.Identifier, pageSize int) *pagination.Iterator[*Universe] {
	rawURL := p.s.urls.URLf("games", "v2/users/%d/games", user.EntityID())
	return pagination.New(p.s.transport, rawURL, pageSize, p.fromPayload)
}

func (p *UniverseProvider) fetch(ctx context.Context, id int64) (*Universe, error) {
	universes, err := p.Multiget(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	for _, u := range universes {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, fmt.Errorf("universe %d: %w", id, ErrNotFound)
}

func (p *UniverseProvider) fromPayload(ctx context.Context, data gjson.Result) (*Universe, error) {
	base, err := entity.BaseFrom(data)
	if err != nil {
		return nil, err
	}
	u := &Universe{
		Base:        base,
		session:     p.s,
		Name:        data.Get("name").String(),
		CreatorType: data.Get("creator.type").String(),
		Details: &UniverseDetails{
			Description:       data.Get("description").String(),
			Playing:           data.Get("playing").Int(),
			Visits:            firstInt(data, "visits", "placeVisits"),
			MaxPlayers:        int(data.Get("maxPlayers").Int()),
			Price:             data.Get("price").Int(),
			Genre:             data.Get("genre").String(),
			IsGenreEnforced:   data.Get("isGenreEnforced").Bool(),
			CopyingAllowed:    data.Get("copyingAllowed").Bool(),
			IsFavoritedByUser: data.Get("isFavoritedByUser").Bool(),
			FavoritedCount:    data.Get("favoritedCount").Int(),
			Created:           timeAt(data.Get("created")),
			Updated:           timeAt(data.Get("updated")),
		},
	}
	ref := entity.RefOf(u)

	rootField := entity.Flat(data, "rootPlaceId")
	if entity.Present(data.Get("rootPlace")) {
		rootField = entity.Embedded(data, "rootPlace")
	}

	err = p.s.resolveSiblings(ctx,
		func(ctx context.Context) error {
			creator, err := p.resolveCreator(ctx, ref, u.CreatorType, data)
			u.Creator = creator
			return err
		},
		func(ctx context.Context) error {
			root, err := entity.ResolveOptional[*Place](ctx, p.s, p.s.Places, ref, rootField)
			u.RootPlace = root
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// resolveCreator resolves the creator reference by its declared type. An
// unknown type leaves the creator unset.
func (p *UniverseProvider) resolveCreator(ctx context.Context, ref entity.Ref, creatorType string, data gjson.Result) (entity.Entity, error) {
	field := entity.Embedded(data, "creator")
	if !entity.Present(field.Value) {
		return nil, nil
	}
	switch creatorType {
	case CreatorUser:
		user, err := entity.Resolve[*User](ctx, p.s, p.s.Users, ref, field)
		if err != nil {
			return nil, err
		}
		return user, nil
	case CreatorGroup:
		group, err := entity.Resolve[*Group](ctx, p.s, p.s.Groups, ref, field)
		if err != nil {
			return nil, err
		}
		return group, nil
	default:
		p.s.logger.Warn().
			Int64("universe_id", ref.ID).
			Str("creator_type", creatorType).
			Msg("Unknown creator type")
		return nil, nil
	}
}

func firstInt(v gjson.Result, paths ...string) int64 {
	for _, p := range paths {
		if n := v.Get(p); entity.Present(n) {
			return n.Int()
		}
	}
	return 0
}
