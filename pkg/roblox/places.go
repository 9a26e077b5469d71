package roblox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// PlaceDetails holds the fields the place details endpoint returns.
type PlaceDetails struct {
	Description         string
	URL                 string
	Builder             string
	BuilderID           int64
	HasVerifiedBadge    bool
	IsPlayable          bool
	ReasonProhibited    string
	UniverseRootPlaceID int64
	Price               int64
}

// Place is a single playable world of a universe.
type Place struct {
	entity.Base
	session *Session

	Name string

	// UniverseID is 0 when the payload did not carry it. Universe resolves it
	// through the place lookup in that case.
	UniverseID int64

	Details *PlaceDetails
}

// Kind implements entity.Entity.
func (p *Place) Kind() entity.Kind { return entity.KindPlace }

// Resolved reports whether p holds the fully fetched form.
func (p *Place) Resolved() bool { return p.Details != nil }

// Link returns the game page URL.
func (p *Place) Link() string {
	return p.session.urls.URLf("www", "games/%d/game", p.ID)
}

// String implements fmt.Stringer.
func (p *Place) String() string {
	return fmt.Sprintf("Place(%d, %s)", p.ID, p.Name)
}

// Refresh fetches a new snapshot of p and replaces the cache entry.
func (p *Place) Refresh(ctx context.Context) (*Place, error) {
	return refreshed(ctx, p.session, cache.BucketPlaces, p.ID, p.session.Places.fetch)
}

// Universe returns the universe the place belongs to.
func (p *Place) Universe(ctx context.Context) (*Universe, error) {
	if p.UniverseID > 0 {
		return p.session.Universes.Get(ctx, p.UniverseID)
	}
	return p.session.Universes.ByPlace(ctx, p.ID)
}

// Instances iterates the running servers of the place.
func (p *Place) Instances(serverType ServerType, pageSize int) *pagination.Iterator[*GameInstance] {
	return p.session.Places.Instances(p, serverType, pageSize)
}

// Icon returns the place's game icon.
func (p *Place) Icon(ctx context.Context, opts ThumbnailOptions) (*Thumbnail, error) {
	thumbs, err := p.session.Thumbnails.PlaceIcons(ctx, []entity.Identifier{p}, opts)
	if err != nil {
		return nil, err
	}
	if len(thumbs) == 0 {
		return nil, fmt.Errorf("icon for place %d: %w", p.ID, ErrNotFound)
	}
	return thumbs[0], nil
}

// GameInstance is one running server of a place.
type GameInstance struct {
	JobID        uuid.UUID
	Place        entity.Identifier
	MaxPlayers   int
	Playing      int
	FPS          float64
	Ping         int
	PlayerTokens []string
}

// JoinLink returns the deep link that joins this server.
func (g *GameInstance) JoinLink() string {
	return joinLink(g.Place.EntityID(), g.JobID)
}

func joinLink(placeID int64, jobID uuid.UUID) string {
	return fmt.Sprintf("roblox://experiences/start?placeId=%d&gameInstanceId=%s", placeID, jobID)
}

// PlaceProvider looks up places. It implements entity.Source[*Place].
type PlaceProvider struct {
	s *Session
}

// Base returns an id-only place without a request.
func (p *PlaceProvider) Base(id int64) (*Place, error) {
	base, err := entity.NewBase(id)
	if err != nil {
		return nil, err
	}
	return &Place{Base: base, session: p.s}, nil
}

// Partial builds a place from the id and the name of an embedding payload.
func (p *PlaceProvider) Partial(base entity.Base, fragment gjson.Result) *Place {
	return &Place{Base: base, session: p.s, Name: fragment.Get("name").String()}
}

// Get returns the place with id, fetching it at most once per session.
func (p *PlaceProvider) Get(ctx context.Context, id int64) (*Place, error) {
	return cached(ctx, p.s, cache.BucketPlaces, id, p.fetch)
}

// Multiget fetches several places in one request. Unknown ids are omitted.
func (p *PlaceProvider) Multiget(ctx context.Context, ids []int64) ([]*Place, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	body, err := p.s.get(ctx, "games", "v1/games/multiget-place-details",
		url.Values{"placeIds": {joinIDs(ids)}})
	if err != nil {
		return nil, fmt.Errorf("get places: %w", err)
	}

	items := gjson.ParseBytes(body).Array()
	places := make([]*Place, 0, len(items))
	for _, item := range items {
		place, err := p.fromPayload(item)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, nil
}

// UniverseID returns the id of the universe placeID belongs to. The mapping
// is cached for the lifetime of the session.
func (p *PlaceProvider) UniverseID(ctx context.Context, placeID int64) (int64, error) {
	return cached(ctx, p.s, cache.BucketUniverseIDs, placeID, func(ctx context.Context, id int64) (int64, error) {
		body, err := p.s.get(ctx, "apis", fmt.Sprintf("universes/v1/places/%d/universe", id), nil)
		if err != nil {
			return 0, fmt.Errorf("get universe id of place %d: %w", id, err)
		}
		universeID := gjson.GetBytes(body, "universeId").Int()
		if universeID <= 0 {
			return 0, fmt.Errorf("universe of place %d: %w", id, ErrNotFound)
		}
		return universeID, nil
	})
}

// Instances iterates the running servers of place.
func (p *PlaceProvider) Instances(place entity.Identifier, serverType ServerType, pageSize int) *pagination.Iterator[*GameInstance] {
	rawURL := p.s.urls.URLf("games", "v1/games/%d/servers/%d", place.EntityID(), serverType)
	return pagination.New(p.s.transport, rawURL, pageSize,
		func(_ context.Context, item gjson.Result) (*GameInstance, error) {
			jobID, err := uuid.Parse(item.Get("id").String())
			if err != nil {
				return nil, fmt.Errorf("game instance of place %d: job id: %w", place.EntityID(), err)
			}
			tokens := make([]string, 0)
			for _, t := range item.Get("playerTokens").Array() {
				tokens = append(tokens, t.String())
			}
			return &GameInstance{
				JobID:        jobID,
				Place:        place,
				MaxPlayers:   int(item.Get("maxPlayers").Int()),
				Playing:      int(item.Get("playing").Int()),
				FPS:          item.Get("fps").Float(),
				Ping:         int(item.Get("ping").Int()),
				PlayerTokens: tokens,
			}, nil
		})
}

func (p *PlaceProvider) fetch(ctx context.Context, id int64) (*Place, error) {
	places, err := p.Multiget(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	for _, place := range places {
		if place.ID == id {
			return place, nil
		}
	}
	return nil, fmt.Errorf("place %d: %w", id, ErrNotFound)
}

func (p *PlaceProvider) fromPayload(data gjson.Result) (*Place, error) {
	base, err := entity.BaseFrom(data, "placeId", "id")
	if err != nil {
		return nil, err
	}
	return &Place{
		Base:       base,
		session:    p.s,
		Name:       data.Get("name").String(),
		UniverseID: data.Get("universeId").Int(),
		Details: &PlaceDetails{
			Description:         data.Get("description").String(),
			URL:                 data.Get("url").String(),
			Builder:             data.Get("builder").String(),
			BuilderID:           data.Get("builderId").Int(),
			HasVerifiedBadge:    data.Get("hasVerifiedBadge").Bool(),
			IsPlayable:          data.Get("isPlayable").Bool(),
			ReasonProhibited:    data.Get("reasonProhibited").String(),
			UniverseRootPlaceID: data.Get("universeRootPlaceId").Int(),
			Price:               data.Get("price").Int(),
		},
	}, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
