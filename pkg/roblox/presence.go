package roblox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
)

// Presence is a user's online state and location.
type Presence struct {
	Type         PresenceType
	LastLocation string
	LastOnline   time.Time

	// PlaceID is the place the user is in, 0 when not in game.
	PlaceID int64

	// JobID is uuid.Nil when the user is not in a visible server.
	JobID uuid.UUID

	User      *User
	Universe  *Universe
	RootPlace *Place
}

// Equal reports whether p and other describe the same location and state.
func (p *Presence) Equal(other *Presence) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.LastLocation == other.LastLocation && p.Type == other.Type
}

// GameLink returns the page URL of the root place the user is in.
func (p *Presence) GameLink() (string, bool) {
	if p.RootPlace == nil {
		return "", false
	}
	return p.RootPlace.Link(), true
}

// JoinLink returns the deep link that joins the user's server. The link
// targets the root place; the server itself is picked by JobID.
func (p *Presence) JoinLink() (string, bool) {
	if p.RootPlace == nil || p.JobID == uuid.Nil {
		return "", false
	}
	return joinLink(p.RootPlace.ID, p.JobID), true
}

// String implements fmt.Stringer.
func (p *Presence) String() string {
	if p.LastLocation != "" {
		return fmt.Sprintf("%s (%s)", p.Type, p.LastLocation)
	}
	return p.Type.String()
}

// PresenceProvider reads user presences.
type PresenceProvider struct {
	s *Session
}

// Get returns the presence of user.
func (p *PresenceProvider) Get(ctx context.Context, user entity.Identifier) (*Presence, error) {
	presences, err := p.Multiget(ctx, []entity.Identifier{user})
	if err != nil {
		return nil, err
	}
	for _, pr := range presences {
		if pr.User.ID == user.EntityID() {
			return pr, nil
		}
	}
	return nil, fmt.Errorf("presence of %d: %w", user.EntityID(), ErrNotFound)
}

// Multiget returns the presences of several users in one request.
func (p *PresenceProvider) Multiget(ctx context.Context, users []entity.Identifier) ([]*Presence, error) {
	if len(users) == 0 {
		return nil, nil
	}
	body, err := p.s.post(ctx, "presence", "v1/presence/users", map[string]any{
		"userIds": entity.IDs(users),
	})
	if err != nil {
		return nil, fmt.Errorf("get presences: %w", err)
	}

	items := gjson.GetBytes(body, "userPresences").Array()
	presences := make([]*Presence, 0, len(items))
	for _, item := range items {
		pr, err := p.fromPayload(ctx, item)
		if err != nil {
			return nil, err
		}
		presences = append(presences, pr)
	}
	return presences, nil
}

func (p *PresenceProvider) fromPayload(ctx context.Context, data gjson.Result) (*Presence, error) {
	pr := &Presence{
		Type:         PresenceType(data.Get("userPresenceType").Int()),
		LastLocation: data.Get("lastLocation").String(),
		LastOnline:   timeAt(data.Get("lastOnline")),
		PlaceID:      data.Get("placeId").Int(),
	}
	if gameID := data.Get("gameId").String(); gameID != "" {
		jobID, err := uuid.Parse(gameID)
		if err != nil {
			p.s.logger.Debug().Err(err).Str("game_id", gameID).Msg("Ignoring malformed game id")
		} else {
			pr.JobID = jobID
		}
	}

	// The presence has no id of its own. References are attributed to the user.
	ref := entity.Ref{Kind: entity.KindUser, ID: data.Get("userId").Int()}

	err := p.s.resolveSiblings(ctx,
		func(ctx context.Context) error {
			user, err := entity.Resolve[*User](ctx, p.s, p.s.Users, ref, entity.Flat(data, "userId"))
			pr.User = user
			return err
		},
		func(ctx context.Context) error {
			universe, err := entity.ResolveOptional[*Universe](ctx, p.s, p.s.Universes, ref, entity.Flat(data, "universeId"))
			pr.Universe = universe
			return err
		},
		func(ctx context.Context) error {
			root, err := entity.ResolveOptional[*Place](ctx, p.s, p.s.Places, ref, entity.Flat(data, "rootPlaceId"))
			pr.RootPlace = root
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return pr, nil
}
