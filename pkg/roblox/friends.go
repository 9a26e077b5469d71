package roblox

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// Friend is a user seen through a friends listing.
type Friend struct {
	*User
	IsOnline bool
}

// FriendRequest is a pending request received by the authenticated user.
type FriendRequest struct {
	entity.Base
	session *Session

	// Sender is built from the request item and always carries display fields.
	Sender           *User
	SentAt           time.Time
	SourceUniverseID int64
	OriginSourceType string
	ContactName      string
}

// Kind implements entity.Entity. A request is identified by its sender.
func (r *FriendRequest) Kind() entity.Kind { return entity.KindUser }

// Accept accepts the request.
func (r *FriendRequest) Accept(ctx context.Context) error {
	return r.session.Friends.action(ctx, r.ID, "accept-friend-request")
}

// Decline declines the request.
func (r *FriendRequest) Decline(ctx context.Context) error {
	return r.session.Friends.action(ctx, r.ID, "decline-friend-request")
}

// AuthenticatedUser is the user a session's token belongs to. It carries the
// operations only the account owner may perform.
type AuthenticatedUser struct {
	*User
}

// FriendRequests iterates pending incoming friend requests.
func (a *AuthenticatedUser) FriendRequests(pageSize int) *pagination.Iterator[*FriendRequest] {
	return a.session.Friends.Requests(pageSize)
}

// SendFriendRequest sends a friend request to target.
func (a *AuthenticatedUser) SendFriendRequest(ctx context.Context, target entity.Identifier) error {
	return a.session.Friends.action(ctx, target.EntityID(), "request-friendship")
}

// Unfriend removes target from the friend list.
func (a *AuthenticatedUser) Unfriend(ctx context.Context, target entity.Identifier) error {
	return a.session.Friends.action(ctx, target.EntityID(), "unfriend")
}

// Follow follows target.
func (a *AuthenticatedUser) Follow(ctx context.Context, target entity.Identifier) error {
	return a.session.Friends.action(ctx, target.EntityID(), "follow")
}

// Unfollow stops following target.
func (a *AuthenticatedUser) Unfollow(ctx context.Context, target entity.Identifier) error {
	return a.session.Friends.action(ctx, target.EntityID(), "unfollow")
}

// FriendProvider reads friend lists and performs friend actions.
type FriendProvider struct {
	s *Session
}

// List returns the friends of user.
func (p *FriendProvider) List(ctx context.Context, user entity.Identifier) ([]*Friend, error) {
	body, err := p.s.get(ctx, "friends", fmt.Sprintf("v1/users/%d/friends", user.EntityID()), nil)
	if err != nil {
		return nil, fmt.Errorf("get friends of %d: %w", user.EntityID(), err)
	}

	data := gjson.GetBytes(body, "data").Array()
	friends := make([]*Friend, 0, len(data))
	for _, item := range data {
		base, err := entity.BaseFrom(item)
		if err != nil {
			return nil, err
		}
		friends = append(friends, &Friend{
			User:     p.s.Users.Partial(base, item),
			IsOnline: item.Get("isOnline").Bool(),
		})
	}
	return friends, nil
}

// Mutual returns the friends of a that are also friends of b, in a's order.
func (p *FriendProvider) Mutual(ctx context.Context, a, b entity.Identifier) ([]*Friend, error) {
	mine, err := p.List(ctx, a)
	if err != nil {
		return nil, err
	}
	theirs, err := p.List(ctx, b)
	if err != nil {
		return nil, err
	}

	ids := make(map[int64]struct{}, len(theirs))
	for _, f := range theirs {
		ids[f.ID] = struct{}{}
	}
	mutual := make([]*Friend, 0)
	for _, f := range mine {
		if _, ok := ids[f.ID]; ok {
			mutual = append(mutual, f)
		}
	}
	return mutual, nil
}

// Requests iterates the authenticated user's pending incoming requests.
func (p *FriendProvider) Requests(pageSize int) *pagination.Iterator[*FriendRequest] {
	return pagination.New(p.s.transport, p.s.urls.URL("friends", "v1/my/friends/requests"), pageSize,
		func(_ context.Context, item gjson.Result) (*FriendRequest, error) {
			req := item.Get("friendRequest")
			base, err := entity.BaseFrom(req, "senderId")
			if err != nil {
				return nil, err
			}
			return &FriendRequest{
				Base:             base,
				session:          p.s,
				Sender:           p.s.Users.Partial(base, item),
				SentAt:           timeAt(req.Get("sentAt")),
				SourceUniverseID: req.Get("sourceUniverseId").Int(),
				OriginSourceType: req.Get("originSourceType").String(),
				ContactName:      req.Get("contactName").String(),
			}, nil
		})
}

func (p *FriendProvider) action(ctx context.Context, userID int64, verb string) error {
	if _, err := p.s.post(ctx, "friends", fmt.Sprintf("v1/users/%d/%s", userID, verb), nil); err != nil {
		return fmt.Errorf("%s %d: %w", verb, userID, err)
	}
	return nil
}
