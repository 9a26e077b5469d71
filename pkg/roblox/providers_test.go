package roblox

import (
	"context"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/rbx-client/internal/testutil"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

func query(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func TestUsers_Forms(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(userPath, userPayload)
	ctx := context.Background()

	base, err := s.Users.Base(1)
	require.NoError(t, err)
	assert.Nil(t, base.Display)
	assert.False(t, base.Resolved())
	assert.Equal(t, "User(1)", base.String())

	full, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, full.Resolved())
	assert.Equal(t, "Roblox", full.Name())
	assert.True(t, full.Display.HasVerifiedBadge)
	assert.Equal(t, 2006, full.Profile.Created.Year())

	assert.True(t, entity.Equal(base, full))
	assert.Equal(t, mock.URL()+"/www/users/1/profile", full.Link())

	_, err = s.Users.Base(0)
	assert.ErrorIs(t, err, entity.ErrInvalidEntity)
}

func TestUsers_ByUsernames(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/users/v1/usernames/users",
		`{"data":[{"requestedUsername":"roblox","id":1,"name":"Roblox","displayName":"Roblox","hasVerifiedBadge":true}]}`)

	users, err := s.Users.ByUsernames(context.Background(), []string{"roblox", "nobody"}, true)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Roblox", users[0].Name())
	assert.False(t, users[0].Resolved())

	req, ok := mock.LastRequest("/users/v1/usernames/users")
	require.True(t, ok)
	assert.Equal(t, "POST", req.Method)
	assert.JSONEq(t, `{"usernames":["roblox","nobody"],"excludeBannedUsers":true}`, req.Body)

	mock.SetJSON("/users/v1/usernames/users", `{"data":[]}`)
	_, err = s.Users.ByUsername(context.Background(), "nobody", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsers_Authenticated(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/users/v1/users/authenticated", `{"id":1,"name":"Roblox","displayName":"Roblox"}`)
	mock.SetJSON(userPath, userPayload)
	mock.SetJSON("/friends/v1/users/2/request-friendship", `{"success":true}`)

	me, err := s.Users.Authenticated(context.Background())
	require.NoError(t, err)
	assert.True(t, me.Resolved())

	require.NoError(t, me.SendFriendRequest(context.Background(), entity.ID(2)))
	assert.Equal(t, 1, mock.PathCount("/friends/v1/users/2/request-friendship"))
}

func TestUserBadges_Pagination(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/badges/v1/users/1/badges",
		`[{"id":100,"name":"A","awarder":{"id":30,"type":"Place"}},{"id":101,"name":"B","awarder":{"id":31,"type":"Place"}}]`,
		`[{"id":102,"name":"C","awarder":{"id":30,"type":"Place"}}]`,
	)
	user, err := s.Users.Base(1)
	require.NoError(t, err)

	it := user.Badges(2)
	pages, err := it.Drain(context.Background(), pagination.NoPageLimit)
	require.NoError(t, err)

	assert.Equal(t, 2, pages.PageCount())
	assert.Equal(t, 3, pages.DataCount())
	assert.True(t, it.Finished())

	items := pages.Items()
	assert.Equal(t, "A", items[0].Name)
	assert.Equal(t, int64(30), items[0].Awarder.ID)
	assert.Equal(t, int64(102), items[2].ID)

	req, ok := mock.LastRequest("/badges/v1/users/1/badges")
	require.True(t, ok)
	q := query(t, req.Query)
	assert.Equal(t, "Desc", q.Get("sortOrder"))
	assert.Equal(t, "2", q.Get("limit"))
	assert.Equal(t, "c1", q.Get("cursor"))
}

func TestUserBadges_MissingAwarder(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/badges/v1/users/1/badges", `[{"id":100,"name":"A","awarder":{}}]`)

	_, err := s.Badges.UserBadges(entity.ID(1), 10).FetchCurrentPage(context.Background())
	assert.ErrorIs(t, err, entity.ErrMissingReferenceID)
}

func TestUniverseBadges_All(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/badges/v1/universes/20/badges",
		`[{"id":100,"name":"A"}]`,
		`[{"id":101,"name":"B"}]`,
		`[{"id":102,"name":"C"}]`,
	)
	universe, err := s.Universes.Base(20)
	require.NoError(t, err)

	var names []string
	for b, err := range universe.Badges(1).All(context.Background()) {
		require.NoError(t, err)
		names = append(names, b.Name)
		assert.Nil(t, b.AwardingUniverse)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, 3, mock.PathCount("/badges/v1/universes/20/badges"))
}

func TestUserGames(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/games/v2/users/1/games",
		`[{"id":20,"name":"Obby","creator":{"id":1,"type":"User"},"rootPlace":{"id":30,"type":"Place"},"placeVisits":77}]`)

	page, err := s.Universes.UserGames(entity.ID(1), 10).FetchCurrentPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())

	u := page.Data[0]
	assert.Equal(t, int64(30), u.RootPlace.ID)
	assert.Equal(t, int64(77), u.Details.Visits)
	assert.Equal(t, mock.URL()+"/www/games/30/game", u.Link())
}

func TestPlaces_UniverseID(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/apis/universes/v1/places/30/universe", `{"universeId":20}`)
	mock.SetJSON(universesPath, universePayload)
	ctx := context.Background()

	u, err := s.Universes.ByPlace(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(20), u.ID)

	id, err := s.Places.UniverseID(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
	assert.Equal(t, 1, mock.PathCount("/apis/universes/v1/places/30/universe"))

	mock.SetJSON("/apis/universes/v1/places/31/universe", `{"universeId":null}`)
	_, err = s.Places.UniverseID(ctx, 31)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaces_Get(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(placesPath, placePayload)
	ctx := context.Background()

	p, err := s.Places.Get(ctx, 30)
	require.NoError(t, err)
	assert.True(t, p.Resolved())
	assert.Equal(t, int64(20), p.UniverseID)
	assert.Equal(t, "Roblox", p.Details.Builder)
	assert.Equal(t, "30", query(t, mustLast(t, mock, placesPath).Query).Get("placeIds"))

	mock.SetJSON(placesPath, `[]`)
	_, err = s.Places.Get(ctx, 31)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUniverses_MultigetByPlaces(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(placesPath, `[{"placeId":30,"universeId":20},{"placeId":31,"universeId":20},{"placeId":32,"universeId":21}]`)
	mock.SetJSON(universesPath, `{"data":[{"id":20,"name":"A"},{"id":21,"name":"B"}]}`)

	universes, err := s.Universes.MultigetByPlaces(context.Background(), []int64{30, 31, 32})
	require.NoError(t, err)
	assert.Len(t, universes, 2)
	assert.Equal(t, "20,21", query(t, mustLast(t, mock, universesPath).Query).Get("universeIds"))

	none, err := s.Universes.Multiget(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlaces_Instances(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/games/v1/games/30/servers/0",
		`[{"id":"0b0b2d6c-4d9c-4a57-8a7f-7d3c1d6b2e11","maxPlayers":10,"playing":4,"fps":59.9,"ping":80,"playerTokens":["a","b"]}]`)
	place, err := s.Places.Base(30)
	require.NoError(t, err)

	page, err := place.Instances(ServerPublic, 10).FetchCurrentPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())

	inst := page.Data[0]
	assert.Equal(t, uuid.MustParse("0b0b2d6c-4d9c-4a57-8a7f-7d3c1d6b2e11"), inst.JobID)
	assert.Equal(t, 4, inst.Playing)
	assert.Equal(t, []string{"a", "b"}, inst.PlayerTokens)
	assert.Equal(t, "roblox://experiences/start?placeId=30&gameInstanceId=0b0b2d6c-4d9c-4a57-8a7f-7d3c1d6b2e11", inst.JoinLink())
}

func TestGroups_GetAndMembers(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(groupPath, groupPayload)
	mock.SetPages("/groups/v1/groups/7/users",
		`[{"user":{"userId":1,"username":"Roblox","displayName":"Roblox"},"role":{"id":5,"name":"Owner","rank":255}}]`)
	ctx := context.Background()

	g, err := s.Groups.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(12), g.Details.MemberCount)
	assert.Equal(t, "Roblox", g.Details.Owner.Name())
	assert.False(t, g.Details.Owner.Resolved())
	assert.Equal(t, "hello", g.Details.Shout.Body)
	assert.Equal(t, 1, mock.GetRequestCount())

	page, err := g.Members(10).FetchCurrentPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())
	assert.Equal(t, 255, page.Data[0].Role.Rank)
	assert.Equal(t, "Roblox", page.Data[0].Name())
}

func TestGroups_Ownerless(t *testing.T) {
	s, mock := newTestSession(t, withoutPartials)
	mock.SetJSON(groupPath, `{"id":7,"name":"Abandoned","owner":null,"shout":null}`)

	g, err := s.Groups.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, g.Details.Owner)
	assert.Nil(t, g.Details.Shout)
	assert.Equal(t, 1, mock.GetRequestCount())
}

func TestFriends(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/friends/v1/users/1/friends",
		`{"data":[{"id":2,"name":"A","isOnline":true},{"id":3,"name":"B"},{"id":4,"name":"C"}]}`)
	mock.SetJSON("/friends/v1/users/9/friends", `{"data":[{"id":4,"name":"C"},{"id":2,"name":"A"}]}`)
	ctx := context.Background()

	user, err := s.Users.Base(1)
	require.NoError(t, err)

	friends, err := user.Friends(ctx)
	require.NoError(t, err)
	require.Len(t, friends, 3)
	assert.True(t, friends[0].IsOnline)

	mutual, err := user.MutualFriends(ctx, entity.ID(9))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4}, entity.IDs(mutual))

	mock.SetJSON("/friends/v1/users/5/friends", `{"data":[]}`)
	none, err := s.Friends.List(ctx, entity.ID(5))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFriendRequests(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetPages("/friends/v1/my/friends/requests",
		`[{"friendRequest":{"sentAt":"2024-01-01T00:00:00Z","senderId":2,"sourceUniverseId":20,"originSourceType":"PlayerSearch","contactName":null},"id":2,"name":"A","displayName":"A"}]`)
	mock.SetJSON("/friends/v1/users/2/accept-friend-request", `{}`)

	page, err := s.Friends.Requests(10).FetchCurrentPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())

	req := page.Data[0]
	assert.Equal(t, int64(2), req.ID)
	assert.Equal(t, "A", req.Sender.Name())
	assert.Equal(t, int64(20), req.SourceUniverseID)

	require.NoError(t, req.Accept(context.Background()))
	assert.Equal(t, 1, mock.PathCount("/friends/v1/users/2/accept-friend-request"))
}

func TestInventory(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/inventory/v1/users/1/can-view-inventory", `{"canView":true}`)
	mock.SetPages("/inventory/v2/users/1/inventory/8",
		`[{"assetId":1028606,"name":"Red Baseball Cap","created":"2008-01-01T00:00:00Z","owner":{"userId":1,"username":"Roblox"}}]`)
	ctx := context.Background()

	ok, err := s.Inventory.CanView(ctx, entity.ID(1))
	require.NoError(t, err)
	assert.True(t, ok)

	page, err := s.Inventory.Assets(entity.ID(1), AssetHat, 10).FetchCurrentPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())
	asset := page.Data[0]
	assert.Equal(t, int64(1028606), asset.ID)
	assert.Equal(t, AssetHat, asset.AssetType)
	assert.Equal(t, "Roblox", asset.Owner.Name())
}

func TestEconomy(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/economy/v1/users/1/currency", `{"robux":1500}`)
	mock.SetJSON("/premiumfeatures/v1/users/1/validate-membership", `true`)
	ctx := context.Background()

	robux, err := s.Economy.Currency(ctx, entity.ID(1))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), robux)

	premium, err := s.Economy.HasPremium(ctx, entity.ID(1))
	require.NoError(t, err)
	assert.True(t, premium)
}

func TestThumbnails(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/thumbnails/v1/users/avatar-headshot",
		`{"data":[{"targetId":1,"state":"Completed","imageUrl":"https://tr.rbxcdn.com/x.png","version":"TN3"}]}`)
	mock.SetJSON("/thumbnails/v1/games/multiget/thumbnails",
		`{"data":[{"universeId":20,"error":null,"thumbnails":[{"targetId":5,"state":"Completed","imageUrl":"u"}]}]}`)
	ctx := context.Background()

	user, err := s.Users.Base(1)
	require.NoError(t, err)
	thumb, err := user.Thumbnail(ctx, UserThumbnailHeadshot, ThumbnailOptions{Size: SizeUser150, IsCircular: true})
	require.NoError(t, err)
	assert.True(t, thumb.Completed())
	assert.Equal(t, "https://tr.rbxcdn.com/x.png", thumb.ImageURL)

	q := query(t, mustLast(t, mock, "/thumbnails/v1/users/avatar-headshot").Query)
	assert.Equal(t, "1", q.Get("userIds"))
	assert.Equal(t, "150x150", q.Get("size"))
	assert.Equal(t, "Png", q.Get("format"))
	assert.Equal(t, "true", q.Get("isCircular"))

	universe, err := s.Universes.Base(20)
	require.NoError(t, err)
	thumbs, err := universe.Thumbnails(ctx, ThumbnailOptions{})
	require.NoError(t, err)
	require.Len(t, thumbs, 1)

	q = query(t, mustLast(t, mock, "/thumbnails/v1/games/multiget/thumbnails").Query)
	assert.Equal(t, "1", q.Get("countPerUniverse"))
	assert.Equal(t, "768x432", q.Get("size"))
}

func TestAvatar(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON("/avatar/v2/avatar/users/1/avatar", `{"playerAvatarType":"R15",
		"scales":{"height":1,"width":1,"head":1,"depth":1,"proportion":0,"bodyType":0},
		"bodyColor3s":{"headColor3":"F8F8F8","torsoColor3":"0D69AC"},
		"assets":[{"id":1,"name":"Hat"}],"emotes":[{"assetId":2,"assetName":"Wave","position":1}],
		"defaultShirtApplied":true,"defaultPantsApplied":false}`)
	mock.SetJSON("/avatar/v1/users/1/currently-wearing", `{"assetIds":[1,2,3]}`)
	mock.SetPages("/avatar/v2/avatar/users/1/outfits", `[{"id":50,"name":"Casual","isEditable":true,"outfitType":"Avatar"}]`)
	ctx := context.Background()

	user, err := s.Users.Base(1)
	require.NoError(t, err)

	details, err := user.Avatar(ctx)
	require.NoError(t, err)
	assert.Equal(t, AvatarR15, details.Type)
	assert.Equal(t, "0D69AC", details.BodyColors.Torso)
	assert.Len(t, details.Assets, 1)
	assert.Equal(t, "Wave", details.Emotes[0].Name)

	wearing, err := user.CurrentlyWearing(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, wearing)

	page, err := user.Outfits("", 0).FetchCurrentPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count())
	assert.Equal(t, "Casual", page.Data[0].Name)

	q := query(t, mustLast(t, mock, "/avatar/v2/avatar/users/1/outfits").Query)
	assert.Equal(t, "25", q.Get("itemsPerPage"))
	assert.Equal(t, "All", q.Get("outfitType"))
}

func mustLast(t *testing.T, mock *testutil.MockAPI, path string) testutil.Request {
	t.Helper()
	req, ok := mock.LastRequest(path)
	require.True(t, ok, "no request to %s", path)
	return req
}
