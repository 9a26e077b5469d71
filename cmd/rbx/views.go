package main

import (
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
)

func userRecord(u *roblox.User) record {
	r := record{
		{"id", u.ID},
		{"name", u.Name()},
		{"display_name", u.DisplayName()},
	}
	if u.Display != nil {
		r = append(r, field{"verified", u.Display.HasVerifiedBadge})
	}
	if u.Profile != nil {
		r = append(r,
			field{"description", u.Profile.Description},
			field{"created", u.Profile.Created},
			field{"banned", u.Profile.IsBanned},
		)
	}
	return append(r, field{"link", u.Link()})
}

func groupRecord(g *roblox.Group) record {
	r := record{
		{"id", g.ID},
		{"name", g.Name},
	}
	if d := g.Details; d != nil {
		r = append(r,
			field{"description", d.Description},
			field{"members", d.MemberCount},
			field{"public_entry", d.PublicEntryAllowed},
			field{"locked", d.IsLocked},
			field{"owner", refID(d.Owner)},
		)
		if d.Shout != nil {
			r = append(r, field{"shout", d.Shout.Body}, field{"shout_poster", refID(d.Shout.Poster)})
		}
	}
	return append(r, field{"link", g.Link()})
}

func placeRecord(p *roblox.Place) record {
	r := record{
		{"id", p.ID},
		{"name", p.Name},
		{"universe_id", p.UniverseID},
	}
	if d := p.Details; d != nil {
		r = append(r,
			field{"description", d.Description},
			field{"builder", d.Builder},
			field{"playable", d.IsPlayable},
			field{"price", d.Price},
		)
	}
	return append(r, field{"link", p.Link()})
}

func universeRecord(u *roblox.Universe) record {
	r := record{
		{"id", u.ID},
		{"name", u.Name},
		{"root_place", refID(u.RootPlace)},
		{"creator_type", u.CreatorType},
		{"creator", refID(u.Creator)},
	}
	if d := u.Details; d != nil {
		r = append(r,
			field{"description", d.Description},
			field{"playing", d.Playing},
			field{"visits", d.Visits},
			field{"max_players", d.MaxPlayers},
			field{"favorites", d.FavoritedCount},
			field{"genre", d.Genre},
			field{"created", d.Created},
			field{"updated", d.Updated},
		)
	}
	return append(r, field{"link", u.Link()})
}

func badgeRecord(b *roblox.Badge) record {
	r := record{
		{"id", b.ID},
		{"name", b.Name},
		{"awarding_universe", refID(b.AwardingUniverse)},
	}
	if d := b.Details; d != nil {
		r = append(r,
			field{"description", d.Description},
			field{"enabled", d.Enabled},
			field{"awarded", d.Statistics.AwardedCount},
			field{"awarded_past_day", d.Statistics.PastDayAwardedCount},
			field{"win_rate", d.Statistics.WinRatePercentage},
			field{"created", d.Created},
		)
	}
	return append(r, field{"link", b.Link()})
}

func presenceRecord(p *roblox.Presence) record {
	gameLink, _ := p.GameLink()
	joinLink, _ := p.JoinLink()
	return record{
		{"user_id", refID(p.User)},
		{"status", p.Type.String()},
		{"location", p.LastLocation},
		{"last_online", p.LastOnline},
		{"universe_id", refID(p.Universe)},
		{"root_place_id", refID(p.RootPlace)},
		{"game_link", gameLink},
		{"join_link", joinLink},
	}
}

func friendRecord(f *roblox.Friend) record {
	return record{
		{"id", f.ID},
		{"name", f.Name()},
		{"display_name", f.DisplayName()},
		{"online", f.IsOnline},
	}
}

func userBadgeRecord(b *roblox.UserBadge) record {
	return record{
		{"id", b.ID},
		{"name", b.Name},
		{"awarder_place", refID(b.Awarder)},
	}
}

// refID returns the id of a resolved reference, or nil when it is absent.
func refID(v entity.Identifier) any {
	switch v := v.(type) {
	case nil:
		return nil
	case *roblox.User:
		if v == nil {
			return nil
		}
	case *roblox.Group:
		if v == nil {
			return nil
		}
	case *roblox.Place:
		if v == nil {
			return nil
		}
	case *roblox.Universe:
		if v == nil {
			return nil
		}
	}
	return v.EntityID()
}
