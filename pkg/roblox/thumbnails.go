package roblox

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
)

// Thumbnail is a rendered image of an entity.
type Thumbnail struct {
	TargetID int64
	State    ThumbnailState
	ImageURL string
	Version  string
}

// Completed reports whether the image is ready.
func (t *Thumbnail) Completed() bool {
	return t.State == ThumbnailCompleted
}

// UniverseThumbnails is the thumbnail set of one universe.
type UniverseThumbnails struct {
	UniverseID int64
	Error      string
	Thumbnails []*Thumbnail
}

// ThumbnailOptions tunes thumbnail requests. Zero values fall back to the
// endpoint defaults.
type ThumbnailOptions struct {
	Size       string
	Format     ThumbnailFormat
	IsCircular bool

	// ReturnPolicy applies to place icons.
	ReturnPolicy PlaceThumbnailPolicy

	// CountPerUniverse and Defaults apply to universe thumbnails.
	CountPerUniverse int
	Defaults         bool
}

func (o ThumbnailOptions) values(defaultSize string) url.Values {
	size := o.Size
	if size == "" {
		size = defaultSize
	}
	format := o.Format
	if format == "" {
		format = FormatPNG
	}
	return url.Values{
		"size":       {size},
		"format":     {string(format)},
		"isCircular": {strconv.FormatBool(o.IsCircular)},
	}
}

// ThumbnailProvider fetches thumbnails in batches.
type ThumbnailProvider struct {
	s *Session
}

// BadgeIcons returns the icons of badges.
func (p *ThumbnailProvider) BadgeIcons(ctx context.Context, badges []entity.Identifier, opts ThumbnailOptions) ([]*Thumbnail, error) {
	params := opts.values(SizeBadgeIcon)
	params.Set("badgeIds", joinIDs(entity.IDs(badges)))
	return p.fetch(ctx, "v1/badges/icons", params)
}

// PlaceIcons returns the game icons of places.
func (p *ThumbnailProvider) PlaceIcons(ctx context.Context, places []entity.Identifier, opts ThumbnailOptions) ([]*Thumbnail, error) {
	params := opts.values(SizePlace512)
	params.Set("placeIds", joinIDs(entity.IDs(places)))
	policy := opts.ReturnPolicy
	if policy == "" {
		policy = PolicyPlaceHolder
	}
	params.Set("returnPolicy", string(policy))
	return p.fetch(ctx, "v1/places/gameicons", params)
}

// Users returns user thumbnails of the given kind.
func (p *ThumbnailProvider) Users(ctx context.Context, users []entity.Identifier, kind UserThumbnailType, opts ThumbnailOptions) ([]*Thumbnail, error) {
	if kind == "" {
		kind = UserThumbnailFullBody
	}
	params := opts.values(SizeUser420)
	params.Set("userIds", joinIDs(entity.IDs(users)))
	return p.fetch(ctx, "v1/users/"+string(kind), params)
}

// Outfits returns outfit thumbnails.
func (p *ThumbnailProvider) Outfits(ctx context.Context, outfits []entity.Identifier, opts ThumbnailOptions) ([]*Thumbnail, error) {
	params := opts.values(SizeOutfit420)
	params.Set("userOutfitIds", joinIDs(entity.IDs(outfits)))
	return p.fetch(ctx, "v1/users/outfits", params)
}

// Universes returns the thumbnail sets of universes.
func (p *ThumbnailProvider) Universes(ctx context.Context, universes []entity.Identifier, opts ThumbnailOptions) ([]*UniverseThumbnails, error) {
	if len(universes) == 0 {
		return nil, nil
	}
	params := opts.values(SizeUniverse768x432)
	params.Set("universeIds", joinIDs(entity.IDs(universes)))
	count := opts.CountPerUniverse
	if count <= 0 {
		count = 1
	}
	params.Set("countPerUniverse", strconv.Itoa(count))
	params.Set("defaults", strconv.FormatBool(opts.Defaults))

	body, err := p.s.get(ctx, "thumbnails", "v1/games/multiget/thumbnails", params)
	if err != nil {
		return nil, fmt.Errorf("get universe thumbnails: %w", err)
	}

	items := gjson.GetBytes(body, "data").Array()
	sets := make([]*UniverseThumbnails, 0, len(items))
	for _, item := range items {
		sets = append(sets, &UniverseThumbnails{
			UniverseID: item.Get("universeId").Int(),
			Error:      item.Get("error").String(),
			Thumbnails: thumbnailList(item.Get("thumbnails")),
		})
	}
	return sets, nil
}

func (p *ThumbnailProvider) fetch(ctx context.Context, path string, params url.Values) ([]*Thumbnail, error) {
	body, err := p.s.get(ctx, "thumbnails", path, params)
	if err != nil {
		return nil, fmt.Errorf("get thumbnails %s: %w", path, err)
	}
	return thumbnailList(gjson.GetBytes(body, "data")), nil
}

func thumbnailList(data gjson.Result) []*Thumbnail {
	items := data.Array()
	thumbs := make([]*Thumbnail, 0, len(items))
	for _, item := range items {
		thumbs = append(thumbs, &Thumbnail{
			TargetID: item.Get("targetId").Int(),
			State:    ThumbnailState(item.Get("state").String()),
			ImageURL: item.Get("imageUrl").String(),
			Version:  item.Get("version").String(),
		})
	}
	return thumbs
}
