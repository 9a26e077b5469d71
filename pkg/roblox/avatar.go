package roblox

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/pagination"
)

// DefaultOutfitPageSize is the page size the outfit endpoint expects.
const DefaultOutfitPageSize = 25

// AvatarScales are the body proportions of an avatar.
type AvatarScales struct {
	Height     float64
	Width      float64
	Head       float64
	Depth      float64
	Proportion float64
	BodyType   float64
}

// BodyColors are hex color strings per body part.
type BodyColors struct {
	Head     string
	Torso    string
	RightArm string
	LeftArm  string
	RightLeg string
	LeftLeg  string
}

// AvatarAsset is an asset worn by an avatar.
type AvatarAsset struct {
	ID   int64
	Name string
}

// AvatarEmote is an emote equipped in a slot.
type AvatarEmote struct {
	AssetID  int64
	Name     string
	Position int
}

// AvatarDetails is a user's avatar configuration.
type AvatarDetails struct {
	Type                AvatarType
	Scales              AvatarScales
	BodyColors          BodyColors
	Assets              []AvatarAsset
	Emotes              []AvatarEmote
	DefaultShirtApplied bool
	DefaultPantsApplied bool
}

// Outfit is a saved avatar configuration.
type Outfit struct {
	entity.Base
	session *Session

	Name       string
	IsEditable bool
	OutfitType OutfitType
}

// Kind implements entity.Entity.
func (o *Outfit) Kind() entity.Kind { return entity.KindOutfit }

// Thumbnail returns the outfit's rendered image.
func (o *Outfit) Thumbnail(ctx context.Context, opts ThumbnailOptions) (*Thumbnail, error) {
	thumbs, err := o.session.Thumbnails.Outfits(ctx, []entity.Identifier{o}, opts)
	if err != nil {
		return nil, err
	}
	if len(thumbs) == 0 {
		return nil, fmt.Errorf("thumbnail for outfit %d: %w", o.ID, ErrNotFound)
	}
	return thumbs[0], nil
}

// AvatarProvider reads avatar data.
type AvatarProvider struct {
	s *Session
}

// Details returns the avatar configuration of user.
func (p *AvatarProvider) Details(ctx context.Context, user entity.Identifier) (*AvatarDetails, error) {
	body, err := p.s.get(ctx, "avatar", fmt.Sprintf("v2/avatar/users/%d/avatar", user.EntityID()), nil)
	if err != nil {
		return nil, fmt.Errorf("get avatar of %d: %w", user.EntityID(), err)
	}
	data := gjson.ParseBytes(body)
	scales := data.Get("scales")
	colors := data.Get("bodyColor3s")

	d := &AvatarDetails{
		Type: AvatarType(data.Get("playerAvatarType").String()),
		Scales: AvatarScales{
			Height:     scales.Get("height").Float(),
			Width:      scales.Get("width").Float(),
			Head:       scales.Get("head").Float(),
			Depth:      scales.Get("depth").Float(),
			Proportion: scales.Get("proportion").Float(),
			BodyType:   scales.Get("bodyType").Float(),
		},
		BodyColors: BodyColors{
			Head:     colors.Get("headColor3").String(),
			Torso:    colors.Get("torsoColor3").String(),
			RightArm: colors.Get("rightArmColor3").String(),
			LeftArm:  colors.Get("leftArmColor3").String(),
			RightLeg: colors.Get("rightLegColor3").String(),
			LeftLeg:  colors.Get("leftLegColor3").String(),
		},
		Assets:              make([]AvatarAsset, 0),
		Emotes:              make([]AvatarEmote, 0),
		DefaultShirtApplied: data.Get("defaultShirtApplied").Bool(),
		DefaultPantsApplied: data.Get("defaultPantsApplied").Bool(),
	}
	for _, a := range data.Get("assets").Array() {
		d.Assets = append(d.Assets, AvatarAsset{ID: a.Get("id").Int(), Name: a.Get("name").String()})
	}
	for _, e := range data.Get("emotes").Array() {
		d.Emotes = append(d.Emotes, AvatarEmote{
			AssetID:  e.Get("assetId").Int(),
			Name:     e.Get("assetName").String(),
			Position: int(e.Get("position").Int()),
		})
	}
	return d, nil
}

// CurrentlyWearing returns the ids of the assets user's avatar wears.
func (p *AvatarProvider) CurrentlyWearing(ctx context.Context, user entity.Identifier) ([]int64, error) {
	body, err := p.s.get(ctx, "avatar", fmt.Sprintf("v1/users/%d/currently-wearing", user.EntityID()), nil)
	if err != nil {
		return nil, fmt.Errorf("get currently wearing of %d: %w", user.EntityID(), err)
	}
	ids := make([]int64, 0)
	for _, id := range gjson.GetBytes(body, "assetIds").Array() {
		ids = append(ids, id.Int())
	}
	return ids, nil
}

// Outfits iterates the outfits of user. A pageSize of 0 uses DefaultOutfitPageSize.
func (p *AvatarProvider) Outfits(user entity.Identifier, outfitType OutfitType, pageSize int) *pagination.Iterator[*Outfit] {
	if pageSize <= 0 {
		pageSize = DefaultOutfitPageSize
	}
	if outfitType == "" {
		outfitType = OutfitAll
	}
	rawURL := p.s.urls.URLf("avatar", "v2/avatar/users/%d/outfits", user.EntityID())
	return pagination.New(p.s.transport, rawURL, pageSize,
		func(_ context.Context, item gjson.Result) (*Outfit, error) {
			base, err := entity.BaseFrom(item)
			if err != nil {
				return nil, err
			}
			return &Outfit{
				Base:       base,
				session:    p.s,
				Name:       item.Get("name").String(),
				IsEditable: item.Get("isEditable").Bool(),
				OutfitType: OutfitType(item.Get("outfitType").String()),
			}, nil
		}).
		With("itemsPerPage", strconv.Itoa(pageSize)).
		With("outfitType", string(outfitType))
}
