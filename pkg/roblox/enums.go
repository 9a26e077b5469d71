package roblox

import "github.com/Sternrassler/rbx-client/pkg/pagination"

// SortOrder re-exports the pagination sort order.
type SortOrder = pagination.SortOrder

const (
	Ascending  = pagination.Ascending
	Descending = pagination.Descending
)

// PresenceType is a user's online state.
type PresenceType int

const (
	PresenceOffline PresenceType = iota
	PresenceOnline
	PresenceInGame
	PresenceInStudio
	PresenceInvisible
)

var presenceNames = [...]string{"Offline", "Online", "In Game", "Studio", "Invisible"}

// Color values match the website's presence indicators.
var presenceColors = [...]uint32{0x3B3B3B, 0x5883F2, 0x52DE4B, 0xDDAE4A, 0xE04646}

// String returns the display name of the presence type.
func (p PresenceType) String() string {
	if p < 0 || int(p) >= len(presenceNames) {
		return "Unknown"
	}
	return presenceNames[p]
}

// Color returns the RGB indicator color of the presence type.
func (p PresenceType) Color() uint32 {
	if p < 0 || int(p) >= len(presenceColors) {
		return presenceColors[PresenceOffline]
	}
	return presenceColors[p]
}

// ThumbnailState is the generation state of a thumbnail.
type ThumbnailState string

const (
	ThumbnailCompleted              ThumbnailState = "Completed"
	ThumbnailPending                ThumbnailState = "Pending"
	ThumbnailBlocked                ThumbnailState = "Blocked"
	ThumbnailError                  ThumbnailState = "Error"
	ThumbnailInReview               ThumbnailState = "InReview"
	ThumbnailTemporarilyUnavailable ThumbnailState = "TemporarilyUnavailable"
)

// ThumbnailFormat is an image encoding.
type ThumbnailFormat string

const (
	FormatPNG  ThumbnailFormat = "Png"
	FormatJPEG ThumbnailFormat = "Jpeg"
	FormatWebP ThumbnailFormat = "Webp"
)

// Thumbnail sizes accepted by the thumbnail endpoints.
const (
	SizeBadgeIcon = "150x150"

	SizeUniverse768x432 = "768x432"
	SizeUniverse576x324 = "576x324"
	SizeUniverse480x270 = "480x270"
	SizeUniverse384x216 = "384x216"
	SizeUniverse256x144 = "256x144"

	SizePlace50  = "50x50"
	SizePlace128 = "128x128"
	SizePlace150 = "150x150"
	SizePlace256 = "256x256"
	SizePlace512 = "512x512"

	SizeOutfit150 = "150x150"
	SizeOutfit420 = "420x420"

	SizeUser48  = "48x48"
	SizeUser60  = "60x60"
	SizeUser100 = "100x100"
	SizeUser150 = "150x150"
	SizeUser180 = "180x180"
	SizeUser352 = "352x352"
	SizeUser420 = "420x420"
	SizeUser720 = "720x720"
)

// PlaceThumbnailPolicy controls what is returned for a place without an icon.
type PlaceThumbnailPolicy string

const (
	PolicyPlaceHolder        PlaceThumbnailPolicy = "PlaceHolder"
	PolicyAutoGenerated      PlaceThumbnailPolicy = "AutoGenerated"
	PolicyForceAutoGenerated PlaceThumbnailPolicy = "ForceAutoGenerated"
)

// UserThumbnailType selects a user thumbnail endpoint.
type UserThumbnailType string

const (
	UserThumbnailFullBody UserThumbnailType = "avatar"
	UserThumbnailBust     UserThumbnailType = "avatar-bust"
	UserThumbnailHeadshot UserThumbnailType = "avatar-headshot"
)

// AvatarType is the rig type of an avatar.
type AvatarType string

const (
	AvatarR15 AvatarType = "R15"
	AvatarR6  AvatarType = "R6"
)

// OutfitType filters the outfit listing.
type OutfitType string

const (
	OutfitAll         OutfitType = "All"
	OutfitAvatar      OutfitType = "Avatar"
	OutfitDynamicHead OutfitType = "DynamicHead"
)

// ServerType selects public or private game instances.
type ServerType int

const (
	ServerPublic ServerType = iota
	ServerFriend
)

// AssetType is a catalog asset type id.
type AssetType int

const (
	AssetImage               AssetType = 1
	AssetTShirt              AssetType = 2
	AssetAudio               AssetType = 3
	AssetMesh                AssetType = 4
	AssetLua                 AssetType = 5
	AssetHat                 AssetType = 8
	AssetPlace               AssetType = 9
	AssetModel               AssetType = 10
	AssetShirt               AssetType = 11
	AssetPants               AssetType = 12
	AssetDecal               AssetType = 13
	AssetHead                AssetType = 17
	AssetFace                AssetType = 18
	AssetGear                AssetType = 19
	AssetBadge               AssetType = 21
	AssetAnimation           AssetType = 24
	AssetTorso               AssetType = 27
	AssetRightArm            AssetType = 28
	AssetLeftArm             AssetType = 29
	AssetLeftLeg             AssetType = 30
	AssetRightLeg            AssetType = 31
	AssetPackage             AssetType = 32
	AssetGamePass            AssetType = 34
	AssetPlugin              AssetType = 38
	AssetMeshPart            AssetType = 40
	AssetHairAccessory       AssetType = 41
	AssetFaceAccessory       AssetType = 42
	AssetNeckAccessory       AssetType = 43
	AssetShoulderAccessory   AssetType = 44
	AssetFrontAccessory      AssetType = 45
	AssetBackAccessory       AssetType = 46
	AssetWaistAccessory      AssetType = 47
	AssetClimbAnimation      AssetType = 48
	AssetDeathAnimation      AssetType = 49
	AssetFallAnimation       AssetType = 50
	AssetIdleAnimation       AssetType = 51
	AssetJumpAnimation       AssetType = 52
	AssetRunAnimation        AssetType = 53
	AssetSwimAnimation       AssetType = 54
	AssetWalkAnimation       AssetType = 55
	AssetPoseAnimation       AssetType = 56
	AssetEarAccessory        AssetType = 57
	AssetEyeAccessory        AssetType = 58
	AssetEmoteAnimation      AssetType = 61
	AssetVideo               AssetType = 62
	AssetTShirtAccessory     AssetType = 64
	AssetShirtAccessory      AssetType = 65
	AssetPantsAccessory      AssetType = 66
	AssetJacketAccessory     AssetType = 67
	AssetSweaterAccessory    AssetType = 68
	AssetShortsAccessory     AssetType = 69
	AssetLeftShoeAccessory   AssetType = 70
	AssetRightShoeAccessory  AssetType = 71
	AssetDressSkirtAccessory AssetType = 72
	AssetFontFamily          AssetType = 73
	AssetEyebrowAccessory    AssetType = 76
	AssetEyelashAccessory    AssetType = 77
	AssetMoodAnimation       AssetType = 78
	AssetDynamicHead         AssetType = 79
)
