// Package entity defines the identity contract shared by every platform entity
// and the single resolution policy used wherever one entity embeds a reference
// to another.
//
// # Identity
//
// Every entity carries an immutable integer id and a Kind. Two entities are equal
// when both the Kind and the id match, regardless of how much of the payload each
// of them holds:
//
//	entity.Equal(stubUser, fetchedUser) // true when both are user 42
//
// Identifier is the numeric coercion used at call sites that accept either an
// entity or a raw id:
//
//	session.Presence.Get(ctx, user, entity.ID(261))
//
// # References
//
// Resolve turns an embedded reference into either a partial stub (no network
// cost) or a fetched entity, depending on the owning session's Policy. Provider
// types implement Source for their kind so the same procedure serves every
// reference site.
package entity
