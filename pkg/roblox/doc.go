// Package roblox is a typed client for the platform's REST APIs.
//
// A Session owns the transport, the URL generator, the session cache and one
// provider per entity kind:
//
//	s, err := roblox.NewFromConfig(roblox.DefaultConfig(), client.DefaultConfig(nil, ""))
//	if err != nil {
//		return err
//	}
//	u, err := s.Users.Get(ctx, 1)
//
// # Entity forms
//
// Every entity carries an entity.Base (its id) and an explicit handle to the
// session. Richer data is attached as optional enrichment structs, so the same
// type covers the id-only, partial and fully fetched forms:
//
//	u := s.Users.Base(1)            // id only, no request
//	u.Display == nil                // true
//	full, _ := s.Users.Get(ctx, 1)  // cache-through fetch
//	full.Resolved()                 // true
//
// # References
//
// Entities embedding another entity (a badge's awarding universe, an asset's
// owner, a presence's user) resolve it at construction time through
// entity.Resolve. Config.AllowPartials decides for the whole session whether
// the reference is a stub built from the embedding payload or a cache-through
// fetch. Independent references of one payload are fetched in parallel.
//
// # Refresh
//
// Refresh never mutates its receiver. It returns a new snapshot and replaces
// the session cache entry.
package roblox
