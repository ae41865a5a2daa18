// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth guards the few write operations of the results service.

# Admin Keys

Admin keys use HMAC-SHA256 over the election ID:

	adminKey := auth.GenerateAdminKey(electionID, salt)
	err := auth.ValidateAdminKey(electionID, adminKey, salt)

The key is URL-safe base64 without padding. Because it is deterministic,
validation needs no storage. Handlers read it from the X-Admin-Key header
through RequestAdminKey.

# IDs

Snapshot and audit rows use random UUIDs:

	id := auth.NewID()

# IP Hashing

Audit entries identify callers by a salted hash of their address:

	user := auth.HashIP(ipAddress, salt)

Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
