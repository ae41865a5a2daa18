// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// AdminKeyHeader carries the per-election admin key
const AdminKeyHeader = "X-Admin-Key"

// Audit roles
const (
	RoleAdmin  = "admin"
	RolePublic = "public"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrMissingAdminKey = errors.New("admin key required")
)

// NewID returns a random UUID for snapshot and audit rows
func NewID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based admin key for an election.
// The key is deterministic, so nothing has to be stored to validate it.
func GenerateAdminKey(electionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(electionID))
	sum := h.Sum(nil)
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the election
func ValidateAdminKey(electionID, adminKey, salt string) error {
	if adminKey == "" {
		return ErrMissingAdminKey
	}
	expected := GenerateAdminKey(electionID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// RequestAdminKey validates the admin key header of r for electionID
func RequestAdminKey(r *http.Request, electionID, salt string) error {
	return ValidateAdminKey(electionID, strings.TrimSpace(r.Header.Get(AdminKeyHeader)), salt)
}

// HashIP creates a one-way hash of an IP address.
// Audit entries record this instead of the address itself.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are enough to tell callers apart
	return hex.EncodeToString(sum[:8])
}
