package repositories

import (
	"fmt"
	"strings"
	"time"
)

// Entry kinds, one per key prefix.
const (
	KindChat    = "CHAT"
	KindIndex   = "INDEX"
	KindProfile = "PROFILE"
	KindEmail   = "EMAIL"
	KindMember  = "MEMBER"
	KindUnknown = "UNKNOWN"
)

// Prefixes lists the key prefixes written by the repositories.
var Prefixes = []string{"chat:", "idx:", "profile:", "email:", "member:"}

// Describe renders a raw key/value pair for the inspection tools.
// Password hashes are never rendered.
func Describe(key string, val []byte) (kind, detail string) {
	switch {
	case strings.HasPrefix(key, "chat:"):
		m, err := DecodeChat(val)
		if err != nil {
			return KindChat, "error: " + err.Error()
		}
		seen := "unseen"
		if m.Seen {
			seen = "seen"
		}
		return KindChat, fmt.Sprintf("[%s] %s -> %s (%s, %s): %s",
			m.OrganizationID, m.From, m.To, seen, m.CreatedAt.Format(time.RFC3339), m.Content)
	case strings.HasPrefix(key, "idx:"):
		return KindIndex, string(val)
	case strings.HasPrefix(key, "profile:"):
		p, err := DecodeProfile(val)
		if err != nil {
			return KindProfile, "error: " + err.Error()
		}
		return KindProfile, fmt.Sprintf("%s <%s> roles=%s", p.Name, p.Email, strings.Join(p.Roles, ","))
	case strings.HasPrefix(key, "email:"):
		return KindEmail, string(val)
	case strings.HasPrefix(key, "member:"):
		return KindMember, ""
	default:
		return KindUnknown, fmt.Sprintf("%d bytes", len(val))
	}
}
