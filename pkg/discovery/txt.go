package discovery

import "strings"

// DNS-SD constants.
const (
	// ServiceType is the DNS-SD service HoloPair peers advertise.
	ServiceType = "_holopair._tcp"

	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."

	// ProtocolVersion is the value of the "v" TXT key.
	ProtocolVersion = "1"
)

// TXT record keys.
const (
	TXTKeyVersion = "v"
	TXTKeyRole    = "role"
)

// Advertised roles.
const (
	RoleInitiator = "initiator"
	RoleResponder = "responder"
)

// ValidRole reports whether role can be advertised.
func ValidRole(role string) bool {
	return role == RoleInitiator || role == RoleResponder
}

// EncodeTXT builds the TXT records for a peer of the given role.
func EncodeTXT(role string) []string {
	return []string{
		TXTKeyVersion + "=" + ProtocolVersion,
		TXTKeyRole + "=" + role,
	}
}

// ParseTXT parses "key=value" TXT records into a map. Keys are case
// insensitive and stored lower case; records without '=' map to "".
func ParseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		key, value, _ := strings.Cut(r, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if _, dup := out[key]; dup {
			// First occurrence wins (RFC 6763 §6.4).
			continue
		}
		out[key] = value
	}
	return out
}
