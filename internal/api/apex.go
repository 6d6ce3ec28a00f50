package api

import "strings"

// apexDomain drops the leftmost label of host when what remains is still a
// dotted domain: "go.example.com" -> "example.com". Hosts with a single dot
// or none ("example.com", "localhost:8080") are returned unchanged.
func apexDomain(host string) string {
	first, rest, ok := strings.Cut(host, ".")
	if !ok || first == "" || !strings.Contains(rest, ".") {
		return host
	}
	return rest
}
