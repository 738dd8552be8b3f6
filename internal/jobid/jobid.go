// Package jobid derives short deterministic job identifiers from apply URLs.
// Equal postings reached through different tracking links collapse to the
// same id, which is what lets extension-submitted jobs and crawler-ingested
// jobs merge in the store.
package jobid

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Prefix is the namespace marker prepended to every job id.
const Prefix = "job_"

// digestLen is the number of base64url characters kept from the digest.
const digestLen = 16

// ErrNoURL is returned when no usable apply URL is available.
var ErrNoURL = fmt.Errorf("no usable apply URL")

// trackingParams are query parameters stripped during normalization.
// Two links to the same posting routinely differ only in these.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"gclid":        true,
	"fbclid":       true,
	"ref":          true,
	"referrer":     true,
	"source":       true,
	"src":          true,
}

// FromURL normalizes rawURL and returns its job id.
// Determinism is the only contract: equal normalized URLs always yield
// equal ids.
func FromURL(rawURL string) (string, error) {
	normalized, err := Normalize(rawURL)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(normalized))
	encoded := base64.RawURLEncoding.EncodeToString(sum[:])
	return Prefix + encoded[:digestLen], nil
}

// Normalize canonicalizes an apply URL: fragment dropped, tracking query
// parameters removed, a single trailing slash stripped from a non-root path.
func Normalize(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrNoURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrNoURL, rawURL)
	}

	parsed.Fragment = ""

	query := parsed.Query()
	for param := range query {
		if trackingParams[strings.ToLower(param)] {
			query.Del(param)
		}
	}
	parsed.RawQuery = query.Encode()

	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}
