package fragment

import (
	"errors"
	"net/url"
)

// Errors from ParseURL.
var (
	// ErrBadURL is returned when the input is not a parseable URL.
	ErrBadURL = errors.New("bad paste url")

	// ErrNeedKey is returned when the URL carries no decryption key in its
	// fragment.
	ErrNeedKey = errors.New("missing decryption key")
)

// ParsedURL is a paste URL split into its server-visible part and the
// client-only fragment record.
type ParsedURL struct {
	// SanitizedURL is the original URL with the fragment stripped. Only
	// this part may be sent over the network.
	SanitizedURL *url.URL
	Record
}

// ParseURL parses a full paste URL, extracts the fragment record, and
// strips the fragment from the URL so it cannot leak into a request.
func ParseURL(raw string) (*ParsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrBadURL
	}
	if u.Fragment == "" {
		return nil, ErrNeedKey
	}

	record, err := Parse(u.Fragment)
	if err != nil {
		return nil, err
	}
	if record.Key == nil {
		return nil, ErrNeedKey
	}

	u.Fragment = ""
	return &ParsedURL{SanitizedURL: u, Record: record}, nil
}
