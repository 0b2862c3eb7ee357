// Package expire models paste lifetimes: fixed deadlines and
// burn-after-reading, plus their on-the-wire header encoding.
package expire

import (
	"encoding/json"
	"fmt"
	"time"
)

// HeaderName is the request header a client uses to ask for a non-default
// lifetime. The value is either "0" (burn after reading) or an RFC 3339
// deadline. Responses echo the deadline in the standard Expires header.
const HeaderName = "Burn-After"

// Kind discriminates the expiration variants.
type Kind int

const (
	// BurnAfterReading deletes the paste on first download.
	BurnAfterReading Kind = iota
	// BurnAfterReadingWithDeadline deletes on first download or at the
	// deadline, whichever comes first. The server converts every stored
	// BurnAfterReading into this so unread pastes still die.
	BurnAfterReadingWithDeadline
	// UnixTime deletes the paste at a fixed deadline.
	UnixTime
)

// Expiration is a tagged union of Kind and, for the deadlined variants, the
// deadline itself.
type Expiration struct {
	Kind Kind
	Time time.Time
}

// Default returns the standard lifetime for pastes uploaded without a
// Burn-After header: one day from now.
func Default() Expiration {
	return Expiration{Kind: UnixTime, Time: time.Now().UTC().Add(24 * time.Hour)}
}

// Parse maps the CLI duration spellings onto expirations. Permanent pastes
// are deliberately not representable.
func Parse(s string) (Expiration, error) {
	now := time.Now().UTC()
	switch s {
	case "read":
		return Expiration{Kind: BurnAfterReading}, nil
	case "5m":
		return Expiration{Kind: UnixTime, Time: now.Add(5 * time.Minute)}, nil
	case "10m":
		return Expiration{Kind: UnixTime, Time: now.Add(10 * time.Minute)}, nil
	case "1h":
		return Expiration{Kind: UnixTime, Time: now.Add(time.Hour)}, nil
	case "1d":
		return Expiration{Kind: UnixTime, Time: now.Add(24 * time.Hour)}, nil
	default:
		return Expiration{}, fmt.Errorf("unknown duration %q (want read, 5m, 10m, 1h or 1d)", s)
	}
}

// ParseHeaderValue decodes a Burn-After or Expires header value.
func ParseHeaderValue(v string) (Expiration, error) {
	if v == "0" {
		return Expiration{Kind: BurnAfterReading}, nil
	}
	deadline, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return Expiration{}, fmt.Errorf("bad expiration header value %q: %w", v, err)
	}
	return Expiration{Kind: UnixTime, Time: deadline}, nil
}

// HeaderValue encodes the expiration for a header. Both burn variants
// encode as "0"; the client never needs to know the server-imposed
// deadline of an unread burn paste.
func (e Expiration) HeaderValue() string {
	switch e.Kind {
	case BurnAfterReading, BurnAfterReadingWithDeadline:
		return "0"
	default:
		return e.Time.UTC().Format(time.RFC3339)
	}
}

// Burns reports whether the paste is destroyed by reading it.
func (e Expiration) Burns() bool {
	return e.Kind == BurnAfterReading || e.Kind == BurnAfterReadingWithDeadline
}

// Deadline returns the wall-clock deletion time, if the variant has one.
func (e Expiration) Deadline() (time.Time, bool) {
	switch e.Kind {
	case BurnAfterReadingWithDeadline, UnixTime:
		return e.Time, true
	default:
		return time.Time{}, false
	}
}

// Expired reports whether a fixed deadline has passed. Burn-after-reading
// without a deadline never expires by clock.
func (e Expiration) Expired(now time.Time) bool {
	if e.Kind != UnixTime {
		return false
	}
	return e.Time.Before(now)
}

// String renders the user-facing expiration notice.
func (e Expiration) String() string {
	switch e.Kind {
	case BurnAfterReading, BurnAfterReadingWithDeadline:
		return "This item has been burned. You now have the only copy."
	default:
		return e.Time.Local().Format("This item will expire on Monday, January 2, 2006 at 15:04:05 MST.")
	}
}

type expirationJSON struct {
	Kind string     `json:"kind"`
	Time *time.Time `json:"time,omitempty"`
}

const (
	jsonBurn         = "burn-after-reading"
	jsonBurnDeadline = "burn-after-reading-with-deadline"
	jsonUnixTime     = "unix-time"
)

// MarshalJSON encodes the stored metadata form.
func (e Expiration) MarshalJSON() ([]byte, error) {
	out := expirationJSON{}
	switch e.Kind {
	case BurnAfterReading:
		out.Kind = jsonBurn
	case BurnAfterReadingWithDeadline:
		out.Kind = jsonBurnDeadline
		t := e.Time
		out.Time = &t
	case UnixTime:
		out.Kind = jsonUnixTime
		t := e.Time
		out.Time = &t
	default:
		return nil, fmt.Errorf("unknown expiration kind %d", e.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the stored metadata form.
func (e *Expiration) UnmarshalJSON(data []byte) error {
	var in expirationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case jsonBurn:
		e.Kind = BurnAfterReading
		e.Time = time.Time{}
	case jsonBurnDeadline, jsonUnixTime:
		if in.Time == nil {
			return fmt.Errorf("expiration kind %q requires a time", in.Kind)
		}
		if in.Kind == jsonBurnDeadline {
			e.Kind = BurnAfterReadingWithDeadline
		} else {
			e.Kind = UnixTime
		}
		e.Time = *in.Time
	default:
		return fmt.Errorf("unknown expiration kind %q", in.Kind)
	}
	return nil
}
