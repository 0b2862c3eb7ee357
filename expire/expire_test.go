package expire

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		wantKind Kind
		wantIn   time.Duration
		wantErr  bool
	}{
		{name: "Burn after reading", input: "read", wantKind: BurnAfterReading},
		{name: "Five minutes", input: "5m", wantKind: UnixTime, wantIn: 5 * time.Minute},
		{name: "Ten minutes", input: "10m", wantKind: UnixTime, wantIn: 10 * time.Minute},
		{name: "One hour", input: "1h", wantKind: UnixTime, wantIn: time.Hour},
		{name: "One day", input: "1d", wantKind: UnixTime, wantIn: 24 * time.Hour},
		{name: "Permanent is refused", input: "forever", wantErr: true},
		{name: "Empty is refused", input: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			exp, err := Parse(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantKind, exp.Kind)
			if tc.wantIn > 0 {
				assert.WithinDuration(t, time.Now().UTC().Add(tc.wantIn), exp.Time, 5*time.Second)
			}
		})
	}
}

func TestHeaderValueRoundTrip(t *testing.T) {
	deadline := time.Now().UTC().Add(time.Hour).Truncate(time.Second)

	cases := []struct {
		name string
		exp  Expiration
		want Kind
	}{
		{name: "Unix time", exp: Expiration{Kind: UnixTime, Time: deadline}, want: UnixTime},
		{name: "Burn", exp: Expiration{Kind: BurnAfterReading}, want: BurnAfterReading},
		// The deadline of a stored burn paste is server-internal; on the
		// wire it collapses back to "0".
		{name: "Burn with deadline", exp: Expiration{Kind: BurnAfterReadingWithDeadline, Time: deadline}, want: BurnAfterReading},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseHeaderValue(tc.exp.HeaderValue())
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed.Kind)
			if tc.want == UnixTime {
				assert.True(t, parsed.Time.Equal(deadline))
			}
		})
	}
}

func TestParseHeaderValueRejectsGarbage(t *testing.T) {
	for _, v := range []string{"", "tomorrow", "1636000000"} {
		_, err := ParseHeaderValue(v)
		assert.Error(t, err, "value %q", v)
	}
}

func TestExpired(t *testing.T) {
	now := time.Now().UTC()

	assert.True(t, Expiration{Kind: UnixTime, Time: now.Add(-time.Minute)}.Expired(now))
	assert.False(t, Expiration{Kind: UnixTime, Time: now.Add(time.Minute)}.Expired(now))
	// Burn pastes never expire by clock alone.
	assert.False(t, Expiration{Kind: BurnAfterReading}.Expired(now))
	assert.False(t, Expiration{Kind: BurnAfterReadingWithDeadline, Time: now.Add(-time.Minute)}.Expired(now))
}

func TestJSONRoundTrip(t *testing.T) {
	deadline := time.Now().UTC().Truncate(time.Second)

	cases := []Expiration{
		{Kind: BurnAfterReading},
		{Kind: BurnAfterReadingWithDeadline, Time: deadline},
		{Kind: UnixTime, Time: deadline},
	}

	for _, exp := range cases {
		data, err := json.Marshal(exp)
		require.NoError(t, err)

		var got Expiration
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, exp.Kind, got.Kind)
		assert.True(t, got.Time.Equal(exp.Time))
	}
}

func TestUnmarshalRejectsCorruptMetadata(t *testing.T) {
	for _, data := range []string{
		`{"kind":"eternal"}`,
		`{"kind":"unix-time"}`,
		`{}`,
		`not json`,
	} {
		var got Expiration
		assert.Error(t, json.Unmarshal([]byte(data), &got), "input %s", data)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t,
		"This item has been burned. You now have the only copy.",
		Expiration{Kind: BurnAfterReading}.String())
	assert.Contains(t, Expiration{Kind: UnixTime, Time: time.Now()}.String(), "This item will expire on")
}
