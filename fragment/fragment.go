// Package fragment encodes and decodes the URL fragment that carries a
// paste's decryption key and display hints. The fragment is never sent to
// the server, so everything in it stays client-side.
//
// The grammar is either a bare base64url key (the shortest, oldest link
// form) or a tagged form:
//
//	key:<base64url(key)>[!pw][!name:<file name>][!lang:<language>]
//
// Values are not escaped; a file name containing '!' or ':' corrupts the
// segments after it. This is a known limitation of the wire grammar and is
// kept as-is because existing links depend on the exact delimiter behavior.
package fragment

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/omgupl/omgupl/crypto"
)

// ErrInvalidDecryptionKey is returned when a fragment's key is not valid
// base64url or does not decode to exactly crypto.KeySize bytes.
var ErrInvalidDecryptionKey = errors.New("invalid decryption key")

// Record is the parsed contents of a fragment. It is built once by the
// uploader and parsed once by the downloader; nothing persists it.
type Record struct {
	// Key decrypts the paste's content layer.
	Key *crypto.Key
	// NeedsPassword reports whether a password layer wraps the content.
	// This bit exists only here, never in the ciphertext blob.
	NeedsPassword bool
	// FileName is an optional display hint.
	FileName string
	// Language is an optional syntax-highlighting hint.
	Language string
}

// Builder assembles a fragment string for a freshly sealed paste.
type Builder struct {
	key           *crypto.Key
	needsPassword bool
	fileName      string
	language      string
}

// NewBuilder starts a fragment for the given content key.
func NewBuilder(key *crypto.Key) *Builder {
	return &Builder{key: key}
}

// NeedsPassword marks the paste as password-protected.
func (b *Builder) NeedsPassword() *Builder {
	b.needsPassword = true
	return b
}

// FileName attaches a file name hint. Names containing '!' or ':' are not
// representable; see the package comment.
func (b *Builder) FileName(name string) *Builder {
	b.fileName = name
	return b
}

// Language attaches a syntax-highlighting hint.
func (b *Builder) Language(language string) *Builder {
	b.language = language
	return b
}

// Build serializes the fragment. With no flags set the output is the bare
// base64url key, keeping minimal links short and backward compatible.
func (b *Builder) Build() string {
	encoded := encode(b.key.Bytes())
	if !b.needsPassword && b.fileName == "" && b.language == "" {
		return encoded
	}

	var sb strings.Builder
	sb.WriteString("key:")
	sb.WriteString(encoded)
	if b.needsPassword {
		sb.WriteString("!pw")
	}
	if b.fileName != "" {
		sb.WriteString("!name:")
		sb.WriteString(b.fileName)
	}
	if b.language != "" {
		sb.WriteString("!lang:")
		sb.WriteString(b.language)
	}
	return sb.String()
}

// Parse decodes a fragment string, already separated from its URL.
//
// A string without the literal "key:" is treated as a bare base64url key.
// Otherwise the string splits on '!' into segments, each segment splits on
// its first ':', and the keys "key", "pw", "name" and "lang" are
// interpreted. Unknown keys, malformed pairs, and empty segments from
// doubled or trailing '!' are ignored, so older clients keep working when
// new tags appear.
func Parse(s string) (Record, error) {
	if !strings.Contains(s, "key:") {
		key, err := decodeKey(s)
		if err != nil {
			return Record{}, err
		}
		return Record{Key: key}, nil
	}

	var record Record
	for _, segment := range strings.Split(s, "!") {
		name, value, hasValue := strings.Cut(segment, ":")
		switch name {
		case "key":
			if !hasValue {
				continue
			}
			key, err := decodeKey(value)
			if err != nil {
				return Record{}, err
			}
			record.Key = key
		case "pw":
			record.NeedsPassword = true
		case "name":
			if hasValue {
				record.FileName = value
			}
		case "lang":
			if hasValue {
				record.Language = value
			}
		}
	}

	if record.Key == nil {
		return Record{}, ErrInvalidDecryptionKey
	}
	return record, nil
}

func decodeKey(s string) (*crypto.Key, error) {
	raw, err := decode(s)
	if err != nil {
		return nil, ErrInvalidDecryptionKey
	}
	key, err := crypto.KeyFromBytes(raw)
	if err != nil {
		return nil, ErrInvalidDecryptionKey
	}
	return key, nil
}

// encode emits padded URL-safe base64, matching what existing links carry.
func encode(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}

// decode accepts URL-safe base64 with or without padding.
func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
