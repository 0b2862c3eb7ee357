package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omgupl/omgupl/expire"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := testStore(t)
	code := []byte("CFGHJMPQRVWX")
	blob := []byte{0xde, 0xad, 0xbe, 0xef}
	exp := expire.Expiration{Kind: expire.UnixTime, Time: time.Now().UTC().Add(time.Hour).Truncate(time.Second)}

	require.NoError(t, store.Put(code, blob, exp))

	got, err := store.Get(code)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	gotExp, err := store.GetExpiration(code)
	require.NoError(t, err)
	assert.Equal(t, expire.UnixTime, gotExp.Kind)
	assert.True(t, gotExp.Time.Equal(exp.Time))
}

func TestGetMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.Get([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetExpiration([]byte("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	store := testStore(t)
	code := []byte("CFGHJMPQRVWX")

	ok, err := store.Exists(code)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(code, []byte("x"), expire.Expiration{Kind: expire.BurnAfterReading}))

	ok, err = store.Exists(code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	code := []byte("CFGHJMPQRVWX")
	require.NoError(t, store.Put(code, []byte("x"), expire.Expiration{Kind: expire.BurnAfterReading}))

	require.NoError(t, store.Delete(code))

	_, err := store.Get(code)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetExpiration(code)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing paste is not an error.
	require.NoError(t, store.Delete(code))
}

func TestCount(t *testing.T) {
	store := testStore(t)

	n, err := store.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, code := range []string{"aaaaaaaaaaaa", "bbbbbbbbbbbb", "cccccccccccc"} {
		require.NoError(t, store.Put([]byte(code), []byte("x"), expire.Expiration{Kind: expire.BurnAfterReading}))
	}

	n, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

// putRawMeta writes metadata directly, bypassing Put's JSON encoding.
func (s *Store) putRawMeta(code, raw []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(metaKey(code), raw)
	})
}

func TestForEachExpiration(t *testing.T) {
	store := testStore(t)

	deadline := time.Now().UTC().Add(time.Hour)
	require.NoError(t, store.Put([]byte("valid_______"), []byte("x"),
		expire.Expiration{Kind: expire.UnixTime, Time: deadline}))
	require.NoError(t, store.putRawMeta([]byte("corrupt_____"), []byte("not json")))

	corruptCodes := map[string]bool{}
	err := store.ForEachExpiration(func(code []byte, exp expire.Expiration, corrupt bool) {
		corruptCodes[string(code)] = corrupt
	})
	require.NoError(t, err)
	assert.False(t, corruptCodes["valid_______"])
	assert.True(t, corruptCodes["corrupt_____"])
}

func TestOpenRejectsBadPath(t *testing.T) {
	_, err := Open(Config{Path: "/dev/null/not-a-dir"})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
