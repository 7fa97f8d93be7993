package fdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db := Open(dir)
	require.NoError(t, db.DomainInit("chars"))
	return db
}

func TestRoundTrip(t *testing.T) {
	db := newTestDB(t)

	pairs := map[string]string{
		"name.short": "Alice",
		"desc.long":  "  Hello World\nThis is great stuff.",
		"weird":      "100% \"quoted\" text",
		"eq":         "a=b=c",
	}

	w, err := db.WriteBegin("chars", "7")
	require.NoError(t, err)
	for name, value := range pairs {
		require.NoError(t, w.WritePair(name, value))
	}
	require.NoError(t, w.End())

	r, err := db.ReadBegin("chars", "7")
	require.NoError(t, err)
	got := map[string]string{}
	for r.Next() {
		name, value := r.Pair()
		got[name] = value
	}
	require.NoError(t, r.End())

	assert.Equal(t, pairs, got)
}

// TestEscapeScenario writes a value containing leading whitespace and an
// embedded newline and checks it round-trips exactly through escaping.
func TestEscapeScenario(t *testing.T) {
	db := newTestDB(t)

	w, err := db.WriteBegin("chars", "5")
	require.NoError(t, err)
	require.NoError(t, w.WritePair("desc.long", "  Hello World\nThis is great stuff."))
	require.NoError(t, w.End())

	raw, err := os.ReadFile(filepath.Join(db.BaseDir(), "chars", "5"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "%20%20Hello%20World%0AThis%20is%20great%20stuff.")

	r, err := db.ReadBegin("chars", "5")
	require.NoError(t, err)
	require.True(t, r.Next())
	name, value := r.Pair()
	assert.Equal(t, "desc.long", name)
	assert.Equal(t, "  Hello World\nThis is great stuff.", value)
	require.False(t, r.Next())
	require.NoError(t, r.End())
}

func TestReadMissingIsNotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.ReadBegin("chars", "999")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMalformedBlankLine(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, os.WriteFile(filepath.Join(db.BaseDir(), "chars", "1"), []byte("name = x\n\n"), 0o644))

	r, err := db.ReadBegin("chars", "1")
	require.NoError(t, err)
	require.True(t, r.Next())
	assert.False(t, r.Next())
	assert.True(t, errors.Is(r.End(), ErrMalformed))
}

func TestMalformedMissingEquals(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, os.WriteFile(filepath.Join(db.BaseDir(), "chars", "1"), []byte("not-a-pair\n"), 0o644))

	r, err := db.ReadBegin("chars", "1")
	require.NoError(t, err)
	assert.False(t, r.Next())
	assert.True(t, errors.Is(r.End(), ErrMalformed))
}

func TestEmptyFileIsEmptyRecord(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, os.WriteFile(filepath.Join(db.BaseDir(), "chars", "1"), nil, 0o644))

	r, err := db.ReadBegin("chars", "1")
	require.NoError(t, err)
	assert.False(t, r.Next())
	require.NoError(t, r.End())
}

func TestWriteAbortDiscardsTemp(t *testing.T) {
	db := newTestDB(t)

	// A record already exists.
	w, err := db.WriteBegin("chars", "2")
	require.NoError(t, err)
	require.NoError(t, w.WritePair("name", "old"))
	require.NoError(t, w.End())

	w2, err := db.WriteBegin("chars", "2")
	require.NoError(t, err)
	require.NoError(t, w2.WritePair("name", "new"))
	w2.Abort()
	assert.Error(t, w2.End())

	_, err = os.Stat(filepath.Join(db.BaseDir(), "chars", "2.tmp"))
	assert.True(t, os.IsNotExist(err), "aborted write must not leave a .tmp behind")

	r, err := db.ReadBegin("chars", "2")
	require.NoError(t, err)
	require.True(t, r.Next())
	_, value := r.Pair()
	assert.Equal(t, "old", value, "prior record must survive an aborted rewrite")
	require.NoError(t, r.End())
}

func TestIteratorFiltersTempAndDotfiles(t *testing.T) {
	db := newTestDB(t)
	dir := filepath.Join(db.BaseDir(), "chars")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "5"), []byte("id = 5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "5.tmp"), []byte("id = 5\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "6~"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "7"), 0o755))

	it, err := db.IteratorBegin("chars")
	require.NoError(t, err)

	var ids []string
	for {
		id, ok := it.Next()
		if !ok {
			break
		}
		ids = append(ids, id)
	}
	it.End()

	assert.Equal(t, []string{"5"}, ids)
}

func TestWritePairFormat(t *testing.T) {
	db := newTestDB(t)
	w, err := db.WriteBegin("chars", "3")
	require.NoError(t, err)
	require.NoError(t, w.WriteFormat("hp", "%d", 42))
	require.NoError(t, w.End())

	r, err := db.ReadBegin("chars", "3")
	require.NoError(t, err)
	require.True(t, r.Next())
	_, value := r.Pair()
	assert.Equal(t, "42", value)
	require.NoError(t, r.End())
}
