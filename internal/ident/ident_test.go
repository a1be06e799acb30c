package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeItem struct {
	id string
}

func (f *fakeItem) ID() string      { return f.id }
func (f *fakeItem) SetID(id string) { f.id = id }

func TestValid(t *testing.T) {
	valid := []string{"a", "0191e2f3-aaaa-7bbb-8ccc-000000000001", "note_01", "X-Y_z9"}
	for _, id := range valid {
		assert.True(t, Valid(id), "id %q", id)
	}

	invalid := []string{"", "has space", "semi;colon", "sla/sh", "uniécode"}
	for _, id := range invalid {
		assert.False(t, Valid(id), "id %q", id)
	}
}

func TestAssigner_Ensure_KeepsValidID(t *testing.T) {
	a := NewAssigner(NewFixedGenerator("unused"))
	item := &fakeItem{id: "existing-id"}

	id, assigned := a.Ensure(item)

	assert.Equal(t, "existing-id", id)
	assert.False(t, assigned)
	assert.Equal(t, "existing-id", item.id, "valid identifier must never change")
}

func TestAssigner_Ensure_AssignsWhenMissing(t *testing.T) {
	a := NewAssigner(NewFixedGenerator("id-1", "id-2"))

	missing := &fakeItem{}
	id, assigned := a.Ensure(missing)
	assert.Equal(t, "id-1", id)
	assert.True(t, assigned)
	assert.Equal(t, "id-1", missing.id)

	malformed := &fakeItem{id: "not valid!"}
	id, assigned = a.Ensure(malformed)
	assert.Equal(t, "id-2", id)
	assert.True(t, assigned)
}

func TestAssigner_Ensure_UUIDDefault(t *testing.T) {
	a := NewAssigner(nil)
	item := &fakeItem{}

	id, assigned := a.Ensure(item)

	assert.True(t, assigned)
	assert.True(t, Valid(id), "generated id %q must satisfy the grammar", id)
	assert.Len(t, id, 36)
}

func TestAssigner_Migrate_Idempotent(t *testing.T) {
	a := NewAssigner(NewFixedGenerator("id-1", "id-2"))
	items := []Identifiable{
		&fakeItem{},
		&fakeItem{id: "kept"},
		&fakeItem{},
	}

	assert.Equal(t, 2, a.Migrate(items))

	// Second run assigns nothing and leaves identifiers untouched.
	before := []string{items[0].ID(), items[1].ID(), items[2].ID()}
	assert.Equal(t, 0, a.Migrate(items))
	after := []string{items[0].ID(), items[1].ID(), items[2].ID()}
	assert.Equal(t, before, after)
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	g := UUIDv7Generator{}
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		require.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("What is the capital of France? :: Paris")
	b := Fingerprint("What is the capital of France? :: Paris")
	c := Fingerprint("different content")

	assert.Equal(t, a, b, "fingerprint must be stable for identical content")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)

	// NFC normalization: composed and decomposed é fingerprint identically.
	composed := Fingerprint("café")
	decomposed := Fingerprint("café")
	assert.Equal(t, composed, decomposed)
}
