package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddSetsFirstDefault(t *testing.T) {
	r := NewRegistry(nil, "")
	require.NoError(t, r.Add("checkout", Feature{ID: 100}))
	require.NoError(t, r.Add("search", Feature{ID: 200}))
	assert.Equal(t, "checkout", r.Default)
	assert.Equal(t, []string{"checkout", "search"}, r.Names())
}

func TestRegistry_AddDuplicate(t *testing.T) {
	r := NewRegistry(map[string]Feature{"checkout": {ID: 100}}, "checkout")
	err := r.Add("checkout", Feature{ID: 101})
	assert.ErrorIs(t, err, ErrFeatureExists)
	assert.Equal(t, 100, r.Features["checkout"].ID)
}

func TestRegistry_RemoveDefaultRejected(t *testing.T) {
	r := NewRegistry(map[string]Feature{"a": {ID: 1}, "b": {ID: 2}}, "a")

	assert.ErrorIs(t, r.Remove("a"), ErrRemoveDefault)
	assert.Contains(t, r.Features, "a")

	require.NoError(t, r.SetDefault("b"))
	require.NoError(t, r.Remove("a"))
	assert.NotContains(t, r.Features, "a")
	assert.Equal(t, "b", r.Default)
}

func TestRegistry_RemoveAndSetDefaultMissing(t *testing.T) {
	r := NewRegistry(nil, "")
	assert.ErrorIs(t, r.Remove("nope"), ErrFeatureNotFound)
	assert.ErrorIs(t, r.SetDefault("nope"), ErrFeatureNotFound)
}

func TestNewRegistry_DropsDanglingDefault(t *testing.T) {
	r := NewRegistry(map[string]Feature{"a": {ID: 1}}, "gone")
	assert.Empty(t, r.Default)
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(map[string]Feature{
		"checkout": {ID: 100},
		"search":   {ID: 200},
	}, "checkout")

	cases := []struct {
		input   string
		name    string
		wantErr bool
	}{
		{"checkout", "checkout", false},
		{"200", "search", false},
		{"300", "", true},
		{"billing", "", true},
	}
	for _, tc := range cases {
		name, _, err := r.Lookup(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrFeatureNotFound, "input=%s", tc.input)
			continue
		}
		require.NoError(t, err, "input=%s", tc.input)
		assert.Equal(t, tc.name, name)
	}
}

func TestRegistry_LookupOrDefault(t *testing.T) {
	empty := NewRegistry(nil, "")
	_, _, err := empty.LookupOrDefault("")
	assert.ErrorIs(t, err, ErrNoFeatures)

	r := NewRegistry(map[string]Feature{"checkout": {ID: 100}}, "checkout")
	name, f, err := r.LookupOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, "checkout", name)
	assert.Equal(t, 100, f.ID)
}
