package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{name: "simple", tag: "medical", wantErr: false},
		{name: "hyphenated", tag: "accident-report", wantErr: false},
		{name: "uppercase normalised", tag: "Medical", wantErr: false},
		{name: "empty", tag: "", wantErr: true},
		{name: "whitespace only", tag: "   ", wantErr: true},
		{name: "contains colon", tag: "case:42", wantErr: true},
		{name: "leading hash", tag: "#urgent", wantErr: true},
		{name: "inner space", tag: "two words", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTag(tc.tag)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTagList(t *testing.T) {
	tags, err := ParseTagList("Medical, accident-report , medical,, deposition")
	require.NoError(t, err)
	assert.Equal(t, []string{"medical", "accident-report", "deposition"}, tags)
}

func TestParseTagList_InvalidNameFailsList(t *testing.T) {
	_, err := ParseTagList("medical, bad:name")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseTagList_Empty(t *testing.T) {
	tags, err := ParseTagList("")
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestHasAllTags(t *testing.T) {
	have := []string{"medical", "accident-report"}

	assert.True(t, HasAllTags(have, nil))
	assert.True(t, HasAllTags(have, []string{"medical"}))
	assert.True(t, HasAllTags(have, []string{"medical", "accident-report"}))
	assert.False(t, HasAllTags(have, []string{"deposition"}))
	assert.False(t, HasAllTags(nil, []string{"medical"}))
	assert.True(t, HasAllTags(nil, nil))
}

func TestUnionTags(t *testing.T) {
	got := UnionTags([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, got)

	assert.Empty(t, UnionTags(nil, nil))
	assert.Equal(t, []string{"x"}, UnionTags(nil, []string{"x"}))
}
