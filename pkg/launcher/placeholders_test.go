package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArguments(t *testing.T) {
	values := Values{AuthPlayerName: "Tom", AuthUUID: "abc-123"}

	got := ExpandArguments("--username ${auth_player_name} --uuid${auth_uuid}end", values)

	assert.Equal(t, []string{"--username", "Tom", "--uuidabc-123end"}, got)
}

func TestSubstitute(t *testing.T) {
	values := Values{
		AuthPlayerName:  "Tom",
		VersionName:     "1.8.9",
		AuthAccessToken: "${auth_player_name}",
		AuthUUID:        "abc-123",
	}

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"plain", "--demo", "--demo"},
		{"whole token", "${version_name}", "1.8.9"},
		{"repeated", "${version_name}/${version_name}", "1.8.9/1.8.9"},
		{"unknown kept", "${clientid}", "${clientid}"},
		{"known without value kept", "${user_type}", "${user_type}"},
		{"unterminated", "${version_name", "${version_name"},
		{"values are not rescanned", "${auth_access_token}", "${auth_player_name}"},
		{"mixed", "a${auth_player_name}b${nope}c", "aTomb${nope}c"},
		{"stray opener", "${${auth_player_name}", "${Tom"},
		{"nested in unknown", "${x${auth_uuid}}", "${xabc-123}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.token, values))
		})
	}
}

func TestExpandArgumentsEmptyTemplate(t *testing.T) {
	assert.Empty(t, ExpandArguments("   ", Values{}))
}

func TestLookupPlaceholder(t *testing.T) {
	p, ok := LookupPlaceholder("assets_index_name")
	require.True(t, ok)
	assert.Equal(t, AssetsIndexName, p)
	assert.Equal(t, "${assets_index_name}", p.String())

	_, ok = LookupPlaceholder("resolution_width")
	assert.False(t, ok)
}
