package mc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/havrydotdev/catclient/pkg/downloader"
	"github.com/havrydotdev/catclient/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManifest() *types.VersionManifest {
	return &types.VersionManifest{
		Latest: types.LatestVersions{Release: "1.21.4", Snapshot: "25w02a"},
		Versions: []types.Version{
			{ID: "25w02a", Type: types.TypeSnapshot},
			{ID: "1.21.4", Type: types.TypeRelease},
			{ID: "24w46a", Type: types.TypeSnapshot},
			{ID: "1.21.3", Type: types.TypeRelease},
			{ID: "1.20.1", Type: types.TypeRelease},
			{ID: "b1.7.3", Type: types.TypeOldBeta},
			{ID: "a1.2.6", Type: types.TypeOldAlpha},
			{ID: "rd-132211", Type: types.TypeOldAlpha},
			{ID: "experimental", Type: "pending"},
		},
	}
}

func TestCatalogueBuckets(t *testing.T) {
	c := NewCatalogue(testManifest())

	tests := []struct {
		category Category
		want     []string
	}{
		{LatestRelease, []string{"1.21.4"}},
		{LatestSnapshot, []string{"25w02a"}},
		{Release, []string{"1.21.3", "1.20.1"}},
		{Snapshot, []string{"24w46a"}},
		{OldBeta, []string{"b1.7.3"}},
		{OldAlpha, []string{"a1.2.6", "rd-132211"}},
	}
	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, c.Versions(tt.category))
		})
	}

	assert.Equal(t, 9, c.Len())
}

func TestCatalogueUnknownTypeIsLookupOnly(t *testing.T) {
	c := NewCatalogue(testManifest())

	v, ok := c.Lookup("experimental")
	require.True(t, ok)
	assert.Equal(t, types.VersionType("pending"), v.Type)

	for _, category := range Categories() {
		assert.NotContains(t, c.Versions(category), "experimental")
	}
}

func TestCatalogueVersionsReturnsCopy(t *testing.T) {
	c := NewCatalogue(testManifest())

	ids := c.Versions(Release)
	ids[0] = "mutated"

	assert.Equal(t, "1.21.3", c.Versions(Release)[0])
}

func TestParseCategory(t *testing.T) {
	for _, category := range Categories() {
		got, ok := ParseCategory(category.String())
		require.True(t, ok)
		assert.Equal(t, category, got)
	}

	got, ok := ParseCategory("old-alpha")
	require.True(t, ok)
	assert.Equal(t, OldAlpha, got)

	got, ok = ParseCategory("latest-snapshot")
	require.True(t, ok)
	assert.Equal(t, LatestSnapshot, got)

	_, ok = ParseCategory("beta")
	assert.False(t, ok)
}

func TestManifestLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(testManifest())
	}))
	defer srv.Close()

	c, err := NewManifestLoader(downloader.New(), srv.URL+"/manifest.json").Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.21.4", c.Latest().Release)
	assert.Equal(t, []string{"1.21.3", "1.20.1"}, c.Versions(Release))

	_, err = NewManifestLoader(downloader.New(), srv.URL+"/gone.json").Load(context.Background())
	assert.ErrorIs(t, err, ErrCatalogueUnavailable)
}

func TestManifestLoaderMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"versions": [`))
	}))
	defer srv.Close()

	_, err := NewManifestLoader(downloader.New(), srv.URL).Load(context.Background())
	assert.ErrorIs(t, err, ErrCatalogueUnavailable)
}
