package mc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/havrydotdev/catclient/pkg/downloader"
	"github.com/havrydotdev/catclient/types"
)

var ErrCatalogueUnavailable = errors.New("version catalogue unavailable")

type Category int

const (
	LatestRelease Category = iota
	LatestSnapshot
	Release
	Snapshot
	OldBeta
	OldAlpha
)

var categoryNames = map[Category]string{
	LatestRelease:  "Latest Release",
	LatestSnapshot: "Latest Snapshot",
	Release:        "Release",
	Snapshot:       "Snapshot",
	OldBeta:        "Old Beta",
	OldAlpha:       "Old Alpha",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{LatestRelease, LatestSnapshot, Release, Snapshot, OldBeta, OldAlpha}
}

// ParseCategory accepts both the display name and a short form such as "old-beta".
func ParseCategory(s string) (Category, bool) {
	for c, name := range categoryNames {
		if s == name || s == shortCategoryName(name) {
			return c, true
		}
	}
	return 0, false
}

func shortCategoryName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

// Catalogue is an immutable snapshot of the version manifest.
type Catalogue struct {
	latest   types.LatestVersions
	versions map[string]types.Version
	buckets  map[Category][]string
}

func NewCatalogue(manifest *types.VersionManifest) *Catalogue {
	c := &Catalogue{
		latest:   manifest.Latest,
		versions: make(map[string]types.Version, len(manifest.Versions)),
		buckets:  make(map[Category][]string),
	}

	// manifest lists newest first, buckets keep that order
	for _, v := range manifest.Versions {
		c.versions[v.ID] = v

		switch {
		case v.ID == manifest.Latest.Release:
			c.buckets[LatestRelease] = append(c.buckets[LatestRelease], v.ID)
		case v.ID == manifest.Latest.Snapshot:
			c.buckets[LatestSnapshot] = append(c.buckets[LatestSnapshot], v.ID)
		case v.Type == types.TypeRelease:
			c.buckets[Release] = append(c.buckets[Release], v.ID)
		case v.Type == types.TypeSnapshot:
			c.buckets[Snapshot] = append(c.buckets[Snapshot], v.ID)
		case v.Type == types.TypeOldBeta:
			c.buckets[OldBeta] = append(c.buckets[OldBeta], v.ID)
		case v.Type == types.TypeOldAlpha:
			c.buckets[OldAlpha] = append(c.buckets[OldAlpha], v.ID)
		}
	}

	return c
}

func (c *Catalogue) Lookup(id string) (types.Version, bool) {
	v, ok := c.versions[id]
	return v, ok
}

// Versions returns a copy of the ids in the category, most recent first.
func (c *Catalogue) Versions(category Category) []string {
	ids := c.buckets[category]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (c *Catalogue) Latest() types.LatestVersions {
	return c.latest
}

func (c *Catalogue) Len() int {
	return len(c.versions)
}

// ManifestLoader fetches the remote version manifest.
type ManifestLoader struct {
	d   *downloader.Downloader
	url string
}

func NewManifestLoader(d *downloader.Downloader, url string) *ManifestLoader {
	return &ManifestLoader{d: d, url: url}
}

func (m *ManifestLoader) Load(ctx context.Context) (*Catalogue, error) {
	var manifest types.VersionManifest
	if err := m.d.GetJSON(ctx, m.url, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogueUnavailable, err)
	}

	return NewCatalogue(&manifest), nil
}
