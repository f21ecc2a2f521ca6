package mc

import "path/filepath"

// Layout maps an installation root to the on-disk locations of its parts.
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	return Layout{Root: root}
}

func (l Layout) VersionsDir() string {
	return filepath.Join(l.Root, "versions")
}

func (l Layout) VersionDir(id string) string {
	return filepath.Join(l.VersionsDir(), id)
}

func (l Layout) DescriptorPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".json")
}

func (l Layout) ClientPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".jar")
}

func (l Layout) LibrariesDir() string {
	return filepath.Join(l.Root, "libraries")
}

func (l Layout) LibraryPath(artifactPath string) string {
	return filepath.Join(l.LibrariesDir(), filepath.FromSlash(artifactPath))
}

func (l Layout) AssetsDir() string {
	return filepath.Join(l.Root, "assets")
}

func (l Layout) AssetIndexPath(id string) string {
	return filepath.Join(l.AssetsDir(), "indexes", id+".json")
}

func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.AssetsDir(), AssetObjectRelPath(hash))
}

func (l Layout) LogConfigPath(id string) string {
	return filepath.Join(l.AssetsDir(), "log_configs", id)
}

// AssetObjectRelPath is the content-addressed location of an object below assets/.
func AssetObjectRelPath(hash string) string {
	return filepath.Join("objects", hash[:2], hash)
}
