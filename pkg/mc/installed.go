package mc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/havrydotdev/catclient/pkg/utils"
)

// InstalledVersions lists version ids that have both a descriptor and a
// client jar under the layout root.
func (v *VersionManager) InstalledVersions() ([]string, error) {
	entries, err := os.ReadDir(v.layout.VersionsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() && v.Installed(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)

	return ids, nil
}

// Uninstall removes the version directory of id. Libraries and assets are
// shared between versions and stay on disk.
func (v *VersionManager) Uninstall(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrUnknownVersion, id)
	}

	dir := v.layout.VersionDir(id)
	if ok, err := utils.PathExists(dir); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s is not installed", ErrUnknownVersion, id)
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}

	v.log.Info("removed version", slog.String("version", id))
	return nil
}
