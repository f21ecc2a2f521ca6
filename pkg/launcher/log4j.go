package launcher

import (
	"log/slog"
	"strings"

	semVer "github.com/hashicorp/go-version"
	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/havrydotdev/catclient/types"
)

const noLookupsFlag = "-Dlog4j2.formatMsgNoLookups=true"

var (
	log4jVulnerableFrom = semVer.Must(semVer.NewVersion("1.17"))
	log4jPatchedIn      = semVer.Must(semVer.NewVersion("1.18.1"))
)

// loggingArgs returns the jvm flags that point log4j at a safe configuration.
func (g *GameLauncher) loggingArgs(details *types.VersionDetails) []string {
	if details.Logging != nil && details.Logging.Client != nil {
		client := details.Logging.Client
		if client.Argument == "" || client.File.ID == "" {
			return nil
		}

		configPath := g.layout.LogConfigPath(client.File.ID)
		if exists, _ := utils.PathExists(configPath); !exists {
			g.log.Warn("log config missing, launching without it", slog.String("path", configPath))
			return nil
		}

		return []string{strings.ReplaceAll(client.Argument, "${path}", configPath)}
	}

	if needsNoLookups(details.ID) {
		return []string{noLookupsFlag}
	}

	return nil
}

// needsNoLookups reports whether id falls in the release range that ships a
// vulnerable log4j able to honour the no lookups flag. Ids that are not
// plain release numbers (snapshots, custom ids) are left alone.
func needsNoLookups(id string) bool {
	mcSemVer, err := semVer.NewVersion(id)
	if err != nil || mcSemVer.Prerelease() != "" {
		return false
	}

	return mcSemVer.GreaterThanOrEqual(log4jVulnerableFrom) && mcSemVer.LessThan(log4jPatchedIn)
}
