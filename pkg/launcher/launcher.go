package launcher

import (
	"errors"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/havrydotdev/catclient/pkg/auth"
	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/havrydotdev/catclient/types"
)

var ErrMissingMainClass = errors.New("version descriptor has no main class")

// GameLauncher assembles the java command line for a resolved version.
type GameLauncher struct {
	layout   mc.Layout
	javaPath string
	memory   string
	jvmArgs  []string
	goos     string
	log      *slog.Logger
}

func NewGameLauncher(layout mc.Layout, javaPath, memory string) *GameLauncher {
	if javaPath == "" {
		javaPath = utils.DefaultJavaPath
	}
	if memory == "" {
		memory = utils.DefaultMemory
	}

	return &GameLauncher{
		layout: layout, javaPath: javaPath, memory: memory,
		goos: runtime.GOOS, log: slog.Default(),
	}
}

// WithJvmArgs adds extra flags, given as one whitespace separated string.
func (g *GameLauncher) WithJvmArgs(jvmArgs string) *GameLauncher {
	g.jvmArgs = strings.Fields(jvmArgs)
	return g
}

// WithGOOS evaluates library rules for another platform.
func (g *GameLauncher) WithGOOS(goos string) *GameLauncher {
	g.goos = goos
	return g
}

func (g *GameLauncher) WithLogger(log *slog.Logger) *GameLauncher {
	g.log = log
	return g
}

// BuildCommand returns the full argument vector, runtime binary first.
func (g *GameLauncher) BuildCommand(details *types.VersionDetails, session auth.Session) ([]string, error) {
	if details.MainClass == "" {
		return nil, ErrMissingMainClass
	}

	classpath := g.BuildClasspath(details)

	cmd := []string{g.javaPath, "-Xmx" + g.memory}
	cmd = append(cmd, g.jvmArgs...)
	cmd = append(cmd, g.loggingArgs(details)...)
	cmd = append(cmd, "-cp", strings.Join(classpath, string(os.PathListSeparator)), details.MainClass)
	cmd = append(cmd, ExpandTokens(gameArgumentTemplate(details), g.values(details, session))...)

	g.log.Debug("built launch command", slog.String("version", details.ID),
		slog.Int("classpath", len(classpath)), slog.Int("args", len(cmd)))

	return cmd, nil
}

// BuildClasspath lists the client jar followed by every library file that is
// actually on disk, in declaration order. Missing libraries are left out.
func (g *GameLauncher) BuildClasspath(details *types.VersionDetails) []string {
	classpath := []string{g.layout.ClientPath(details.ID)}

	for _, library := range details.Libraries {
		artifact := mc.LibraryArtifactFor(library, g.goos)
		if artifact == nil {
			continue
		}

		libraryPath := g.layout.LibraryPath(artifact.Path)
		if exists, _ := utils.PathExists(libraryPath); !exists {
			g.log.Debug("library missing from classpath", slog.String("path", libraryPath))
			continue
		}

		classpath = append(classpath, libraryPath)
	}

	return classpath
}

func (g *GameLauncher) values(details *types.VersionDetails, session auth.Session) Values {
	var assetIndex string
	if details.AssetIndex != nil {
		assetIndex = details.AssetIndex.ID
	}

	return Values{
		AuthPlayerName:  session.Username,
		AuthUUID:        session.UUID,
		AuthAccessToken: session.Token,
		VersionName:     details.ID,
		GameDirectory:   g.layout.Root,
		AssetsRoot:      g.layout.AssetsDir(),
		AssetsIndexName: assetIndex,
		UserType:        session.UserType(),
		UserProperties:  "{}",
		VersionType:     string(details.Type),
		LauncherName:    utils.LauncherName,
		LauncherVersion: utils.LauncherVersion,
	}
}

// older descriptors carry one template string, newer ones a list in which
// rule-guarded entries are objects
func gameArgumentTemplate(details *types.VersionDetails) []string {
	if details.MinecraftArguments != "" || details.Arguments == nil {
		return strings.Fields(details.MinecraftArguments)
	}

	var tokens []string
	for _, arg := range details.Arguments.Game {
		if s, ok := arg.(string); ok {
			tokens = append(tokens, s)
		}
	}

	return tokens
}
