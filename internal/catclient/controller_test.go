package catclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/havrydotdev/catclient/pkg/auth"
	"github.com/havrydotdev/catclient/pkg/config"
	"github.com/havrydotdev/catclient/pkg/downloader"
	"github.com/havrydotdev/catclient/pkg/launcher"
	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/havrydotdev/catclient/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpawner struct {
	mu    sync.Mutex
	calls [][]string
	dirs  []string
	err   error
}

func (s *fakeSpawner) Spawn(_ context.Context, argv []string, dir string) (*launcher.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, argv)
	s.dirs = append(s.dirs, dir)
	if s.err != nil {
		return nil, s.err
	}
	return &launcher.Process{LogPath: "launch.log"}, nil
}

func (s *fakeSpawner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type authFunc func(ctx context.Context) (auth.Session, error)

func (f authFunc) Authenticate(ctx context.Context) (auth.Session, error) {
	return f(ctx)
}

type fakePresence struct {
	playing []string
}

func (p *fakePresence) SetPlaying(versionID string) error {
	p.playing = append(p.playing, versionID)
	return nil
}

type fakeJava struct {
	majors []int
}

func (j *fakeJava) EnsureJava(_ context.Context, major int) (string, error) {
	j.majors = append(j.majors, major)
	return "/runtime/java", nil
}

type countingLoader struct {
	calls int
	err   error
}

func (l *countingLoader) Load(context.Context) (*mc.Catalogue, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return mc.NewCatalogue(&types.VersionManifest{}), nil
}

// installFixture writes an installed 1.8.9 so no network access is needed.
func installFixture(t *testing.T, root string) {
	t.Helper()

	layout := mc.NewLayout(root)
	require.NoError(t, os.MkdirAll(layout.VersionDir("1.8.9"), 0o755))

	data, err := json.Marshal(types.VersionDetails{
		ID:                 "1.8.9",
		Type:               types.TypeRelease,
		MainClass:          "net.minecraft.client.main.Main",
		MinecraftArguments: "--username ${auth_player_name} --uuid ${auth_uuid}",
		JavaVersion:        &types.JavaVersion{MajorVersion: 8},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(layout.DescriptorPath("1.8.9"), data, 0o644))
	require.NoError(t, os.WriteFile(layout.ClientPath("1.8.9"), []byte("jar"), 0o644))
}

type harness struct {
	ctrl      *Controller
	cfg       *config.Config
	spawner   *fakeSpawner
	presence  *fakePresence
	java      *fakeJava
	loader    *countingLoader
	persisted []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	installFixture(t, root)

	cfg, err := config.Load(config.New(root))
	require.NoError(t, err)

	h := &harness{
		cfg:      cfg,
		spawner:  &fakeSpawner{},
		presence: &fakePresence{},
		java:     &fakeJava{},
		loader:   &countingLoader{},
	}
	h.ctrl = NewController(cfg).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithVersionManager(mc.NewVersionManager(mc.NewLayout(root), downloader.New())).
		WithCatalogueLoader(h.loader).
		WithSpawner(h.spawner).
		WithPresence(h.presence).
		WithJavaProvider(h.java).
		WithPersist(func(c *config.Config) error {
			h.persisted = append(h.persisted, c.LaunchVersion)
			return nil
		})

	return h
}

func (h *harness) wait(t *testing.T) ([]Event, error) {
	t.Helper()

	var events []Event
	done := make(chan error, 1)
	go func() {
		done <- h.ctrl.Wait(func(ev Event) { events = append(events, ev) })
	}()

	select {
	case err := <-done:
		return events, err
	case <-time.After(10 * time.Second):
		t.Fatal("operation did not finish")
		return nil, nil
	}
}

func TestLaunchOffline(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{
		VersionID: "1.8.9",
		Auth:      auth.NewOfflineAuth("CatPlayer"),
	}))
	events, err := h.wait(t)
	require.NoError(t, err)

	require.Equal(t, 1, h.spawner.count())
	argv := h.spawner.calls[0]
	session := auth.NewOfflineSession("CatPlayer")
	assert.Equal(t, []string{"--username", "CatPlayer", "--uuid", session.UUID}, argv[len(argv)-4:])
	assert.Equal(t, h.cfg.JavaPath, argv[0])
	assert.Equal(t, h.cfg.GameDir, h.spawner.dirs[0])

	last := events[len(events)-1]
	assert.Equal(t, EventDone, last.Kind)
	assert.NotNil(t, last.Process)

	assert.Equal(t, []string{"1.8.9"}, h.presence.playing)
	assert.Equal(t, []string{"1.8.9"}, h.persisted)
	assert.Equal(t, "1.8.9", h.cfg.LaunchVersion)
	assert.Zero(t, h.loader.calls, "installed versions need no catalogue")
	assert.Empty(t, h.java.majors)
}

func TestLaunchAuthFailurePreventsSpawn(t *testing.T) {
	h := newHarness(t)
	rejected := &auth.AuthenticationRejected{Message: "Invalid credentials"}

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{
		VersionID: "1.8.9",
		Auth: authFunc(func(context.Context) (auth.Session, error) {
			return auth.Session{}, rejected
		}),
	}))
	events, err := h.wait(t)

	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, EventError, events[len(events)-1].Kind)
	assert.Zero(t, h.spawner.count())
	assert.Empty(t, h.persisted)
	assert.Empty(t, h.presence.playing)
}

func TestLaunchSpawnFailure(t *testing.T) {
	h := newHarness(t)
	h.spawner.err = &launcher.LaunchSpawnFailed{Cause: errors.New("exit status 1"), Output: "boom"}

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{VersionID: "1.8.9", Auth: auth.NewOfflineAuth("CatPlayer")}))
	_, err := h.wait(t)

	var failed *launcher.LaunchSpawnFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "boom", failed.Output)
	assert.Empty(t, h.persisted)
}

func TestLaunchUsesLastVersion(t *testing.T) {
	h := newHarness(t)
	h.cfg.LaunchVersion = "1.8.9"

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{Auth: auth.NewOfflineAuth("CatPlayer")}))
	_, err := h.wait(t)
	require.NoError(t, err)
	assert.Equal(t, 1, h.spawner.count())

	h.cfg.LaunchVersion = ""
	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{Auth: auth.NewOfflineAuth("CatPlayer")}))
	_, err = h.wait(t)
	assert.ErrorIs(t, err, mc.ErrUnknownVersion)
}

func TestLaunchInstallsJava(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{
		VersionID:   "1.8.9",
		Auth:        auth.NewOfflineAuth("CatPlayer"),
		InstallJava: true,
	}))
	_, err := h.wait(t)
	require.NoError(t, err)

	assert.Equal(t, []int{8}, h.java.majors)
	assert.Equal(t, "/runtime/java", h.spawner.calls[0][0])
}

func TestOperationsAreSerialized(t *testing.T) {
	h := newHarness(t)

	release := make(chan struct{})
	blocking := authFunc(func(context.Context) (auth.Session, error) {
		<-release
		return auth.NewOfflineSession("CatPlayer"), nil
	})

	require.NoError(t, h.ctrl.Launch(context.Background(), LaunchRequest{VersionID: "1.8.9", Auth: blocking}))

	assert.ErrorIs(t, h.ctrl.Install(context.Background(), "1.8.9"), ErrBusy)
	assert.ErrorIs(t, h.ctrl.Uninstall("1.8.9"), ErrBusy)

	close(release)
	_, err := h.wait(t)
	require.NoError(t, err)

	// the busy flag is cleared once the final event is posted
	require.NoError(t, h.ctrl.Install(context.Background(), "1.8.9"))
	_, err = h.wait(t)
	require.NoError(t, err)
}

func TestBusyFlagClearedAfterFailure(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ctrl.Install(context.Background(), "0.0.0"))
	_, err := h.wait(t)
	assert.ErrorIs(t, err, mc.ErrUnknownVersion)
	assert.Equal(t, 1, h.loader.calls)

	require.NoError(t, h.ctrl.Install(context.Background(), "1.8.9"))
	_, err = h.wait(t)
	assert.NoError(t, err)
}

func TestLoadCatalogueCaches(t *testing.T) {
	h := newHarness(t)

	_, err := h.ctrl.LoadCatalogue(context.Background())
	require.NoError(t, err)
	_, err = h.ctrl.LoadCatalogue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.loader.calls)
}

func TestLoadCatalogueError(t *testing.T) {
	h := newHarness(t)
	h.loader.err = mc.ErrCatalogueUnavailable

	_, err := h.ctrl.LoadCatalogue(context.Background())
	assert.ErrorIs(t, err, mc.ErrCatalogueUnavailable)

	h.loader.err = nil
	_, err = h.ctrl.LoadCatalogue(context.Background())
	assert.NoError(t, err)
}

func TestInstalledVersionsAndUninstall(t *testing.T) {
	h := newHarness(t)

	ids, err := h.ctrl.InstalledVersions()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.8.9"}, ids)

	require.NoError(t, h.ctrl.Uninstall("1.8.9"))
	ids, err = h.ctrl.InstalledVersions()
	require.NoError(t, err)
	assert.Empty(t, ids)
}
