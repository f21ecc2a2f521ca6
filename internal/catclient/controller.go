package catclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/havrydotdev/catclient/pkg/auth"
	"github.com/havrydotdev/catclient/pkg/config"
	"github.com/havrydotdev/catclient/pkg/downloader"
	"github.com/havrydotdev/catclient/pkg/launcher"
	"github.com/havrydotdev/catclient/pkg/mc"
	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/havrydotdev/catclient/types"
)

const eventBuffer = 256

var ErrBusy = errors.New("another operation is already running for this installation")

type CatalogueLoader interface {
	Load(ctx context.Context) (*mc.Catalogue, error)
}

type JavaProvider interface {
	EnsureJava(ctx context.Context, major int) (string, error)
}

type Presence interface {
	SetPlaying(versionID string) error
}

type LaunchRequest struct {
	VersionID   string
	Auth        auth.Auth
	InstallJava bool
}

// Controller runs installs and launches on a background goroutine and
// reports back through Events. One operation at a time per game dir.
type Controller struct {
	cfg *config.Config

	catalogues CatalogueLoader
	versions   *mc.VersionManager
	java       JavaProvider
	spawner    launcher.Spawner
	presence   Presence
	persist    func(*config.Config) error

	events chan Event
	log    *slog.Logger

	mu        sync.Mutex
	catalogue *mc.Catalogue
}

func NewController(cfg *config.Config) *Controller {
	d := downloader.New().
		WithHTTPClient(&http.Client{Timeout: cfg.DownloadTimeout}).
		WithVerification(cfg.VerifyDownloads)

	layout := mc.NewLayout(cfg.GameDir)

	c := &Controller{
		cfg:        cfg,
		catalogues: mc.NewManifestLoader(d, cfg.ManifestURL),
		java:       downloader.NewJavaInstaller(d, cfg.GameDir),
		spawner: launcher.NewProcessLauncher(filepath.Join(cfg.GameDir, "logs", "launch.log")).
			WithGracePeriod(cfg.GracePeriod),
		persist: config.Persist,
		events:  make(chan Event, eventBuffer),
		log:     slog.Default(),
	}
	c.versions = mc.NewVersionManager(layout, d).
		WithWorkers(cfg.DownloadWorkers).
		WithProgress(c.onProgress)

	return c
}

func (c *Controller) WithLogger(log *slog.Logger) *Controller {
	c.log = log
	c.versions.WithLogger(log)
	return c
}

func (c *Controller) WithCatalogueLoader(loader CatalogueLoader) *Controller {
	c.catalogues = loader
	return c
}

func (c *Controller) WithVersionManager(versions *mc.VersionManager) *Controller {
	c.versions = versions.WithProgress(c.onProgress)
	return c
}

func (c *Controller) WithJavaProvider(java JavaProvider) *Controller {
	c.java = java
	return c
}

func (c *Controller) WithSpawner(spawner launcher.Spawner) *Controller {
	c.spawner = spawner
	return c
}

func (c *Controller) WithPresence(presence Presence) *Controller {
	c.presence = presence
	return c
}

func (c *Controller) WithPersist(persist func(*config.Config) error) *Controller {
	c.persist = persist
	return c
}

func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) Layout() mc.Layout {
	return c.versions.Layout()
}

// LoadCatalogue fetches the manifest once and caches it for later operations.
func (c *Controller) LoadCatalogue(ctx context.Context) (*mc.Catalogue, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalogue != nil {
		return c.catalogue, nil
	}

	catalogue, err := c.catalogues.Load(ctx)
	if err != nil {
		return nil, err
	}

	c.catalogue = catalogue
	return catalogue, nil
}

func (c *Controller) InstalledVersions() ([]string, error) {
	return c.versions.InstalledVersions()
}

// Uninstall removes versionID synchronously. It fails with ErrBusy while
// another operation runs.
func (c *Controller) Uninstall(versionID string) error {
	release, err := acquireRoot(c.cfg.GameDir)
	if err != nil {
		return err
	}
	defer release()

	return c.versions.Uninstall(versionID)
}

// Install resolves versionID in the background.
func (c *Controller) Install(ctx context.Context, versionID string) error {
	return c.start(func() (Event, error) {
		result, err := c.install(ctx, versionID)
		if err != nil {
			return Event{}, err
		}

		return Event{
			Kind:    EventDone,
			Message: fmt.Sprintf("installed %s (%d failed downloads)", versionID, len(result.Failures)),
		}, nil
	})
}

// Launch authenticates, installs and starts versionID in the background.
// Nothing is spawned when authentication fails.
func (c *Controller) Launch(ctx context.Context, req LaunchRequest) error {
	return c.start(func() (Event, error) {
		return c.launch(ctx, req)
	})
}

// Wait drains events into handle until the running operation finishes and
// returns its error.
func (c *Controller) Wait(handle func(Event)) error {
	for ev := range c.events {
		if handle != nil {
			handle(ev)
		}
		if ev.Final() {
			return ev.Err
		}
	}
	return nil
}

func (c *Controller) start(op func() (Event, error)) error {
	release, err := acquireRoot(c.cfg.GameDir)
	if err != nil {
		return err
	}

	go func() {
		done, err := func() (Event, error) {
			defer release()
			return op()
		}()
		if err != nil {
			c.log.Error("operation failed", slog.String("error", err.Error()))
			c.post(Event{Kind: EventError, Err: err, Message: err.Error()})
			return
		}

		c.post(done)
	}()

	return nil
}

func (c *Controller) install(ctx context.Context, versionID string) (*mc.Result, error) {
	var catalogue *mc.Catalogue
	if ok, _ := utils.PathExists(c.Layout().DescriptorPath(versionID)); !ok {
		c.status("Getting version info...")

		var err error
		catalogue, err = c.LoadCatalogue(ctx)
		if err != nil {
			return nil, err
		}
	}

	c.status(fmt.Sprintf("Installing %s...", versionID))
	result, err := c.versions.EnsureInstalled(ctx, catalogue, versionID)
	if err != nil {
		return nil, err
	}

	for _, f := range result.Failures {
		c.post(Event{Kind: EventWarning, Stage: f.Stage, Message: f.Error(), Err: f})
	}

	return result, nil
}

func (c *Controller) launch(ctx context.Context, req LaunchRequest) (Event, error) {
	versionID := req.VersionID
	if versionID == "" {
		versionID = c.cfg.LaunchVersion
	}
	if versionID == "" {
		return Event{}, fmt.Errorf("%w: no version selected", mc.ErrUnknownVersion)
	}

	c.status("Authenticating...")
	session, err := req.Auth.Authenticate(ctx)
	if err != nil {
		return Event{}, err
	}
	c.log.Info("authenticated", slog.String("kind", string(session.Kind)), slog.String("username", session.Username))

	result, err := c.install(ctx, versionID)
	if err != nil {
		return Event{}, err
	}

	javaPath, err := c.javaPath(ctx, req, result.Descriptor)
	if err != nil {
		return Event{}, err
	}

	argv, err := launcher.NewGameLauncher(c.Layout(), javaPath, c.cfg.Memory).
		WithJvmArgs(c.cfg.JvmArgs).
		WithLogger(c.log).
		BuildCommand(result.Descriptor, session)
	if err != nil {
		return Event{}, err
	}

	c.status(fmt.Sprintf("Launching Minecraft %s...", versionID))
	process, err := c.spawner.Spawn(ctx, argv, c.Layout().Root)
	if err != nil {
		return Event{}, err
	}

	if c.presence != nil {
		if err := c.presence.SetPlaying(versionID); err != nil {
			c.log.Warn("failed to set playing activity", slog.String("error", err.Error()))
		}
	}

	c.cfg.LaunchVersion = versionID
	if c.persist != nil {
		if err := c.persist(c.cfg); err != nil {
			c.log.Warn("failed to persist config", slog.String("error", err.Error()))
		}
	}

	return Event{
		Kind:    EventDone,
		Process: process,
		Message: fmt.Sprintf("Minecraft %s started as %s", versionID, session.Username),
	}, nil
}

func (c *Controller) javaPath(ctx context.Context, req LaunchRequest, details *types.VersionDetails) (string, error) {
	if !req.InstallJava || details.JavaVersion == nil || details.JavaVersion.MajorVersion == 0 {
		return c.cfg.JavaPath, nil
	}

	c.status(fmt.Sprintf("Installing Java %d...", details.JavaVersion.MajorVersion))
	path, err := c.java.EnsureJava(ctx, details.JavaVersion.MajorVersion)
	if err != nil {
		return "", fmt.Errorf("failed to install java %d: %w", details.JavaVersion.MajorVersion, err)
	}

	return path, nil
}

func (c *Controller) status(message string) {
	c.post(Event{Kind: EventStatus, Message: message})
}

func (c *Controller) onProgress(stage mc.Stage, done, total int) {
	select {
	case c.events <- Event{Kind: EventProgress, Stage: stage, Done: done, Total: total}:
	default:
	}
}

func (c *Controller) post(ev Event) {
	c.events <- ev
}

var (
	rootsMu     sync.Mutex
	activeRoots = make(map[string]struct{})
)

func acquireRoot(root string) (func(), error) {
	key := filepath.Clean(root)

	rootsMu.Lock()
	defer rootsMu.Unlock()

	if _, busy := activeRoots[key]; busy {
		return nil, ErrBusy
	}
	activeRoots[key] = struct{}{}

	return func() {
		rootsMu.Lock()
		delete(activeRoots, key)
		rootsMu.Unlock()
	}, nil
}
