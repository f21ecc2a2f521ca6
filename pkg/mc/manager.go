package mc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/havrydotdev/catclient/pkg/utils"
	"github.com/havrydotdev/catclient/types"
)

var (
	ErrUnknownVersion    = errors.New("unknown version")
	ErrCorruptDescriptor = errors.New("corrupt version descriptor")
)

// Fetcher is the content store used by the VersionManager.
type Fetcher interface {
	FetchVerified(ctx context.Context, url, dest, expectedSHA1 string) error
}

type Stage string

const (
	StageDescriptor Stage = "descriptor"
	StageClient     Stage = "client"
	StageLibraries  Stage = "libraries"
	StageAssetIndex Stage = "asset-index"
	StageAssets     Stage = "assets"
	StageLogging    Stage = "logging"
)

type ProgressCallback func(stage Stage, done, total int)

// Failure is a download that did not complete while resolving a version.
// It does not abort resolution.
type Failure struct {
	Stage Stage
	Name  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.Name, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is a resolved descriptor together with everything that could not be fetched.
type Result struct {
	Descriptor *types.VersionDetails
	Failures   []Failure
}

func (r *Result) Complete() bool {
	return len(r.Failures) == 0
}

type VersionManager struct {
	layout       Layout
	store        Fetcher
	assetBaseURL string
	workers      int
	goos         string
	log          *slog.Logger
	onProgress   ProgressCallback
}

func NewVersionManager(layout Layout, store Fetcher) *VersionManager {
	return &VersionManager{
		layout: layout, store: store,
		assetBaseURL: utils.AssetBaseURL,
		workers:      ConcurrentDownloads,
		goos:         runtime.GOOS,
		log:          slog.Default(),
		onProgress:   func(Stage, int, int) {},
	}
}

func (v *VersionManager) WithLogger(log *slog.Logger) *VersionManager {
	v.log = log
	return v
}

func (v *VersionManager) WithAssetBaseURL(url string) *VersionManager {
	v.assetBaseURL = url
	return v
}

func (v *VersionManager) WithProgress(onProgress ProgressCallback) *VersionManager {
	if onProgress != nil {
		v.onProgress = onProgress
	}
	return v
}

func (v *VersionManager) WithWorkers(n int) *VersionManager {
	if n > 0 {
		v.workers = n
	}
	return v
}

func (v *VersionManager) WithGOOS(goos string) *VersionManager {
	v.goos = goos
	return v
}

func (v *VersionManager) Layout() Layout {
	return v.layout
}

// Installed reports whether the descriptor and client jar of id are on disk.
// Libraries and assets are not checked.
func (v *VersionManager) Installed(id string) bool {
	for _, p := range []string{v.layout.DescriptorPath(id), v.layout.ClientPath(id)} {
		if ok, _ := utils.PathExists(p); !ok {
			return false
		}
	}
	return true
}

// EnsureInstalled makes sure the descriptor, client jar, libraries and assets
// of versionID are present under the layout root. Only a missing or corrupt
// descriptor is fatal; every other failed download is collected in the result.
func (v *VersionManager) EnsureInstalled(ctx context.Context, catalogue *Catalogue, versionID string) (*Result, error) {
	v.log.Info("resolving version", slog.String("version", versionID))

	details, err := v.ensureDescriptor(ctx, catalogue, versionID)
	if err != nil {
		return nil, err
	}

	result := &Result{Descriptor: details}

	v.downloadClient(ctx, details, result)
	v.downloadLibraries(ctx, details.Libraries, result)
	v.downloadAssets(ctx, details.AssetIndex, result)
	v.downloadLogging(ctx, details.Logging, result)

	for _, f := range result.Failures {
		v.log.Warn("failed to fetch", slog.String("stage", string(f.Stage)),
			slog.String("name", f.Name), slog.String("error", f.Err.Error()))
	}

	v.log.Info("resolved version", slog.String("version", versionID),
		slog.Int("failures", len(result.Failures)))

	return result, nil
}

// LoadDescriptor reads an already fetched descriptor from disk. The
// returned ID is always versionID, whatever the file declares.
func (v *VersionManager) LoadDescriptor(versionID string) (*types.VersionDetails, error) {
	path := v.layout.DescriptorPath(versionID)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s is not installed", ErrUnknownVersion, versionID)
		}
		return nil, err
	}

	var details types.VersionDetails
	if err := json.Unmarshal(data, &details); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptDescriptor, path, err)
	}

	// the directory name decides where the jar lives
	details.ID = versionID

	return &details, nil
}

func (v *VersionManager) ensureDescriptor(ctx context.Context, catalogue *Catalogue, versionID string) (*types.VersionDetails, error) {
	path := v.layout.DescriptorPath(versionID)

	exists, err := utils.PathExists(path)
	if err != nil {
		return nil, err
	}

	if !exists {
		var version types.Version
		var ok bool
		if catalogue != nil {
			version, ok = catalogue.Lookup(versionID)
		}
		if !ok || version.URL == "" {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, versionID)
		}

		v.onProgress(StageDescriptor, 0, 1)
		if err := v.store.FetchVerified(ctx, version.URL, path, version.SHA1); err != nil {
			return nil, fmt.Errorf("failed to fetch descriptor for %s: %w", versionID, err)
		}
	}
	v.onProgress(StageDescriptor, 1, 1)

	return v.LoadDescriptor(versionID)
}

func (v *VersionManager) downloadClient(ctx context.Context, details *types.VersionDetails, result *Result) {
	client := details.Downloads.Client
	if client == nil || client.URL == "" {
		return
	}

	v.onProgress(StageClient, 0, 1)
	if err := v.store.FetchVerified(ctx, client.URL, v.layout.ClientPath(details.ID), client.SHA1); err != nil {
		result.Failures = append(result.Failures, Failure{Stage: StageClient, Name: details.ID + ".jar", Err: err})
	}
	v.onProgress(StageClient, 1, 1)
}

func (v *VersionManager) downloadLibraries(ctx context.Context, libraries []types.Library, result *Result) {
	for i, library := range libraries {
		v.onProgress(StageLibraries, i, len(libraries))

		artifact := LibraryArtifactFor(library, v.goos)
		if artifact == nil || artifact.URL == "" {
			continue
		}

		libraryPath := v.layout.LibraryPath(artifact.Path)
		if err := v.store.FetchVerified(ctx, artifact.URL, libraryPath, artifact.SHA1); err != nil {
			name := library.Name
			if name == "" {
				name = artifact.Path
			}
			result.Failures = append(result.Failures, Failure{Stage: StageLibraries, Name: name, Err: err})
		}
	}
	v.onProgress(StageLibraries, len(libraries), len(libraries))
}

func (v *VersionManager) downloadLogging(ctx context.Context, logging *types.Logging, result *Result) {
	if logging == nil || logging.Client == nil || logging.Client.File.URL == "" || logging.Client.File.ID == "" {
		return
	}

	file := logging.Client.File
	v.onProgress(StageLogging, 0, 1)
	if err := v.store.FetchVerified(ctx, file.URL, v.layout.LogConfigPath(file.ID), file.SHA1); err != nil {
		result.Failures = append(result.Failures, Failure{Stage: StageLogging, Name: file.ID, Err: err})
	}
	v.onProgress(StageLogging, 1, 1)
}
