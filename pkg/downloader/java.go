package downloader

import (
	"bufio"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/codeclysm/extract/v3"
	"github.com/havrydotdev/catclient/pkg/utils"
)

const adoptiumApiUrl = "https://api.adoptium.net"

var ErrUnsupportedPlatform = errors.New("unsupported platform")

type adoptiumAsset struct {
	Binary struct {
		Architecture string `json:"architecture"`
		ImageType    string `json:"image_type"`
		OS           string `json:"os"`
		Package      struct {
			Checksum string `json:"checksum"`
			Link     string `json:"link"`
			Name     string `json:"name"`
			Size     int    `json:"size"`
		} `json:"package"`
	} `json:"binary"`
	ReleaseName string `json:"release_name"`
}

// JavaInstaller provisions Temurin JREs under <root>/runtime/<major>.
type JavaInstaller struct {
	d       *Downloader
	rootDir string
	apiURL  string
	goos    string
	goarch  string
}

func NewJavaInstaller(d *Downloader, rootDir string) *JavaInstaller {
	return &JavaInstaller{
		d: d, rootDir: rootDir, apiURL: adoptiumApiUrl,
		goos: runtime.GOOS, goarch: runtime.GOARCH,
	}
}

func (j *JavaInstaller) WithAPIURL(apiURL string) *JavaInstaller {
	j.apiURL = apiURL
	return j
}

// WithPlatform installs builds for another GOOS/GOARCH pair.
func (j *JavaInstaller) WithPlatform(goos, goarch string) *JavaInstaller {
	j.goos, j.goarch = goos, goarch
	return j
}

func (j *JavaInstaller) runtimeDir(major int) string {
	return filepath.Join(j.rootDir, "runtime", fmt.Sprint(major))
}

// GetJavaPath returns where the java binary of the given major version lives
// once installed.
func (j *JavaInstaller) GetJavaPath(major int) string {
	base := j.runtimeDir(major)
	switch j.goos {
	case "windows":
		return filepath.Join(base, "bin", "java.exe")
	case "darwin":
		return filepath.Join(base, "Contents", "Home", "bin", "java")
	default:
		return filepath.Join(base, "bin", "java")
	}
}

// EnsureJava installs the JRE for major unless its binary is already present
// and returns the binary path.
func (j *JavaInstaller) EnsureJava(ctx context.Context, major int) (string, error) {
	javaPath := j.GetJavaPath(major)
	exists, err := utils.PathExists(javaPath)
	if err != nil {
		return "", err
	}
	if exists {
		return javaPath, nil
	}

	assetsURL, err := j.assetsURL(major)
	if err != nil {
		return "", err
	}

	var assets []adoptiumAsset
	if err := j.d.GetJSON(ctx, assetsURL, &assets); err != nil {
		return "", fmt.Errorf("failed to look up java %d: %w", major, err)
	}
	if len(assets) == 0 {
		return "", fmt.Errorf("no java %d build for %s/%s", major, j.goos, j.goarch)
	}

	pkg := assets[0].Binary.Package
	archivePath := filepath.Join(j.rootDir, "runtime", pkg.Name)

	j.d.log.Info("downloading java", slog.String("release", assets[0].ReleaseName), slog.String("url", pkg.Link))

	checksum := strings.ToLower(pkg.Checksum)
	var h hash.Hash
	if checksum != "" {
		h = sha256.New()
	}
	if err := j.d.fetch(ctx, pkg.Link, archivePath, h, checksum); err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	if err := j.extract(ctx, archivePath, j.runtimeDir(major)); err != nil {
		return "", fmt.Errorf("failed to extract java archive: %w", err)
	}

	return javaPath, nil
}

func (j *JavaInstaller) extract(ctx context.Context, archivePath, dest string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := os.RemoveAll(dest); err != nil {
		return err
	}

	return extract.Archive(ctx, bufio.NewReader(file), dest, stripTopDir)
}

// archives wrap everything in a jdk-<release>-jre/ folder
func stripTopDir(path string) string {
	sep := "/"
	if !strings.Contains(path, "/") && strings.Contains(path, "\\") {
		sep = "\\"
	}

	parts := strings.Split(path, sep)
	if len(parts) < 2 {
		return path
	}

	return strings.Join(parts[1:], sep)
}

func (j *JavaInstaller) assetsURL(major int) (string, error) {
	arch, err := j.adoptiumArch()
	if err != nil {
		return "", err
	}

	osName, err := j.adoptiumOS()
	if err != nil {
		return "", err
	}

	parsedUrl, err := url.Parse(fmt.Sprintf("%s/v3/assets/latest/%d/hotspot", j.apiURL, major))
	if err != nil {
		return "", err
	}

	q := parsedUrl.Query()
	q.Add("architecture", arch)
	q.Add("image_type", "jre")
	q.Add("os", osName)
	q.Add("vendor", "eclipse")
	parsedUrl.RawQuery = q.Encode()

	return parsedUrl.String(), nil
}

func (j *JavaInstaller) adoptiumOS() (string, error) {
	switch j.goos {
	case "windows", "linux":
		return j.goos, nil
	case "darwin":
		return "mac", nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, j.goos)
}

func (j *JavaInstaller) adoptiumArch() (string, error) {
	switch j.goarch {
	case "amd64":
		return "x64", nil
	case "arm64":
		return "aarch64", nil
	case "386":
		return "x86", nil
	case "arm":
		return "arm", nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, j.goarch)
}
