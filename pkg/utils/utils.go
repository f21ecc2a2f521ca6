package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	UserAgent          = "CatClient/1.5 (LunarCat)"
	LauncherName       = "catclient"
	LauncherVersion    = "1.5.0"
	DefaultMemory      = "2G"
	DefaultJavaPath    = "java"
	DefaultOfflineName = "CatPlayer"

	VersionManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	AssetBaseURL       = "https://resources.download.minecraft.net"
	ElybyAuthURL       = "https://authserver.ely.by/auth/authenticate"

	DefaultDownloadTimeout = 10 * time.Minute
	DefaultGracePeriod     = 5 * time.Second

	DefaultDownloadWorkers = 10
)

// GetCatclientFolderPath returns the base folder, %APPDATA%\.catclient on
// windows and ~/.catclient elsewhere.
func GetCatclientFolderPath() (string, error) {
	if runtime.GOOS == "windows" {
		if appData, ok := os.LookupEnv("APPDATA"); ok && appData != "" {
			return filepath.Join(appData, ".catclient"), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", ".catclient"), nil
	}

	return filepath.Join(home, ".catclient"), nil
}

// GetGameFolderPath is the installation root the game runs in.
func GetGameFolderPath() (string, error) {
	base, err := GetCatclientFolderPath()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, "minecraft"), nil
}

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
