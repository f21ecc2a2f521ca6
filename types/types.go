package types

type Rule struct {
	Action   string          `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

type OSRule struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Arch    string `json:"arch,omitempty"`
}

// Version manifest from Mojang
type VersionManifest struct {
	Latest   LatestVersions `json:"latest"`
	Versions []Version      `json:"versions"`
}

type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type VersionType string

const (
	TypeRelease  VersionType = "release"
	TypeSnapshot VersionType = "snapshot"
	TypeOldBeta  VersionType = "old_beta"
	TypeOldAlpha VersionType = "old_alpha"
)

type Version struct {
	ID          string      `json:"id"`
	Type        VersionType `json:"type"`
	URL         string      `json:"url"`
	SHA1        string      `json:"sha1,omitempty"`
	Time        string      `json:"time"`
	ReleaseTime string      `json:"releaseTime"`
}

// VersionDetails is the per-version descriptor stored at versions/<id>/<id>.json.
type VersionDetails struct {
	ID                 string       `json:"id"`
	Type               VersionType  `json:"type"`
	InheritsFrom       string       `json:"inheritsFrom,omitempty"`
	MainClass          string       `json:"mainClass"`
	MinecraftArguments string       `json:"minecraftArguments,omitempty"`
	Arguments          *Arguments   `json:"arguments,omitempty"`
	Libraries          []Library    `json:"libraries"`
	Downloads          Downloads    `json:"downloads"`
	AssetIndex         *AssetIndex  `json:"assetIndex,omitempty"`
	JavaVersion        *JavaVersion `json:"javaVersion,omitempty"`
	Logging            *Logging     `json:"logging,omitempty"`
}

// Arguments holds the split argument lists of newer descriptors. Entries are
// either plain strings or rule-guarded objects; only strings are used.
type Arguments struct {
	Game []any `json:"game"`
	JVM  []any `json:"jvm"`
}

type Library struct {
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads"`
	Rules     []Rule           `json:"rules,omitempty"`
}

type LibraryDownloads struct {
	Artifact *Artifact `json:"artifact,omitempty"`
}

type Artifact struct {
	Path string `json:"path"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1"`
	Size int    `json:"size"`
}

type Downloads struct {
	Client *Artifact `json:"client,omitempty"`
	Server *Artifact `json:"server,omitempty"`
}

type AssetIndex struct {
	ID        string `json:"id"`
	SHA1      string `json:"sha1"`
	Size      int    `json:"size"`
	TotalSize int    `json:"totalSize"`
	URL       string `json:"url"`
}

type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

type Logging struct {
	Client *LoggingConfig `json:"client,omitempty"`
}

type LoggingConfig struct {
	Argument string      `json:"argument"`
	File     LoggingFile `json:"file"`
	Type     string      `json:"type"`
}

type LoggingFile struct {
	ID   string `json:"id"`
	SHA1 string `json:"sha1"`
	Size int    `json:"size"`
	URL  string `json:"url"`
}

// Asset index document stored at assets/indexes/<id>.json
type AssetObjects struct {
	Objects map[string]AssetObject `json:"objects"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int    `json:"size"`
}
