package launcher

import "strings"

// Placeholder is a ${...} variable recognized in argument templates.
type Placeholder int

const (
	AuthPlayerName Placeholder = iota
	AuthUUID
	AuthAccessToken
	VersionName
	GameDirectory
	AssetsRoot
	AssetsIndexName
	UserType
	UserProperties
	VersionType
	LauncherName
	LauncherVersion
)

var placeholderNames = map[Placeholder]string{
	AuthPlayerName:  "auth_player_name",
	AuthUUID:        "auth_uuid",
	AuthAccessToken: "auth_access_token",
	VersionName:     "version_name",
	GameDirectory:   "game_directory",
	AssetsRoot:      "assets_root",
	AssetsIndexName: "assets_index_name",
	UserType:        "user_type",
	UserProperties:  "user_properties",
	VersionType:     "version_type",
	LauncherName:    "launcher_name",
	LauncherVersion: "launcher_version",
}

var placeholdersByName = func() map[string]Placeholder {
	m := make(map[string]Placeholder, len(placeholderNames))
	for p, name := range placeholderNames {
		m[name] = p
	}
	return m
}()

func (p Placeholder) String() string {
	return "${" + placeholderNames[p] + "}"
}

func LookupPlaceholder(name string) (Placeholder, bool) {
	p, ok := placeholdersByName[name]
	return p, ok
}

type Values map[Placeholder]string

// Substitute replaces every recognized placeholder in token in a single pass.
// Unknown placeholders, and recognized ones without a value, stay verbatim.
// Substituted values are never rescanned.
func Substitute(token string, values Values) string {
	if !strings.Contains(token, "${") {
		return token
	}

	var b strings.Builder
	rest := token
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			b.WriteString(rest)
			break
		}

		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		p, ok := LookupPlaceholder(rest[start+2 : end])
		if !ok {
			// the span may still hold a known placeholder
			b.WriteString("${")
			rest = rest[start+2:]
			continue
		}
		if v, ok := values[p]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(rest[start : end+1])
		}

		rest = rest[end+1:]
	}

	return b.String()
}

// ExpandArguments splits template on whitespace and substitutes each token.
func ExpandArguments(template string, values Values) []string {
	return ExpandTokens(strings.Fields(template), values)
}

func ExpandTokens(tokens []string, values Values) []string {
	args := make([]string, 0, len(tokens))
	for _, token := range tokens {
		args = append(args, Substitute(token, values))
	}
	return args
}
