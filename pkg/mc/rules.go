package mc

import "github.com/havrydotdev/catclient/types"

func mcRuleToOs(mcOs string) string {
	if mcOs == "osx" {
		return "darwin"
	}

	return mcOs
}

// RulesAllow evaluates a rule list for the given GOOS. No rules means allowed;
// otherwise the last matching rule decides and nothing matching means disallowed.
// Rules gated on launcher features never match.
func RulesAllow(rules []types.Rule, goos string) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := false
	for _, rule := range rules {
		if len(rule.Features) > 0 {
			continue
		}
		if rule.OS != nil && rule.OS.Name != "" && mcRuleToOs(rule.OS.Name) != goos {
			continue
		}

		allowed = rule.Action == "allow"
	}

	return allowed
}

func LibraryArtifactFor(library types.Library, goos string) *types.Artifact {
	artifact := library.Downloads.Artifact
	if artifact == nil || artifact.Path == "" {
		return nil
	}

	if !RulesAllow(library.Rules, goos) {
		return nil
	}

	return artifact
}
