// Package identity resolves raw commit author/committer fields to canonical contributor keys.
package identity

import (
	"sort"
	"strings"

	"github.com/huangsam/gitcensus/schema"
)

// UnattributedKey is returned when every candidate, including the project
// namespace, is empty or anonymous.
const UnattributedKey = "unattributed"

// strippedSuffixes are organizational suffixes removed from cleaned values.
var strippedSuffixes = []string{".mil", ".ctr", ".civ"}

// Normalizer applies alias tables and anonymous-value filtering.
// It is read-only after construction and safe for concurrent use.
type Normalizer struct {
	aliasIndex map[string]string   // member -> canonical name
	anonymous  map[string]struct{} // values that never identify a person
}

// NewNormalizer builds a Normalizer from an alias table (canonical name -> members)
// and a set of anonymous values. When a member appears under several canonical
// names, the alphabetically first canonical name wins.
func NewNormalizer(aliases map[string][]string, anonymous []string) *Normalizer {
	canonicals := make([]string, 0, len(aliases))
	for canonical := range aliases {
		canonicals = append(canonicals, canonical)
	}
	sort.Strings(canonicals)

	index := make(map[string]string)
	for _, canonical := range canonicals {
		for _, member := range aliases[canonical] {
			if _, taken := index[member]; !taken {
				index[member] = canonical
			}
		}
	}

	anon := make(map[string]struct{}, len(anonymous))
	for _, v := range anonymous {
		anon[v] = struct{}{}
	}

	return &Normalizer{aliasIndex: index, anonymous: anon}
}

// Clean replaces a known alias with its canonical name, then strips one
// organizational suffix. Alias members are matched against the lowercased value.
func (n *Normalizer) Clean(value string) string {
	if canonical, ok := n.aliasIndex[strings.ToLower(value)]; ok {
		return canonical
	}
	for _, suffix := range strippedSuffixes {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}

// IsAnonymous reports whether a cleaned value cannot identify a contributor.
func (n *Normalizer) IsAnonymous(value string) bool {
	if value == "" {
		return true
	}
	_, ok := n.anonymous[value]
	return ok
}

// Resolve returns the canonical contributor key for a commit listed under projectPath.
//
// Candidates are tried lazily in a fixed order: committer email, author email,
// committer name, author name. The survivor is reduced to its local part and
// cleaned again; if that is still anonymous the project's top-level namespace
// is used instead.
func (n *Normalizer) Resolve(commit schema.RawCommit, projectPath string) string {
	candidates := []func() string{
		func() string { return commit.CommitterEmail },
		func() string { return commit.AuthorEmail },
		func() string { return commit.CommitterName },
		func() string { return commit.AuthorName },
	}

	key := ""
	for _, next := range candidates {
		key = n.Clean(next())
		if !n.IsAnonymous(key) {
			break
		}
	}

	key = n.Clean(localPart(key))
	if n.IsAnonymous(key) {
		key = strings.TrimSuffix(n.Clean(Namespace(projectPath)+"/"), "/")
	}
	key = n.Clean(key)

	if n.IsAnonymous(key) {
		return UnattributedKey
	}
	return key
}

// Namespace returns the path segment before the first "/".
func Namespace(projectPath string) string {
	ns, _, _ := strings.Cut(projectPath, "/")
	return ns
}

// localPart returns everything before the first "@".
func localPart(value string) string {
	local, _, _ := strings.Cut(value, "@")
	return local
}
