package core

import (
	"sort"

	"github.com/huangsam/gitcensus/core/agg"
	"github.com/huangsam/gitcensus/core/classify"
	"github.com/huangsam/gitcensus/core/identity"
	"github.com/huangsam/gitcensus/schema"
)

// BuildDataset resolves and classifies every stored commit.
// Projects are visited in path order and commits in stored order. The snapshot key
// is authoritative for the commit's project path.
func BuildDataset(snapshot schema.Snapshot, normalizer *identity.Normalizer, classifier *classify.Classifier) *agg.Dataset {
	paths := make([]string, 0, len(snapshot))
	for path := range snapshot {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	commits := make([]schema.ClassifiedCommit, 0, snapshot.CommitCount())
	for _, path := range paths {
		project := classifier.ClassifyProject(path)
		for _, flagged := range snapshot[path] {
			flagged.ProjectPath = path
			key := normalizer.Resolve(flagged.RawCommit, path)
			commits = append(commits, schema.ClassifiedCommit{
				CanonicalCommit: schema.CanonicalCommit{FlaggedCommit: flagged, CanonicalKey: key},
				UserType:        classifier.ClassifyContributor(key),
				Project:         project,
			})
		}
	}
	return agg.NewDataset(commits)
}
