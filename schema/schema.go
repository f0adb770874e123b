// Package schema has models and constants for all parts of gitcensus.
package schema

import "time"

// RawCommit is a commit as listed by a provider. It is never mutated after fetch.
type RawCommit struct {
	ID             string    `json:"id" bson:"id"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	ParentIDs      []string  `json:"parent_ids" bson:"parent_ids"`
	Title          string    `json:"title" bson:"title"`
	Message        string    `json:"message" bson:"message"`
	AuthorName     string    `json:"author_name" bson:"author_name"`
	AuthorEmail    string    `json:"author_email" bson:"author_email"`
	AuthoredDate   time.Time `json:"authored_date" bson:"authored_date"`
	CommitterName  string    `json:"committer_name" bson:"committer_name"`
	CommitterEmail string    `json:"committer_email" bson:"committer_email"`
	CommittedDate  time.Time `json:"committed_date" bson:"committed_date"`
	ProjectPath    string    `json:"project_path" bson:"project_path"`
}

// FlaggedCommit is a RawCommit carrying the duplicate flag assigned during collection.
type FlaggedCommit struct {
	RawCommit `bson:",inline"`
	Duplicate bool `json:"duplicate" bson:"duplicate"`
}

// Snapshot is the persisted collection result keyed by project path.
type Snapshot map[string][]FlaggedCommit

// CommitCount returns the number of stored commits across all projects.
func (s Snapshot) CommitCount() int {
	total := 0
	for _, commits := range s {
		total += len(commits)
	}
	return total
}

// CanonicalCommit is a flagged commit with its resolved contributor key.
type CanonicalCommit struct {
	FlaggedCommit
	CanonicalKey string `json:"canonical_key"`
}

// ProjectClassification is the (group, category) pair derived from a project path.
type ProjectClassification struct {
	Group    string          `json:"group"`
	Category ProjectCategory `json:"category"`
}

// ClassifiedCommit is a canonical commit annotated with its contributor and project labels.
type ClassifiedCommit struct {
	CanonicalCommit
	UserType UserType              `json:"user_type"`
	Project  ProjectClassification `json:"project"`
}

// Project is an entry returned by a commit-listing provider.
type Project struct {
	Path       string `json:"path"`
	Fork       bool   `json:"fork"`
	ForkedFrom string `json:"forked_from,omitempty"`
	ID         int    `json:"id,omitempty"` // provider-specific identifier, 0 when unused
}

// CollectionFailure records a project whose commits could not be listed.
type CollectionFailure struct {
	ProjectPath string `json:"project_path"`
	Reason      string `json:"reason"`
}

// CollectionSummary describes the outcome of one collection run.
type CollectionSummary struct {
	ProjectsScanned  int                 `json:"projects_scanned"`
	ForksScanned     int                 `json:"forks_scanned"`
	CommitsKept      int                 `json:"commits_kept"`
	Duplicates       int                 `json:"duplicates"`
	ForkSkipped      int                 `json:"fork_skipped"`
	Failures         []CollectionFailure `json:"failures"`
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	ProjectsReturned int                 `json:"projects_returned"`
}
