// Package classify labels contributors and projects from curated lookup tables.
package classify

import (
	"sort"

	"github.com/huangsam/gitcensus/core/identity"
	"github.com/huangsam/gitcensus/schema"
)

// Classifier maps contributor keys and project paths to labels.
// Lookups are exact; a missing entry resolves to a default rather than an error.
type Classifier struct {
	courses      map[string]string
	known        map[string]struct{}
	contributors map[string]schema.UserType
}

// New builds a Classifier from the namespace-to-course table, the known
// operational namespaces and the internal/external contributor table.
func New(courses map[string]string, knownNamespaces []string, contributors map[string]schema.UserType) *Classifier {
	known := make(map[string]struct{}, len(knownNamespaces))
	for _, ns := range knownNamespaces {
		known[ns] = struct{}{}
	}
	if courses == nil {
		courses = map[string]string{}
	}
	if contributors == nil {
		contributors = map[string]schema.UserType{}
	}
	return &Classifier{courses: courses, known: known, contributors: contributors}
}

// ClassifyProject derives (group, category) from the top-level namespace of path.
func (c *Classifier) ClassifyProject(path string) schema.ProjectClassification {
	ns := identity.Namespace(path)
	if course, ok := c.courses[ns]; ok {
		return schema.ProjectClassification{Group: course, Category: schema.SchoolhouseProject}
	}
	if _, ok := c.known[ns]; ok {
		return schema.ProjectClassification{Group: ns, Category: schema.OperationalProject}
	}
	return schema.ProjectClassification{Group: ns, Category: schema.PersonalProject}
}

// ClassifyContributor returns the curated label for key, or UnknownUser.
func (c *Classifier) ClassifyContributor(key string) schema.UserType {
	if label, ok := c.contributors[key]; ok {
		return label
	}
	return schema.UnknownUser
}

// IsLabeled reports whether key has an entry in the contributor table.
func (c *Classifier) IsLabeled(key string) bool {
	_, ok := c.contributors[key]
	return ok
}

// Courses returns the distinct course names, sorted.
func (c *Classifier) Courses() []string {
	seen := make(map[string]struct{}, len(c.courses))
	for _, course := range c.courses {
		seen[course] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for course := range seen {
		out = append(out, course)
	}
	sort.Strings(out)
	return out
}
