package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/gitcensus/internal/contract"
	"github.com/huangsam/gitcensus/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveCmd answers which contributor a set of identity fields belongs to.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve commit identity fields to a contributor key and label.",
	Long: `Apply the identity rules used by reports to a single commit's fields and print
the canonical contributor key with its internal/external label.

The first non-anonymous value wins, in order: committer email, author email,
committer name, author name. When all four are anonymous the project namespace
is used instead.

Examples:
  gitcensus resolve --committer-email jianmin@corp.example
  gitcensus resolve --committer-email root --project-path studentA/play`,
	PreRunE: tablesSetup,
	Run: func(_ *cobra.Command, _ []string) {
		commit := schema.RawCommit{
			CommitterEmail: viper.GetString("committer-email"),
			AuthorEmail:    viper.GetString("author-email"),
			CommitterName:  viper.GetString("committer-name"),
			AuthorName:     viper.GetString("author-name"),
		}
		projectPath := viper.GetString("project-path")
		if commit.CommitterEmail == "" && commit.AuthorEmail == "" && commit.CommitterName == "" &&
			commit.AuthorName == "" && projectPath == "" {
			contract.LogFatal("Cannot resolve contributor", errors.New("at least one identity flag or --project-path is required"))
		}

		classifier := env.Tables.Classifier()
		key := env.Tables.Normalizer().Resolve(commit, projectPath)
		fmt.Printf("Key: %s\n", key)
		fmt.Printf("User Type: %s\n", contract.GetColorLabel(classifier.ClassifyContributor(key)))
		fmt.Printf("Labeled: %t\n", classifier.IsLabeled(key))
	},
}

// classifyCmd prints the group and category of project paths.
var classifyCmd = &cobra.Command{
	Use:   "classify <project-path>...",
	Short: "Show the group and category of project paths.",
	Long: `Derive the (group, category) pair of each project path from its top-level namespace.

Namespaces listed in namespace_courses map to their course (schoolhouse),
known_namespaces are operational, and anything else is a personal project.

Examples:
  gitcensus classify Module1/lab1 helpdesk/tickets studentA/play`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: tablesSetup,
	Run: func(_ *cobra.Command, args []string) {
		classifier := env.Tables.Classifier()
		for _, path := range args {
			pc := classifier.ClassifyProject(path)
			fmt.Printf("%s\t%s\t%s\n", path, pc.Group, pc.Category)
		}
	},
}
