package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/ecosystem"
)

// reposCommand creates the repos command for listing server repositories.
func (c *CLI) reposCommand() *cobra.Command {
	var (
		server   string
		typeFlag string
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List the server's repositories",
		Long: `List the repositories the server exposes, with their type (local,
remote, virtual) and package type.

Examples:
  hound repos
  hound repos --type python
  hound repos --server https://repo.example.com/artifactory`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepos(cmd, server, typeFlag)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server base URL (overrides config)")
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "only repositories for this package type (python, npm, maven, ...)")

	return cmd
}

func (c *CLI) runRepos(cmd *cobra.Command, server, typeFlag string) error {
	cfg, err := loadConfig(c.ConfigPath)
	if err != nil {
		return err
	}

	client, err := c.newClient(cfg, clientOptions{server: server})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	spinner := newSpinnerWithContext(ctx, "Fetching repositories...")
	spinner.Start()
	repos, err := client.Repositories(ctx)
	if err != nil {
		spinner.StopWithError("Could not list repositories")
		return fmt.Errorf("list repositories: %w", err)
	}
	spinner.Stop()

	if typeFlag != "" {
		eco, err := ecosystem.Parse(typeFlag)
		if err != nil {
			return err
		}
		repos = filterRepos(repos, eco)
	}

	if len(repos) == 0 {
		printInfo("No repositories found")
		return nil
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Key < repos[j].Key })

	rows := make([][]string, 0, len(repos))
	for _, repo := range repos {
		rows = append(rows, []string{repo.Key, strings.ToLower(repo.Type), repo.PackageType, repo.URL})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Type", "Package Type", "URL").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Println(t.Render())
	printDetail("%d repositories", len(repos))
	return nil
}

// filterRepos keeps only repositories whose package type matches eco.
func filterRepos(repos []artifactory.Repository, eco ecosystem.Ecosystem) []artifactory.Repository {
	filtered := repos[:0]
	for _, repo := range repos {
		if strings.EqualFold(repo.PackageType, eco.PackageType()) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}
