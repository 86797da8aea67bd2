package cmd

import (
	"strings"

	"github.com/aleksa11010/HarnessInputSetReconciler/harness"
	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile      string
	apiKeyArg       string
	accountArg      string
	orgArg          string
	projectArg      string
	baseURLArg      string
	gitSyncFlag     bool
	verboseFlag     bool
	targetProjects  string
	excludeProjects string
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Reconcile Harness input sets with their pipelines",
	Long: `Finds input sets and overlay input sets that no longer match the runtime
inputs of their pipeline, shows the difference and updates, cleans up or deletes them.
Git backed input sets are saved through the configured git details.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verboseFlag {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:    true,
		FieldsOrder: []string{"component", "category"},
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Provide a config file.")
	rootCmd.PersistentFlags().StringVar(&apiKeyArg, "api-key", "", "Provide your API Key.")
	rootCmd.PersistentFlags().StringVar(&accountArg, "account", "", "Provide your account ID.")
	rootCmd.PersistentFlags().StringVar(&orgArg, "org", "", "Organization identifier.")
	rootCmd.PersistentFlags().StringVar(&projectArg, "project", "", "Project identifier.")
	rootCmd.PersistentFlags().StringVar(&baseURLArg, "base-url", "", "Harness URL (default "+harness.BaseURL+").")
	rootCmd.PersistentFlags().BoolVar(&gitSyncFlag, "git-sync", false, "Account uses the legacy git sync integration.")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output.")
	rootCmd.PersistentFlags().StringVar(&targetProjects, "target-projects", "", "Provide a list of projects to target.")
	rootCmd.PersistentFlags().StringVar(&excludeProjects, "exclude-projects", "", "Provide a list of projects to exclude.")
}

// loadConfig reads the config file and environment, then applies the flags
// that were set on the command line.
func loadConfig() (*harness.Config, error) {
	c, err := harness.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	if apiKeyArg != "" {
		c.ApiKey = apiKeyArg
	}
	if accountArg != "" {
		c.AccountIdentifier = accountArg
	}
	if orgArg != "" {
		c.OrgIdentifier = orgArg
	}
	if projectArg != "" {
		c.ProjectIdentifier = projectArg
	}
	if baseURLArg != "" {
		c.BaseURL = strings.TrimSuffix(baseURLArg, "/")
	}
	if gitSyncFlag {
		c.GitSyncEnabled = true
	}
	if targetProjects != "" {
		c.TargetProjects = strings.Split(targetProjects, ",")
	}
	if excludeProjects != "" {
		c.ExcludeProjects = strings.Split(excludeProjects, ",")
	}

	if err := c.Complete(); err != nil {
		return nil, err
	}
	return c, nil
}
