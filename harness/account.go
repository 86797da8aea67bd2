package harness

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	BaseURL   = "https://app.harness.io"
	EnvPrefix = "HARNESS__"
)

type Config struct {
	AccountIdentifier string     `koanf:"accountIdentifier" validate:"required"`
	ApiKey            string     `koanf:"apiKey" validate:"required"`
	BaseURL           string     `koanf:"baseUrl" validate:"required,url"`
	OrgIdentifier     string     `koanf:"orgIdentifier"`
	ProjectIdentifier string     `koanf:"projectIdentifier"`
	TargetProjects    []string   `koanf:"targetProjects"`
	ExcludeProjects   []string   `koanf:"excludeProjects"`
	GitSyncEnabled    bool       `koanf:"gitSyncEnabled"`
	GitDetails        GitDetails `koanf:"gitDetails"`
	Client            Client     `koanf:"client"`
}

type Client struct {
	RetryCount     int `koanf:"retryCount" validate:"gte=0"`
	TimeoutSeconds int `koanf:"timeoutSeconds" validate:"gte=0"`
	Concurrency    int `koanf:"concurrency" validate:"gte=1"`
}

// GitDetails are the git coordinates of a remote or git-synced entity. The
// save-time fields (commit message, new branch) are only sent on writes.
type GitDetails struct {
	RepoIdentifier string `koanf:"repoIdentifier" yaml:"repo_identifier" json:"repoIdentifier,omitempty"`
	RepoName       string `koanf:"repoName" yaml:"repo_name" json:"repoName,omitempty"`
	BranchName     string `koanf:"branchName" yaml:"branch_name" json:"branch,omitempty" validate:"required_if=IsNewBranch true"`
	RootFolder     string `koanf:"rootFolder" yaml:"root_folder" json:"rootFolder,omitempty"`
	FilePath       string `koanf:"filePath" yaml:"file_path" json:"filePath,omitempty"`
	ObjectID       string `koanf:"objectId" yaml:"object_id" json:"objectId,omitempty"`
	CommitID       string `koanf:"commitId" yaml:"commit_id" json:"commitId,omitempty"`
	ConnectorRef   string `koanf:"connectorRef" yaml:"connector_ref" json:"connectorRef,omitempty"`
	CommitMessage  string `koanf:"commitMessage" yaml:"commit_message" json:"commitMsg,omitempty"`
	IsNewBranch    bool   `koanf:"isNewBranch" yaml:"is_new_branch" json:"isNewBranch,omitempty"`
	BaseBranch     string `koanf:"baseBranch" yaml:"base_branch" json:"baseBranch,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: BaseURL,
		GitDetails: GitDetails{
			CommitMessage: "Reconciling input set with pipeline",
		},
		Client: Client{
			RetryCount:     2,
			TimeoutSeconds: 30,
			Concurrency:    4,
		},
	}
}

// LoadConfig reads defaults, then the optional config file, then HARNESS__*
// environment variables (HARNESS__GITDETAILS__BRANCHNAME -> gitDetails.branchName).
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	keys := configKeys(k)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if real, ok := keys[key]; ok {
			return real
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return c, nil
}

// configKeys maps lower-cased keys back to their camelCase form so that
// environment variables can address them.
func configKeys(k *koanf.Koanf) map[string]string {
	keys := map[string]string{}
	for _, key := range k.Keys() {
		keys[strings.ToLower(key)] = key
	}
	return keys
}

// Complete fills values that can be derived and validates the result.
func (c *Config) Complete() error {
	if c.AccountIdentifier == "" && c.ApiKey != "" {
		c.AccountIdentifier = GetAccountIDFromAPIKey(c.ApiKey)
	}
	if c.BaseURL == "" {
		c.BaseURL = BaseURL
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func GetAccountIDFromAPIKey(apiKey string) string {
	parts := strings.Split(apiKey, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
