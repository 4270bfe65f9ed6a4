package config

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/spf13/viper"
)

type GlobalConfig struct {
	GitHubToken               string
	GitHubAppID               int
	GitHubAppInstallationID   int
	GitHubAppPrivateKey       string
	GitHubAppPrivateKeyAsFile bool
	GitHubOwner               string
	GitHubRepo                string
	ProjectURL                string
	ConfigFile                string
	Timezone                  string
	LogLevel                  string
}

type MigrateConfig struct {
	SnapshotPath string
	BoardFilter  string
	ImportLists  []string
	MaxWorkers   int
}

// BoardConfig is one board entry of config.yaml, carrying the snapshot
// location and the GitHub targets.
type BoardConfig struct {
	ID          string   `mapstructure:"id"`
	Name        string   `mapstructure:"name"`
	BackupFile  string   `mapstructure:"backup_file"`
	ImportLists []string `mapstructure:"import_lists"`
	GitHub      struct {
		Repo    string `mapstructure:"repo"`
		Project string `mapstructure:"project"`
	} `mapstructure:"github"`
}

// LoadBoards reads the trello_boards section of a YAML config file.
func LoadBoards(path string) ([]BoardConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var boards []BoardConfig
	if err := v.UnmarshalKey("trello_boards", &boards); err != nil {
		return nil, fmt.Errorf("failed to parse trello_boards: %w", err)
	}
	return boards, nil
}

// ProjectTarget locates a GitHub Project (V2) by its owner and number.
type ProjectTarget struct {
	Owner      string
	OwnerIsOrg bool
	Number     int
}

var (
	projectNumberRe = regexp.MustCompile(`projects/(\d+)`)
	projectOwnerRe  = regexp.MustCompile(`github\.com/(orgs|users)/([^/]+)`)
)

// ParseProjectURL extracts the owner and number from a Project URL of the
// form https://github.com/orgs/<owner>/projects/<number>.
func ParseProjectURL(rawURL string) (ProjectTarget, error) {
	numMatch := projectNumberRe.FindStringSubmatch(rawURL)
	if numMatch == nil {
		return ProjectTarget{}, fmt.Errorf("could not parse project number from %q", rawURL)
	}
	number, err := strconv.Atoi(numMatch[1])
	if err != nil {
		return ProjectTarget{}, fmt.Errorf("invalid project number in %q: %w", rawURL, err)
	}

	ownerMatch := projectOwnerRe.FindStringSubmatch(rawURL)
	if ownerMatch == nil {
		return ProjectTarget{}, fmt.Errorf("could not parse project owner from %q", rawURL)
	}

	return ProjectTarget{
		Owner:      ownerMatch[2],
		OwnerIsOrg: ownerMatch[1] == "orgs",
		Number:     number,
	}, nil
}

// ParseRepo splits an "owner/name" or full repository URL into its parts.
func ParseRepo(repo string) (owner, name string, err error) {
	m := regexp.MustCompile(`(?:github\.com/)?([^/]+)/([^/]+?)(?:\.git)?/?$`).FindStringSubmatch(repo)
	if m == nil {
		return "", "", fmt.Errorf("could not parse repository %q", repo)
	}
	return m[1], m[2], nil
}
