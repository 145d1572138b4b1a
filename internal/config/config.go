package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	LLM      LLMConfig      `yaml:"llm"`
	Governor GovernorConfig `yaml:"governor"`
	Outline  OutlineConfig  `yaml:"outline"`
	Budget   BudgetConfig   `yaml:"budget"`
	Limits   LimitsConfig   `yaml:"limits"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Output   OutputConfig   `yaml:"output"`
	Journal  JournalConfig  `yaml:"journal"`
}

// ProjectConfig identifies the project being documented
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Description string `yaml:"description,omitempty"`
}

// LLMConfig holds generative service settings
type LLMConfig struct {
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`
	MaxTokens   int     `yaml:"max_tokens,omitempty"`
}

// GovernorConfig controls request pacing, the sliding window, and retries
type GovernorConfig struct {
	PlanDelaySeconds       int `yaml:"plan_delay_seconds"`
	SectionDelaySeconds    int `yaml:"section_delay_seconds"`
	ScreenshotDelaySeconds int `yaml:"screenshot_delay_seconds"`
	DiagramDelaySeconds    int `yaml:"diagram_delay_seconds"`
	RequestsPerMinute      int `yaml:"requests_per_minute"`
	MaxAttempts            int `yaml:"max_attempts"`
	BaseBackoffSeconds     int `yaml:"base_backoff_seconds"`
}

// OutlineConfig controls plan sizing
type OutlineConfig struct {
	MinSections           int `yaml:"min_sections"`
	MaxSections           int `yaml:"max_sections"`
	SmallMinSections      int `yaml:"small_min_sections"`
	SmallMaxSections      int `yaml:"small_max_sections"`
	SmallProjectThreshold int `yaml:"small_project_threshold"` // context chars
}

// BudgetConfig holds the global artifact caps and priority keyword lists
type BudgetConfig struct {
	MaxScreenshots  int      `yaml:"max_screenshots"`
	MaxDiagrams     int      `yaml:"max_diagrams"`
	MediaKeywords   []string `yaml:"media_keywords,omitempty"`
	DiagramKeywords []string `yaml:"diagram_keywords,omitempty"`
}

// LimitsConfig holds context truncation ceilings (characters, hard prefix cut)
type LimitsConfig struct {
	PlanContext       int `yaml:"plan_context"`
	SectionContext    int `yaml:"section_context"`
	ScreenshotContext int `yaml:"screenshot_context"`
	DiagramContext    int `yaml:"diagram_context"`
	PreviousTail      int `yaml:"previous_tail"`
}

// SnapshotConfig controls codebase context loading
type SnapshotConfig struct {
	RepomixFile   string   `yaml:"repomix_file,omitempty"`
	ExcludedDirs  []string `yaml:"excluded_dirs,omitempty"`
	MaxFileSizeKB int      `yaml:"max_file_size_kb"`
	MaxFiles      int      `yaml:"max_files"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	Filename      string `yaml:"filename"`
	ScreenshotDir string `yaml:"screenshot_dir"`
	MaxCodeLines  int    `yaml:"max_code_lines"` // line cap for code captures
}

// JournalConfig controls the optional run journal
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // defaults to in-memory
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; the API key usually lives there
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDefaults fills zero values with working defaults.
func (c *Config) applyDefaults() {
	if c.Project.Name == "" {
		c.Project.Name = "My Project"
	}
	if c.Project.Path == "" {
		c.Project.Path = "."
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-pro"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("DOCFORGE_API_KEY")
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 8000
	}

	g := &c.Governor
	if g.PlanDelaySeconds == 0 {
		g.PlanDelaySeconds = 2
	}
	if g.SectionDelaySeconds == 0 {
		g.SectionDelaySeconds = 2
	}
	if g.ScreenshotDelaySeconds == 0 {
		g.ScreenshotDelaySeconds = 2
	}
	if g.DiagramDelaySeconds == 0 {
		g.DiagramDelaySeconds = 2
	}
	if g.RequestsPerMinute == 0 {
		g.RequestsPerMinute = 15
	}
	if g.MaxAttempts == 0 {
		g.MaxAttempts = 3
	}
	if g.BaseBackoffSeconds == 0 {
		g.BaseBackoffSeconds = 5
	}

	o := &c.Outline
	if o.MinSections == 0 {
		o.MinSections = 4
	}
	if o.MaxSections == 0 {
		o.MaxSections = 10
	}
	if o.SmallMinSections == 0 {
		o.SmallMinSections = 3
	}
	if o.SmallMaxSections == 0 {
		o.SmallMaxSections = 6
	}
	if o.SmallProjectThreshold == 0 {
		o.SmallProjectThreshold = 10000
	}

	b := &c.Budget
	if b.MaxScreenshots == 0 {
		b.MaxScreenshots = 6
	}
	if b.MaxDiagrams == 0 {
		b.MaxDiagrams = 3
	}
	if len(b.MediaKeywords) == 0 {
		b.MediaKeywords = []string{"installation", "setup", "usage", "configuration", "interface", "getting started"}
	}
	if len(b.DiagramKeywords) == 0 {
		b.DiagramKeywords = []string{"architecture", "overview", "design", "components"}
	}

	l := &c.Limits
	if l.PlanContext == 0 {
		l.PlanContext = 100000
	}
	if l.SectionContext == 0 {
		l.SectionContext = 80000
	}
	if l.ScreenshotContext == 0 {
		l.ScreenshotContext = 30000
	}
	if l.DiagramContext == 0 {
		l.DiagramContext = 50000
	}
	if l.PreviousTail == 0 {
		l.PreviousTail = 10000
	}

	s := &c.Snapshot
	if len(s.ExcludedDirs) == 0 {
		s.ExcludedDirs = []string{".git", "node_modules", "vendor", "__pycache__", ".venv", "dist", "build"}
	}
	if s.MaxFileSizeKB == 0 {
		s.MaxFileSizeKB = 100
	}
	if s.MaxFiles == 0 {
		s.MaxFiles = 20
	}

	if c.Output.Directory == "" {
		c.Output.Directory = "./output"
	}
	if c.Output.Filename == "" {
		c.Output.Filename = "documentation.html"
	}
	if c.Output.ScreenshotDir == "" {
		c.Output.ScreenshotDir = "./screenshots"
	}
	if c.Output.MaxCodeLines == 0 {
		c.Output.MaxCodeLines = 50
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		c.Journal.Path = ":memory:"
	}
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := `# docforge configuration
project:
  name: "My Project"
  path: "."
  description: ""

llm:
  model: "gemini-2.5-pro"
  # Read from environment; put DOCFORGE_API_KEY=... in .env
  api_key: "${DOCFORGE_API_KEY}"
  # base_url: "https://generativelanguage.googleapis.com/v1beta/openai/"
  temperature: 0.7
  max_tokens: 8000

governor:
  requests_per_minute: 15
  max_attempts: 3
  base_backoff_seconds: 5
  plan_delay_seconds: 2
  section_delay_seconds: 2
  screenshot_delay_seconds: 2
  diagram_delay_seconds: 2

budget:
  max_screenshots: 6
  max_diagrams: 3

output:
  directory: "./output"
  filename: "documentation.html"
  screenshot_dir: "./screenshots"

journal:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(example), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
