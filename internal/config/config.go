package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GitHub 搜索相关配置
type GitHub struct {
	SearchKeywords   string `yaml:"search_keywords"` // 逗号分隔，查询时用 OR 连接
	Language         string `yaml:"language"`
	MinStars         int    `yaml:"min_stars"`
	MinForks         int    `yaml:"min_forks"`
	UpdateWithinDays int    `yaml:"update_within_days"`
	MaxResults       int    `yaml:"max_results"`
	SortBy           string `yaml:"sort_by"`
	SortOrder        string `yaml:"sort_order"`
	ExcludeForks     bool   `yaml:"exclude_forks"`

	// Token 来自环境变量 GITHUB_TOKEN，不写在配置文件里
	Token string `yaml:"-"`
}

// LLM 分析端点配置
type LLM struct {
	Provider  string `yaml:"provider"` // openrouter 或 gemini
	APIURL    string `yaml:"api_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`

	// APIKey 来自环境变量 LLM_API_KEY
	APIKey string `yaml:"-"`
}

// Email 邮件投递配置
type Email struct {
	SMTPServer  string   `yaml:"smtp_server"`
	SMTPPort    int      `yaml:"smtp_port"`
	SenderEmail string   `yaml:"sender_email"`
	Recipients  []string `yaml:"recipients"`
	Subject     string   `yaml:"subject"`

	// 空报告策略：true 时即使没有任何项目也发送一份带"无结果"标记的报告，
	// false 时直接跳过发送阶段
	SendEmptyReport bool `yaml:"send_empty_report"`

	// Password 来自环境变量 SMTP_PASSWORD
	Password string `yaml:"-"`
}

// Report 报告产物配置
type Report struct {
	OutputDir string `yaml:"output_dir"`
}

// Log 日志配置
type Log struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Config 是整个运行期的配置，启动时加载一次，之后只读
type Config struct {
	GitHub GitHub `yaml:"github"`
	LLM    LLM    `yaml:"llm"`
	Email  Email  `yaml:"email"`
	Report Report `yaml:"report"`
	Log    Log    `yaml:"log"`
}

// Load 从 YAML 文件加载配置，并从环境变量补齐凭证
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.applyDefaults()

	// 凭证只从环境变量读，避免把密钥写进配置文件
	cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	cfg.Email.Password = os.Getenv("SMTP_PASSWORD")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GitHub.MaxResults == 0 {
		c.GitHub.MaxResults = 10
	}
	if c.GitHub.UpdateWithinDays == 0 {
		c.GitHub.UpdateWithinDays = 7
	}
	if c.GitHub.SortBy == "" {
		c.GitHub.SortBy = "stars"
	}
	if c.GitHub.SortOrder == "" {
		c.GitHub.SortOrder = "desc"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openrouter"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate 检查配置是否可以支撑一次完整运行
func (c *Config) Validate() error {
	if c.GitHub.MinStars < 0 {
		return fmt.Errorf("github.min_stars 不能为负数")
	}
	if c.GitHub.MinForks < 0 {
		return fmt.Errorf("github.min_forks 不能为负数")
	}
	if c.GitHub.MaxResults <= 0 {
		return fmt.Errorf("github.max_results 必须为正数")
	}
	if c.GitHub.UpdateWithinDays <= 0 {
		return fmt.Errorf("github.update_within_days 必须为正数")
	}
	if c.GitHub.SortOrder != "asc" && c.GitHub.SortOrder != "desc" {
		return fmt.Errorf("github.sort_order 必须是 asc 或 desc")
	}
	if c.LLM.Provider != "openrouter" && c.LLM.Provider != "gemini" {
		return fmt.Errorf("llm.provider 必须是 openrouter 或 gemini")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model 不能为空")
	}
	if c.LLM.Provider == "openrouter" && c.LLM.APIURL == "" {
		return fmt.Errorf("llm.api_url 不能为空")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens 必须为正数")
	}
	if c.Email.SMTPServer == "" {
		return fmt.Errorf("email.smtp_server 不能为空")
	}
	if c.Email.SMTPPort <= 0 {
		return fmt.Errorf("email.smtp_port 必须为正数")
	}
	if c.Email.SenderEmail == "" {
		return fmt.Errorf("email.sender_email 不能为空")
	}
	if len(c.Email.Recipients) == 0 {
		return fmt.Errorf("email.recipients 至少需要一个收件人")
	}
	if c.Email.Subject == "" {
		return fmt.Errorf("email.subject 不能为空")
	}
	return nil
}
