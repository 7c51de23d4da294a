package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
github:
  search_keywords: "AI,LLM"
  language: Go
  min_stars: 100
  min_forks: 10
  update_within_days: 7
  max_results: 5
  exclude_forks: true
llm:
  provider: openrouter
  api_url: https://openrouter.ai/api/v1
  model: deepseek/deepseek-chat
  max_tokens: 2000
email:
  smtp_server: smtp.example.com
  smtp_port: 465
  sender_email: bot@example.com
  recipients:
    - dev@example.com
    - lead@example.com
  subject: "GitHub项目分析报告"
  send_empty_report: false
report:
  output_dir: reports
log:
  dir: logs
  level: info
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("SMTP_PASSWORD", "smtp-pass")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "AI,LLM", cfg.GitHub.SearchKeywords)
	assert.Equal(t, "Go", cfg.GitHub.Language)
	assert.Equal(t, 100, cfg.GitHub.MinStars)
	assert.Equal(t, 5, cfg.GitHub.MaxResults)
	assert.True(t, cfg.GitHub.ExcludeForks)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, []string{"dev@example.com", "lead@example.com"}, cfg.Email.Recipients)
	assert.False(t, cfg.Email.SendEmptyReport)

	// 凭证只来自环境变量
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
	assert.Equal(t, "llm-key", cfg.LLM.APIKey)
	assert.Equal(t, "smtp-pass", cfg.Email.Password)
}

func TestLoadDefaults(t *testing.T) {
	minimal := `
llm:
  model: deepseek/deepseek-chat
  api_url: https://openrouter.ai/api/v1
email:
  smtp_server: smtp.example.com
  smtp_port: 465
  sender_email: bot@example.com
  recipients: ["dev@example.com"]
  subject: "GitHub项目分析报告"
`
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.GitHub.MaxResults)
	assert.Equal(t, 7, cfg.GitHub.UpdateWithinDays)
	assert.Equal(t, "stars", cfg.GitHub.SortBy)
	assert.Equal(t, "desc", cfg.GitHub.SortOrder)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.Equal(t, "logs", cfg.Log.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.LLM.Model = "deepseek/deepseek-chat"
		cfg.LLM.APIURL = "https://openrouter.ai/api/v1"
		cfg.Email.SMTPServer = "smtp.example.com"
		cfg.Email.SMTPPort = 465
		cfg.Email.SenderEmail = "bot@example.com"
		cfg.Email.Recipients = []string{"dev@example.com"}
		cfg.Email.Subject = "GitHub项目分析报告"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "合法配置",
			mutate: func(c *Config) {},
		},
		{
			name:   "负数 min_stars",
			mutate: func(c *Config) { c.GitHub.MinStars = -1 },
			errMsg: "min_stars",
		},
		{
			name:   "非法排序方向",
			mutate: func(c *Config) { c.GitHub.SortOrder = "up" },
			errMsg: "sort_order",
		},
		{
			name:   "未知 provider",
			mutate: func(c *Config) { c.LLM.Provider = "claude" },
			errMsg: "provider",
		},
		{
			name:   "缺少模型",
			mutate: func(c *Config) { c.LLM.Model = "" },
			errMsg: "model",
		},
		{
			name:   "openrouter 缺少 api_url",
			mutate: func(c *Config) { c.LLM.APIURL = "" },
			errMsg: "api_url",
		},
		{
			name:   "gemini 不要求 api_url",
			mutate: func(c *Config) { c.LLM.Provider = "gemini"; c.LLM.APIURL = "" },
		},
		{
			name:   "没有收件人",
			mutate: func(c *Config) { c.Email.Recipients = nil },
			errMsg: "recipients",
		},
		{
			name:   "缺少主题",
			mutate: func(c *Config) { c.Email.Subject = "" },
			errMsg: "subject",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}
