package domain

import "time"

// Repo 代表一个由 GitHub 搜索命中的候选项目
type Repo struct {
	// 基础信息 (来自 GitHub Search API)
	ID          int64     `json:"id"`
	Name        string    `json:"name"` // 例如 "gohugoio/hugo"
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	Topics      []string  `json:"topics"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"` // 最近一次 push 时间

	// 质量评分 (0-100)：活跃度 + 增长潜力 + 社区活跃度 + 成熟度
	QualityScore float64 `json:"quality_score"`
}

// Analysis 是一个候选项目的 AI 分析结果
// Summary 是纯文本，包含固定的六个小节：
// 项目概述 / 核心功能 / 技术特点 / 应用场景 / 解决的痛点 / 价值评估
type Analysis struct {
	Repo    *Repo  `json:"repo"`
	Summary string `json:"summary"`
}

// HasSummary 判断分析结果是否有正文可以写进报告
func (a *Analysis) HasSummary() bool {
	if a == nil {
		return false
	}
	return len(a.Summary) > 0
}

// Report 是一次运行产出的报告：标题 + 生成时间 + 有序的分析章节
type Report struct {
	Title       string      `json:"title"`
	GeneratedAt time.Time   `json:"generated_at"`
	Sections    []*Analysis `json:"sections"`
}
