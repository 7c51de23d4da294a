package github

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github-report-mailer/internal/common"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"

	"github.com/google/go-github/v53/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Scouter 实现了 port.Scouter 接口
type Scouter struct {
	client  *github.Client
	cfg     config.GitHub
	log     *logrus.Logger
	nowFunc func() time.Time
}

// NewScouter 初始化 GitHub 客户端
// token 为空时匿名访问（限制 60次/小时）
func NewScouter(cfg config.GitHub, log *logrus.Logger) *Scouter {
	var client *github.Client

	if cfg.Token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Scouter{
		client:  client,
		cfg:     cfg,
		log:     log,
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}

// buildQuery 构造 GitHub 高级搜索查询字符串
// 示例: "AI OR LLM stars:100..50000 language:Go pushed:2026-08-16..2026-08-23 forks:>=10 fork:false"
func (s *Scouter) buildQuery() string {
	var parts []string

	// 关键词用 OR 连接（可选）
	if s.cfg.SearchKeywords != "" {
		var keywords []string
		for _, kw := range strings.Split(s.cfg.SearchKeywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) > 0 {
			parts = append(parts, strings.Join(keywords, " OR "))
		}
	}

	// 用 star 区间而不是单纯的下限，给潜力项目留位置
	parts = append(parts, fmt.Sprintf("stars:%d..%d", s.cfg.MinStars, s.cfg.MinStars*500))

	if s.cfg.Language != "" {
		parts = append(parts, fmt.Sprintf("language:%s", s.cfg.Language))
	}

	// 精确的时间范围：最近 N 天有 push
	now := s.nowFunc().UTC()
	from := now.AddDate(0, 0, -s.cfg.UpdateWithinDays).Format("2006-01-02")
	to := now.Format("2006-01-02")
	parts = append(parts, fmt.Sprintf("pushed:%s..%s", from, to))

	parts = append(parts, fmt.Sprintf("forks:>=%d", s.cfg.MinForks))

	if s.cfg.ExcludeForks {
		parts = append(parts, "fork:false")
	}

	return strings.Join(parts, " ")
}

// Scout 执行搜索并返回经过质量筛选的候选项目
// 顺序即报告章节顺序，结果数不超过 max_results
func (s *Scouter) Scout(ctx context.Context) ([]*domain.Repo, error) {
	query := s.buildQuery()
	s.log.Infof("🔍 启动GitHub搜索 | 条件: %s", query)

	opts := &github.SearchOptions{
		Sort:  s.cfg.SortBy,
		Order: s.cfg.SortOrder,
		ListOptions: github.ListOptions{
			PerPage: s.cfg.MaxResults,
		},
	}

	result, _, err := s.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, classifySearchError(err)
	}

	repos := dedupeByID(convert(result.Repositories))
	s.log.Infof("✅ 获取%d个候选项目", len(repos))

	// 质量漏斗：评分 -> 硬性过滤 -> 语言多样性
	scored := s.filterByScore(repos, 60.0)

	filtered := applyFilters(scored, strictFilters(s.cfg.MinStars))
	if len(filtered) < 3 {
		// 项目数量过少，放宽条件重试
		s.log.Warn("项目数量过少，放宽过滤条件重试...")
		filtered = applyFilters(scored, relaxedFilters(s.cfg.MinStars))
	}

	final := ensureDiversity(filtered, s.cfg.MaxResults)
	if len(final) > s.cfg.MaxResults {
		final = final[:s.cfg.MaxResults]
	}

	s.log.Infof("🎯 筛选出%d个高质量项目", len(final))
	return final, nil
}

// classifySearchError 把 go-github 的错误映射到运行级错误码
func classifySearchError(err error) error {
	switch e := err.(type) {
	case *github.RateLimitError:
		reset := e.Rate.Reset.Time.Format("2006-01-02 15:04:05")
		return common.WrapError(common.ErrCodeRequest,
			fmt.Sprintf("GitHub API请求受限，重置时间: %s", reset), err)
	case *github.AbuseRateLimitError:
		return common.WrapError(common.ErrCodeRequest, "GitHub API触发滥用限制", err)
	case *github.ErrorResponse:
		if e.Response != nil && (e.Response.StatusCode == 401 || e.Response.StatusCode == 403) {
			return common.WrapError(common.ErrCodeAuth, "GitHub 凭证被拒绝", err)
		}
		return common.WrapError(common.ErrCodeRequest, "GitHub API 调用失败", err)
	default:
		return common.WrapError(common.ErrCodeRequest, "GitHub API 调用失败", err)
	}
}

// convert 把 GitHub 的数据结构转换为 Domain 实体 (DTO 转换)
func convert(items []*github.Repository) []*domain.Repo {
	var repos []*domain.Repo
	for _, item := range items {
		repos = append(repos, &domain.Repo{
			ID:          item.GetID(),
			Name:        item.GetFullName(),
			URL:         item.GetHTMLURL(),
			Description: item.GetDescription(),
			Stars:       item.GetStargazersCount(),
			Forks:       item.GetForksCount(),
			OpenIssues:  item.GetOpenIssuesCount(),
			Topics:      item.Topics,
			Language:    item.GetLanguage(),
			CreatedAt:   item.GetCreatedAt().Time,
			UpdatedAt:   item.GetPushedAt().Time,
		})
	}
	return repos
}

// dedupeByID 按 ID 去重，保留首次出现的顺序
func dedupeByID(repos []*domain.Repo) []*domain.Repo {
	seen := make(map[int64]bool, len(repos))
	var out []*domain.Repo
	for _, repo := range repos {
		if seen[repo.ID] {
			continue
		}
		seen[repo.ID] = true
		out = append(out, repo)
	}
	return out
}

// qualityScore 计算项目质量分数 (0-100)
// 维度：活跃度(35) + 增长潜力(25) + 社区活跃度(20) + 成熟度(20)
func (s *Scouter) qualityScore(repo *domain.Repo) float64 {
	now := s.nowFunc().UTC()
	var score float64

	// 1. 活跃度评分 (35分)：最近更新得高分
	updateDays := now.Sub(repo.UpdatedAt).Hours() / 24
	score += 35 * (1 - math.Min(updateDays/7, 1))

	// 2. 增长潜力评分 (25分)：fork比例越高说明越有潜力
	if repo.Stars > 0 {
		forkRatio := float64(repo.Forks) / float64(repo.Stars)
		score += 25 * math.Min(forkRatio*2, 1)
	}

	// 3. 社区活跃度评分 (20分)：issue数量适中为佳
	if repo.Stars > 0 {
		issueRatio := float64(repo.OpenIssues) / float64(repo.Stars)
		const idealRatio = 0.1
		score += 20 * (1 - math.Min(math.Abs(issueRatio-idealRatio)*5, 1))
	}

	// 4. 成熟度评分 (20分)：项目年龄(10) + 主题标签(5) + 描述完整性(5)
	ageDays := now.Sub(repo.CreatedAt).Hours() / 24
	score += 10 * math.Min(ageDays/730, 1)
	score += 5 * math.Min(float64(len(repo.Topics))/5, 1)
	score += 5 * math.Min(float64(len(repo.Description))/100, 1)

	return math.Min(score, 100)
}

// filterByScore 给项目打分并按分数过滤
// 结果先按更新时间再按质量分数倒序
func (s *Scouter) filterByScore(repos []*domain.Repo, minScore float64) []*domain.Repo {
	var scored []*domain.Repo
	for _, repo := range repos {
		score := s.qualityScore(repo)
		if score >= minScore {
			repo.QualityScore = math.Round(score*100) / 100
			scored = append(scored, repo)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if !scored[i].UpdatedAt.Equal(scored[j].UpdatedAt) {
			return scored[i].UpdatedAt.After(scored[j].UpdatedAt)
		}
		return scored[i].QualityScore > scored[j].QualityScore
	})
	return scored
}

type repoFilter func(*domain.Repo) bool

// strictFilters 正常情况下的硬性要求
func strictFilters(minStars int) []repoFilter {
	return []repoFilter{
		// 要求基本描述
		func(r *domain.Repo) bool { return len(r.Description) > 30 },
		// 要求至少有1个主题标签
		func(r *domain.Repo) bool { return len(r.Topics) >= 1 },
		// fork数至少是star数的5%
		func(r *domain.Repo) bool { return float64(r.Forks) >= float64(r.Stars)*0.05 },
	}
}

// relaxedFilters 结果太少时的放宽条件
func relaxedFilters(minStars int) []repoFilter {
	return []repoFilter{
		// 只要有描述即可
		func(r *domain.Repo) bool { return r.Description != "" },
		// 保持最低star要求
		func(r *domain.Repo) bool { return r.Stars >= minStars },
	}
}

func applyFilters(repos []*domain.Repo, filters []repoFilter) []*domain.Repo {
	filtered := repos
	for _, f := range filters {
		var next []*domain.Repo
		for _, repo := range filtered {
			if f(repo) {
				next = append(next, repo)
			}
		}
		filtered = next
	}
	return filtered
}

// ensureDiversity 保证结果的语言多样性
// 每种语言先占一个名额，剩余名额按质量分数补齐
func ensureDiversity(repos []*domain.Repo, maxResults int) []*domain.Repo {
	if len(repos) == 0 {
		return nil
	}

	// 按语言分组，记录语言首次出现的顺序
	groups := make(map[string][]*domain.Repo)
	var langs []string
	for _, repo := range repos {
		lang := repo.Language
		if lang == "" {
			lang = "Unknown"
		}
		if _, ok := groups[lang]; !ok {
			langs = append(langs, lang)
		}
		groups[lang] = append(groups[lang], repo)
	}

	// 语言种类多于名额时，只保留 star 总量最高的几种
	if len(langs) > maxResults {
		sort.SliceStable(langs, func(i, j int) bool {
			return totalStars(groups[langs[i]]) > totalStars(groups[langs[j]])
		})
		langs = langs[:maxResults]
	}

	// 每种语言取质量分数最高的一个
	selected := make(map[int64]bool)
	var diverse []*domain.Repo
	for _, lang := range langs {
		group := groups[lang]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].QualityScore > group[j].QualityScore
		})
		diverse = append(diverse, group[0])
		selected[group[0].ID] = true
	}

	// 剩余名额从全部项目中按质量分数补齐
	if remaining := maxResults - len(diverse); remaining > 0 {
		var rest []*domain.Repo
		for _, repo := range repos {
			if !selected[repo.ID] {
				rest = append(rest, repo)
			}
		}
		sort.SliceStable(rest, func(i, j int) bool {
			return rest[i].QualityScore > rest[j].QualityScore
		})
		if remaining > len(rest) {
			remaining = len(rest)
		}
		diverse = append(diverse, rest[:remaining]...)
	}

	// 最终按质量分数排序
	sort.SliceStable(diverse, func(i, j int) bool {
		return diverse[i].QualityScore > diverse[j].QualityScore
	})
	return diverse
}

func totalStars(repos []*domain.Repo) int {
	sum := 0
	for _, repo := range repos {
		sum += repo.Stars
	}
	return sum
}
