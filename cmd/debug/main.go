package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github-report-mailer/internal/adapter/gemini"
	ghadapter "github-report-mailer/internal/adapter/github"
	"github-report-mailer/internal/adapter/openrouter"
	"github-report-mailer/internal/adapter/report"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"
	"github-report-mailer/internal/logger"
	"github-report-mailer/internal/port"

	"github.com/joho/godotenv"
)

// 调试入口：逐阶段跑一遍搜索和分析，只分析前几个项目，不发送邮件
func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	limit := flag.Int("limit", 3, "最多分析几个项目")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Dir, "debug")
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Println("🔍 调试模式：获取并分析项目")

	// 1. 搜索候选项目
	scouter := ghadapter.NewScouter(cfg.GitHub, appLog)
	repos, err := scouter.Scout(ctx)
	if err != nil {
		log.Fatalf("❌ 搜索失败: %v", err)
	}
	if len(repos) == 0 {
		fmt.Println("❌ 没有获取到任何项目")
		return
	}
	for i, repo := range repos {
		fmt.Printf("  #%d %s | ⭐%d | 🍴%d | %s | 质量评分 %.2f\n",
			i+1, repo.Name, repo.Stars, repo.Forks, repo.Language, repo.QualityScore)
	}

	// 2. 初始化 Appraiser
	var appraiser port.Appraiser
	switch cfg.LLM.Provider {
	case "gemini":
		g, err := gemini.NewAppraiser(ctx, cfg.LLM)
		if err != nil {
			log.Fatalf("❌ AI 初始化失败: %v", err)
		}
		defer g.Close()
		appraiser = g
	default:
		o, err := openrouter.NewAppraiser(cfg.LLM)
		if err != nil {
			log.Fatalf("❌ AI 初始化失败: %v", err)
		}
		appraiser = o
	}

	// 3. 只分析前 limit 个项目，节省 API 调用
	if *limit < len(repos) {
		repos = repos[:*limit]
	}
	fmt.Printf("🧠 对前%d个项目进行LLM分析:\n", len(repos))

	var analyses []*domain.Analysis
	for i, repo := range repos {
		fmt.Printf("  分析项目 #%d: %s\n", i+1, repo.Name)
		analysis, err := appraiser.Appraise(ctx, repo)
		if err != nil {
			log.Printf("    ⚠️ 分析失败: %v", err)
			continue
		}
		fmt.Printf("    分析结果:\n%s\n\n", analysis.Summary)
		analyses = append(analyses, analysis)
	}

	// 4. 排版落盘，确认报告产物没问题（不发送邮件）
	assembler := report.NewAssembler(cfg.Report)
	path, err := assembler.Assemble(&domain.Report{
		Title:       "GitHub优质项目分析报告（调试）",
		GeneratedAt: time.Now(),
		Sections:    analyses,
	})
	if err != nil {
		log.Fatalf("❌ 报告生成失败: %v", err)
	}
	fmt.Printf("📄 报告已保存：%s\n", path)
}
