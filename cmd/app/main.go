package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-report-mailer/internal/adapter/email"
	"github-report-mailer/internal/adapter/gemini"
	ghadapter "github-report-mailer/internal/adapter/github"
	"github-report-mailer/internal/adapter/openrouter"
	"github-report-mailer/internal/adapter/report"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/logger"
	"github-report-mailer/internal/port"
	"github-report-mailer/internal/service"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// 整轮流水线的超时时间：搜索 + 串行逐项分析 + 发信
const runTimeout = 15 * time.Minute

func main() {
	// 1. 定义命令行参数
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	cronSpec := flag.String("cron", "", "cron 表达式（例如 \"0 9 * * *\"），空表示只执行一次")
	skipEmail := flag.Bool("skip-email", false, "只生成报告，不发送邮件")
	flag.Parse()

	// 2. 加载环境变量和配置（.env 是可选的）
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}

	appLog, err := logger.New(cfg.Log.Dir, cfg.Log.Level)
	if err != nil {
		log.Fatalf("❌ 日志初始化失败: %v", err)
	}
	appLog.Info("🚀 启动GitHub智能分析系统 | 版本: 1.0")

	// 3. 组装流水线
	svc, cleanup, err := buildService(cfg, *skipEmail, appLog)
	if err != nil {
		appLog.Fatalf("❌ 初始化失败: %v", err)
	}
	defer cleanup()

	// 4. 单次执行或按 cron 调度
	if *cronSpec != "" {
		runScheduled(svc, *cronSpec, appLog)
		return
	}
	if !executeRun(svc, appLog) {
		os.Exit(1)
	}
}

// buildService 按配置组装各个适配器和报告服务
func buildService(cfg *config.Config, skipEmail bool, appLog *logrus.Logger) (*service.ReportService, func(), error) {
	scouter := ghadapter.NewScouter(cfg.GitHub, appLog)
	assembler := report.NewAssembler(cfg.Report)

	cleanup := func() {}
	var appraiser port.Appraiser
	switch cfg.LLM.Provider {
	case "gemini":
		g, err := gemini.NewAppraiser(context.Background(), cfg.LLM)
		if err != nil {
			return nil, cleanup, err
		}
		appraiser = g
		cleanup = func() { _ = g.Close() }
	default:
		o, err := openrouter.NewAppraiser(cfg.LLM)
		if err != nil {
			return nil, cleanup, err
		}
		appraiser = o
	}

	var notifier port.Notifier
	if skipEmail {
		appLog.Warn("⚠️ 已启用 -skip-email，本次只生成报告不发送邮件")
	} else {
		notifier = email.NewNotifier(cfg.Email, appLog)
	}

	svc := service.NewReportService(scouter, appraiser, assembler, notifier,
		cfg.Email.SendEmptyReport, appLog)
	return svc, cleanup, nil
}

// executeRun 执行一轮流水线，返回是否成功
func executeRun(svc *service.ReportService, appLog *logrus.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := svc.ExecuteRun(ctx)
	if err != nil {
		appLog.Errorf("💥 运行失败 | 阶段: %s | 错误: %v", result.State, err)
		if result.ReportPath != "" {
			appLog.Infof("📄 报告文件仍保留在: %s", result.ReportPath)
		}
		return false
	}
	return true
}

// runScheduled 按 cron 表达式定时执行，收到 SIGINT/SIGTERM 后优雅退出
func runScheduled(svc *service.ReportService, spec string, appLog *logrus.Logger) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { executeRun(svc, appLog) }); err != nil {
		appLog.Fatalf("❌ cron 表达式无效: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	appLog.Infof("⏰ 定时执行模式已启动 | 调度: %s", spec)
	fmt.Println("按下 Ctrl+C 可以优雅停止程序")

	// 启动时立即执行一次，不必等到第一个触发点
	executeRun(svc, appLog)

	c.Start()
	<-sigChan
	appLog.Info("👋 收到停止信号，正在退出...")

	// 等待正在执行的任务结束
	<-c.Stop().Done()
}
