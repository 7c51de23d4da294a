package service

import (
	"context"
	"time"

	"github-report-mailer/internal/common"
	"github-report-mailer/internal/domain"
	"github-report-mailer/internal/port"

	"github.com/sirupsen/logrus"
)

// RunState 描述一轮运行当前所处的阶段
type RunState string

const (
	StateIdle       RunState = "idle"
	StateSearching  RunState = "searching"
	StateAnalyzing  RunState = "analyzing"
	StateAssembling RunState = "assembling"
	StateSending    RunState = "sending"
	StateDone       RunState = "done"
	StateFailed     RunState = "failed"
)

const reportTitle = "GitHub优质项目分析报告"

// RunResult 汇总一轮运行的结果
type RunResult struct {
	State      RunState
	ReportPath string
	Candidates int // 搜索命中的候选数
	Analyzed   int // 成功拿到分析的数量
	Skipped    int // 分析失败被跳过的数量
	EmailSent  bool
}

// ReportService 驱动一轮完整的流水线：
// 搜索 -> 逐项分析 -> 排版 -> 发送
type ReportService struct {
	scouter   port.Scouter
	appraiser port.Appraiser
	assembler port.Assembler
	notifier  port.Notifier

	// 空报告策略：没有任何章节时是否仍然发送
	sendEmptyReport bool

	log     *logrus.Logger
	nowFunc func() time.Time
}

// NewReportService 创建报告服务
func NewReportService(
	scouter port.Scouter,
	appraiser port.Appraiser,
	assembler port.Assembler,
	notifier port.Notifier,
	sendEmptyReport bool,
	log *logrus.Logger,
) *ReportService {
	return &ReportService{
		scouter:         scouter,
		appraiser:       appraiser,
		assembler:       assembler,
		notifier:        notifier,
		sendEmptyReport: sendEmptyReport,
		log:             log,
		nowFunc:         time.Now, // 便于测试注入当前时间
	}
}

// ExecuteRun 执行一轮流水线
// 单项分析失败只跳过该项目；搜索、排版、发送阶段的错误终止整轮运行，
// 此时返回的 RunResult.State 是 failed，已落盘的报告保留在磁盘上
func (s *ReportService) ExecuteRun(ctx context.Context) (*RunResult, error) {
	result := &RunResult{State: StateIdle}

	// 1. 搜索候选项目
	result.State = StateSearching
	s.log.Info("🚀 开始本轮运行 | 正在搜索候选项目...")
	repos, err := s.scouter.Scout(ctx)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.Candidates = len(repos)
	s.log.Infof("✅ 搜索完成 | 共 %d 个候选项目", len(repos))

	// 2. 逐项分析（严格串行）
	result.State = StateAnalyzing
	analyses := make([]*domain.Analysis, 0, len(repos))
	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			result.State = StateFailed
			return result, common.WrapError(common.ErrCodeInternal, "运行被取消", err)
		}

		s.log.Infof("🔍 开始分析 %d/%d | 项目：%s", i+1, len(repos), repo.Name)
		analysis, err := s.appraiser.Appraise(ctx, repo)
		if err != nil {
			// 凭证被拒绝时继续跑剩下的项目只会全部失败，直接终止
			if common.CodeOf(err) == common.ErrCodeAuth {
				result.State = StateFailed
				return result, err
			}
			s.log.Warnf("⚠️ 分析失败，跳过该项目 | 项目：%s | 错误: %v", repo.Name, err)
			result.Skipped++
			continue
		}
		analyses = append(analyses, analysis)
		s.log.Infof("✅ 完成分析 %d/%d | 项目：%s", i+1, len(repos), repo.Name)
	}
	result.Analyzed = len(analyses)

	// 3. 排版落盘（空结果也产出带标记的文档）
	result.State = StateAssembling
	report := &domain.Report{
		Title:       reportTitle,
		GeneratedAt: s.nowFunc(),
		Sections:    analyses,
	}
	path, err := s.assembler.Assemble(report)
	if err != nil {
		result.State = StateFailed
		return result, err
	}
	result.ReportPath = path
	s.log.Infof("📄 报告已保存：%s", path)

	// 4. 发送邮件
	if len(analyses) == 0 && !s.sendEmptyReport {
		s.log.Info("📭 本轮没有分析结果，按配置跳过邮件发送")
		result.State = StateDone
		return result, nil
	}
	if s.notifier == nil {
		s.log.Warn("⚠️ 未配置通知通道，跳过邮件发送")
		result.State = StateDone
		return result, nil
	}

	result.State = StateSending
	if err := s.notifier.Notify(ctx, path); err != nil {
		// 报告文件保留在磁盘上，便于手动补发
		result.State = StateFailed
		return result, err
	}
	result.EmailSent = true

	result.State = StateDone
	s.log.Infof("🎉 本轮运行完成 | 候选 %d | 分析成功 %d | 跳过 %d",
		result.Candidates, result.Analyzed, result.Skipped)
	return result, nil
}
