package port

import (
	"context"

	"github-report-mailer/internal/domain"
)

// Scouter (侦察兵): 负责调用 GitHub Search API 发现候选项目
// 返回的列表已经按 ID 去重，顺序就是报告里的章节顺序
type Scouter interface {
	Scout(ctx context.Context) ([]*domain.Repo, error)
}

// Appraiser (鉴定师): 负责调用 LLM 对单个项目生成总结
// 输入一个候选项目，输出带六个固定小节的分析文本
type Appraiser interface {
	Appraise(ctx context.Context, repo *domain.Repo) (*domain.Analysis, error)
}

// Assembler (排版师): 负责把分析结果渲染成报告文件
// 返回写盘后的文件完整路径
type Assembler interface {
	Assemble(report *domain.Report) (string, error)
}

// Notifier (信使): 负责把报告文件作为附件发给收件人
type Notifier interface {
	Notify(ctx context.Context, attachmentPath string) error
}
