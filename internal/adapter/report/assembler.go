package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github-report-mailer/internal/common"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"

	"github.com/yuin/goldmark"
)

// 报告为空时写入的显式标记，保证空结果也能产出确定性的文档
const emptyMarker = "本期未发现符合条件的项目。"

// Assembler 实现了 port.Assembler 接口
// 先把分析结果渲染成 Markdown，再用 goldmark 转成 HTML，
// 最后以 .doc 扩展名落盘 —— Word 可以直接打开 HTML 文档
type Assembler struct {
	outputDir string
}

// NewAssembler 创建报告排版器
func NewAssembler(cfg config.Report) *Assembler {
	return &Assembler{outputDir: cfg.OutputDir}
}

// Assemble 渲染报告并写盘，返回文件完整路径
// 相同的输入渲染结果完全一致（章节数量和顺序都由输入决定）
func (a *Assembler) Assemble(rep *domain.Report) (string, error) {
	html, err := render(rep)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return "", common.WrapError(common.ErrCodeInternal, "创建报告目录失败", err)
	}

	name := fmt.Sprintf("GitHub项目分析报告_%s.doc", rep.GeneratedAt.Format("200601021504"))
	path := filepath.Join(a.outputDir, name)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", common.WrapError(common.ErrCodeInternal, "写入报告文件失败", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// render 生成完整的 Word 兼容 HTML 文档
func render(rep *domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(renderMarkdown(rep)), &buf); err != nil {
		return "", common.WrapError(common.ErrCodeInternal, "渲染报告正文失败", err)
	}

	var sb strings.Builder
	sb.WriteString("<html xmlns:o=\"urn:schemas-microsoft-com:office:office\" ")
	sb.WriteString("xmlns:w=\"urn:schemas-microsoft-com:office:word\">\n")
	sb.WriteString("<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>" + rep.Title + "</title>\n")
	sb.WriteString("<style>\n")
	sb.WriteString("body { font-family: \"微软雅黑\", sans-serif; font-size: 12pt; margin: 1in; }\n")
	sb.WriteString("h1 { font-size: 20pt; text-align: center; }\n")
	sb.WriteString("h2 { font-size: 16pt; }\n")
	sb.WriteString("hr { color: #808080; }\n")
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.Write(buf.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

// renderMarkdown 按输入顺序渲染章节，跳过没有正文的条目
func renderMarkdown(rep *domain.Report) string {
	var sb strings.Builder
	sb.WriteString("# " + rep.Title + "\n\n")
	sb.WriteString("生成时间：" + rep.GeneratedAt.Format("2006-01-02 15:04") + "\n\n")

	count := 0
	for _, section := range rep.Sections {
		if !section.HasSummary() {
			continue
		}
		writeSection(&sb, section)
		count++
	}

	if count == 0 {
		sb.WriteString(emptyMarker + "\n")
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, section *domain.Analysis) {
	repo := section.Repo

	sb.WriteString("## " + repo.Name + "\n\n")
	sb.WriteString(fmt.Sprintf("项目地址：[%s](%s)  \n", repo.URL, repo.URL))
	sb.WriteString(fmt.Sprintf("Stars数量：%d  \n", repo.Stars))
	sb.WriteString(fmt.Sprintf("Fork数量：%d  \n", repo.Forks))
	sb.WriteString("主要语言：" + orDefault(repo.Language, "未知") + "  \n")
	if repo.QualityScore > 0 {
		sb.WriteString(fmt.Sprintf("质量评分：%.2f  \n", repo.QualityScore))
	}
	sb.WriteString("项目描述：" + orDefault(repo.Description, "无描述") + "\n\n")

	// 分析正文已经是清洗过的纯文本，按段落原样写入
	for _, para := range strings.Split(section.Summary, "\n") {
		sb.WriteString(para + "\n\n")
	}

	sb.WriteString("---\n\n")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
