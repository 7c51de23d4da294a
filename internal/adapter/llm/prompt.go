// Package llm 放置各个 Appraiser 实现共用的提示词和文本清洗逻辑
package llm

import (
	"fmt"
	"strings"

	"github-report-mailer/internal/domain"
)

// BuildPrompt 根据项目元数据构造分析提示词
// 要求模型按六个固定小节输出适合写进 Word 报告的中文纯文本
func BuildPrompt(repo *domain.Repo) string {
	return fmt.Sprintf(`请用中文分析以下GitHub项目，使用客观、专业的语言：

项目名称：%s
项目地址：%s
项目描述：%s
技术栈：%s
Stars数：%d
Fork数：%d
主题标签：%s

请严格按照以下六个小节输出分析结果，每个小节以小节名加中文冒号开头：

项目概述：一句话总结该项目，突出项目特点。
核心功能：列举项目提供的主要能力。
技术特点：说明项目的技术实现亮点。
应用场景：说明项目适合的使用场景。
解决的痛点：说明项目解决了哪些实际问题。
价值评估：对项目的学习价值和实用价值做出判断。

注意事项：
1. 使用清晰的段落划分
2. 避免使用markdown标记和特殊符号
3. 使用中文标点符号
4. 保持专业性的同时确保可读性
`,
		repo.Name,
		repo.URL,
		orDefault(repo.Description, "无描述"),
		orDefault(repo.Language, "未知"),
		repo.Stars,
		repo.Forks,
		strings.Join(repo.Topics, ", "))
}

// CleanSummary 清洗模型返回的原始文本，使其更适合报告展示
// 移除 Markdown 标记、统一中文标点、压缩多余空行
func CleanSummary(raw string) string {
	cleaned := strings.NewReplacer("#", "", "*", "", "`", "").Replace(raw)

	// 统一中文标点
	cleaned = strings.NewReplacer(":", "：", "!", "！", "?", "？").Replace(cleaned)

	// 压缩连续空行
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}

	// 移除行首尾空白
	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
