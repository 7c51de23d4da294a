package gemini

import (
	"context"
	"fmt"
	"strings"

	"github-report-mailer/internal/adapter/llm"
	"github-report-mailer/internal/common"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Appraiser 实现了 port.Appraiser 接口，走 Google Gemini
type Appraiser struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewAppraiser 初始化 Gemini 客户端
func NewAppraiser(ctx context.Context, cfg config.LLM) (*Appraiser, error) {
	if cfg.APIKey == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "LLM_API_KEY 未设置")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAuth, "Gemini 客户端初始化失败", err)
	}

	model := client.GenerativeModel(cfg.Model)
	maxTokens := int32(cfg.MaxTokens)
	model.MaxOutputTokens = &maxTokens

	return &Appraiser{
		client: client,
		model:  model,
	}, nil
}

// Appraise 对单个项目发送一次生成请求，拼接全部文本片段作为总结
func (a *Appraiser) Appraise(ctx context.Context, repo *domain.Repo) (*domain.Analysis, error) {
	prompt := llm.BuildPrompt(repo)

	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败", repo.Name), err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, common.NewError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败: 模型未返回任何内容", repo.Name))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	summary := llm.CleanSummary(sb.String())
	if summary == "" {
		return nil, common.NewError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败: 模型返回内容为空", repo.Name))
	}

	return &domain.Analysis{Repo: repo, Summary: summary}, nil
}

// Close 释放底层连接
func (a *Appraiser) Close() error {
	return a.client.Close()
}
