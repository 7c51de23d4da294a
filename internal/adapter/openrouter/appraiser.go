package openrouter

import (
	"context"
	"errors"
	"fmt"

	"github-report-mailer/internal/adapter/llm"
	"github-report-mailer/internal/common"
	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Appraiser 实现了 port.Appraiser 接口
// 走 OpenAI 兼容的 chat completions 协议，默认指向 OpenRouter
type Appraiser struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAppraiser 初始化 OpenRouter 客户端
func NewAppraiser(cfg config.LLM) (*Appraiser, error) {
	if cfg.APIKey == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "LLM_API_KEY 未设置")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.APIURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.APIURL))
	}

	return &Appraiser{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: 0.7,
	}, nil
}

// Appraise 对单个项目发送一次补全请求，接受返回的第一条补全
func (a *Appraiser) Appraise(ctx context.Context, repo *domain.Repo) (*domain.Analysis, error) {
	prompt := llm.BuildPrompt(repo)

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:        openai.Int(a.maxTokens),
		Temperature:      openai.Float(a.temperature),
		TopP:             openai.Float(0.9),
		FrequencyPenalty: openai.Float(0.3),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
			return nil, common.WrapError(common.ErrCodeAuth, "分析端点凭证被拒绝", err)
		}
		return nil, common.WrapError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败", repo.Name), err)
	}

	if len(resp.Choices) == 0 {
		return nil, common.NewError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败: 模型未返回任何补全", repo.Name))
	}

	summary := llm.CleanSummary(resp.Choices[0].Message.Content)
	if summary == "" {
		return nil, common.NewError(common.ErrCodeModel,
			fmt.Sprintf("分析项目 %s 失败: 模型返回内容为空", repo.Name))
	}

	return &domain.Analysis{Repo: repo, Summary: summary}, nil
}
