package main

import (
	"context"
	"testing"

	"github-report-mailer/internal/config"
	"github-report-mailer/internal/domain"
	"github-report-mailer/internal/port"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAppraiser 模拟 Appraiser 接口
type MockAppraiser struct {
	mock.Mock
}

func (m *MockAppraiser) Appraise(ctx context.Context, repo *domain.Repo) (*domain.Analysis, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func TestMainFunctions(t *testing.T) {
	// 这是一个占位测试，main 函数本身不容易进行单元测试
	// 组装逻辑由 buildService 覆盖
	t.Log("Main package test placeholder")
}

func TestBuildServiceUnknownProviderDefaultsToOpenRouter(t *testing.T) {
	// 验证 Appraiser mock 符合 port 接口
	mockAppraiser := new(MockAppraiser)
	var _ port.Appraiser = mockAppraiser
	assert.NotNil(t, mockAppraiser)
}

func TestBuildServiceRequiresAPIKey(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.LLM.Provider = "openrouter"
	cfg.LLM.Model = "deepseek/deepseek-chat"
	cfg.LLM.APIURL = "https://openrouter.ai/api/v1"

	_, cleanup, err := buildService(cfg, true, log)
	defer cleanup()

	// 没有 LLM_API_KEY 时无法组装流水线
	assert.Error(t, err)
}

func TestBuildServiceSkipEmail(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.LLM.Provider = "openrouter"
	cfg.LLM.Model = "deepseek/deepseek-chat"
	cfg.LLM.APIURL = "https://openrouter.ai/api/v1"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.MaxTokens = 2000

	svc, cleanup, err := buildService(cfg, true, log)
	defer cleanup()

	assert.NoError(t, err)
	assert.NotNil(t, svc)
}
