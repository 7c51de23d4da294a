package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(ErrCodeRequest, "GitHub API 调用失败", cause)

	assert.Contains(t, err.Error(), ErrCodeRequest)
	assert.Contains(t, err.Error(), "GitHub API 调用失败")
	assert.ErrorIs(t, err, cause)

	bare := NewError(ErrCodeModel, "模型返回内容为空")
	assert.Equal(t, "[MODEL_ERROR] 模型返回内容为空", bare.Error())
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "直接的 AppError",
			err:      NewError(ErrCodeAuth, "凭证被拒绝"),
			expected: ErrCodeAuth,
		},
		{
			name:     "包装在错误链里的 AppError",
			err:      fmt.Errorf("外层: %w", NewError(ErrCodeDelivery, "邮件发送失败")),
			expected: ErrCodeDelivery,
		},
		{
			name:     "普通错误",
			err:      errors.New("something"),
			expected: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CodeOf(tt.err))
		})
	}
}
