// internal/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypePredicates(t *testing.T) {
	cases := []struct {
		err       error
		predicate func(error) bool
	}{
		{NewConfigurationError("m", nil), IsConfigurationError},
		{NewTransportFailure("m", nil), IsTransportFailure},
		{NewMalformedResponse("m", nil), IsMalformedResponse},
		{NewNoImageProduced("m", nil), IsNoImageProduced},
		{NewInvalidProjectFile("m", nil), IsInvalidProjectFile},
		{NewValidationError("m", nil), IsValidationError},
		{NewNotFoundError("m", nil), IsNotFoundError},
		{NewConflictError("m", nil), IsConflictError},
	}

	for _, tc := range cases {
		assert.True(t, tc.predicate(tc.err))
	}

	// 类型之间互不混淆
	assert.False(t, IsTransportFailure(NewConfigurationError("m", nil)))
	assert.False(t, IsConflictError(errors.New("plain")))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewTransportFailure("请求失败", errors.New("connection reset"))
	wrapped := fmt.Errorf("生成角色: %w", inner)

	assert.True(t, IsTransportFailure(wrapped))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := NewTransportFailure("请求失败", errors.New("connection reset"))

	assert.Contains(t, err.Error(), "请求失败")
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "TRANSPORT_FAILURE", err.Code)
}

func TestWrapErrorPreservesExistingType(t *testing.T) {
	inner := NewConflictError("已在进行", nil)

	wrapped := WrapError(inner, "续写场景", ErrorTypeValidation)

	require.Error(t, wrapped)
	// 已是AppError时保留原类型，只追加消息
	assert.True(t, IsConflictError(wrapped))
	assert.Contains(t, wrapped.Error(), "续写场景")
}

func TestWrapErrorNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, "无", ErrorTypeValidation))
}
