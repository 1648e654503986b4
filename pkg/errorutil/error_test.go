package errorutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 可重试标记在 fmt.Errorf %w 包装后仍能取回
func TestWrapPreservesRetryable(t *testing.T) {
	inner := Retriable("publish failed")
	wrapped := fmt.Errorf("processor[1] failed: %w", inner)

	e := Wrap(wrapped)
	require.NotNil(t, e)
	assert.True(t, e.Retryable)
	assert.Equal(t, "publish failed", e.Message)
}

// 普通错误默认不可重试
func TestWrapPlainError(t *testing.T) {
	e := Wrap(fmt.Errorf("bad payload"))
	require.NotNil(t, e)
	assert.False(t, e.Retryable)
	assert.Equal(t, 500, e.Code)
}

// nil 透传
func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.Nil(t, UnWrapResponse(nil))
}

// 构造函数的码值与标记
func TestConstructors(t *testing.T) {
	r := Retriable("temp")
	assert.True(t, r.Retryable)
	assert.Equal(t, 500, r.Code)

	n := NonRetriable("bad input")
	assert.False(t, n.Retryable)
	assert.Equal(t, 400, n.Code)

	d := NonRetriableWithDetails("bad input", "field vendor missing")
	assert.Equal(t, "field vendor missing", d.DevDetails)
	assert.Equal(t, "bad input", d.Error())
}
