package framework

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 函数链按序执行
func TestPreProcessorRunsInOrder(t *testing.T) {
	var order []int

	pre := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { order = append(order, 1); return nil },
		func(ctx context.Context) error { order = append(order, 2); return nil },
		func(ctx context.Context) error { order = append(order, 3); return nil },
	})

	err := pre.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

// 任一函数失败立即停止，后续不执行
func TestPreProcessorStopsOnError(t *testing.T) {
	var order []int
	boom := fmt.Errorf("boom")

	pre := NewPreProcessor([]ProcessorFunc{
		func(ctx context.Context) error { order = append(order, 1); return nil },
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error { order = append(order, 3); return nil },
	})

	err := pre.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, order)
}

// 空链不报错
func TestPreProcessorEmpty(t *testing.T) {
	pre := NewPreProcessor(nil)
	assert.NoError(t, pre.Run(context.Background()))
}
