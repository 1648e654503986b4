package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macho715/HVDC-PJT-sub001/common/model"
)

// 回调消息解析
func TestParseMessage(t *testing.T) {
	c := &CallbackConsumer{}

	data := []byte(`{
		"request_id": "req-1",
		"batch_id": "1001",
		"vendor": "HITACHI",
		"status": "SUCCESS",
		"result": {
			"batch_id": "1001",
			"vendor": "HITACHI",
			"record_count": 2,
			"bucket_counts": {"1": 1, "2": 1},
			"records": []
		},
		"processed_at": 1717200000
	}`)

	callback, err := c.parseMessage(data)
	require.NoError(t, err)

	assert.Equal(t, "1001", callback.BatchID)
	assert.Equal(t, model.CallbackStatusSuccess, callback.Status)
	require.NotNil(t, callback.Result)
	assert.Equal(t, 2, callback.Result.RecordCount)
	assert.Equal(t, map[int]int{1: 1, 2: 1}, callback.Result.BucketCounts)
}

// 解析失败与必填校验
func TestParseMessageInvalid(t *testing.T) {
	c := &CallbackConsumer{}

	cases := []struct {
		name string
		data []byte
	}{
		{"非 JSON", []byte("not json")},
		{"status 缺失", []byte(`{"batch_id":"1001"}`)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.parseMessage(tc.data)
			assert.Error(t, err)
		})
	}
}

// 失败回调不要求 result
func TestParseMessageFailedCallback(t *testing.T) {
	c := &CallbackConsumer{}

	data := []byte(`{"request_id":"req-1","batch_id":"1001","status":"FAILED","error":"rule config invalid"}`)

	callback, err := c.parseMessage(data)
	require.NoError(t, err)
	assert.Equal(t, model.CallbackStatusFailed, callback.Status)
	assert.Nil(t, callback.Result)
	assert.Equal(t, "rule config invalid", callback.Error)
}
