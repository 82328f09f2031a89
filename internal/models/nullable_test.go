package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		set    bool
		value  *int64
		clears bool
	}{
		{name: "omitted", body: `{}`},
		{name: "null", body: `{"category_id":null}`, set: true, clears: true},
		{name: "number", body: `{"category_id":7}`, set: true, value: func() *int64 { v := int64(7); return &v }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateExpenseRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.set, req.CategoryID.Set)
			assert.Equal(t, tt.value, req.CategoryID.Value)
			assert.Equal(t, tt.clears, req.CategoryID.Clears())
		})
	}

	var req UpdateExpenseRequest
	assert.Error(t, json.Unmarshal([]byte(`{"category_id":"food"}`), &req))
}
