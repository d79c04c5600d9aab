package ml

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelHistory_RecordAndLimit(t *testing.T) {
	h := NewModelHistory(3)

	_, ok := h.Current()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		h.Record(ModelVersion{Version: fmt.Sprintf("v%d", i), Source: SourceTrained})
	}

	versions := h.List()
	require.Len(t, versions, 3)
	assert.Equal(t, "v4", versions[0].Version)
	assert.True(t, versions[0].IsActive)
	assert.False(t, versions[1].IsActive)
	assert.Equal(t, "v2", versions[2].Version)

	cur, ok := h.Current()
	require.True(t, ok)
	assert.Equal(t, "v4", cur.Version)

	h.Deactivate()
	_, ok = h.Current()
	assert.False(t, ok)
}

func TestModelHistory_DefaultLimit(t *testing.T) {
	h := NewModelHistory(0)
	for i := 0; i < DefaultHistoryLimit+5; i++ {
		h.Record(ModelVersion{Version: fmt.Sprint(i)})
	}
	assert.Len(t, h.List(), DefaultHistoryLimit)
}
