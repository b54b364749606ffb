package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSortsInGenerationOrder(t *testing.T) {
	prev := Generate()
	for i := 0; i < 5000; i++ {
		id := Generate()
		require.Greater(t, id, prev, "ids must sort lexically in generation order")
		prev = id
	}
}

func TestSetNodeIDOutOfRangeFallsBack(t *testing.T) {
	defer SetNodeID(1)
	SetNodeID(maxNode + 1)
	require.EqualValues(t, 1, def.nodeID)
	SetNodeID(7)
	require.EqualValues(t, 7, def.nodeID)
}
