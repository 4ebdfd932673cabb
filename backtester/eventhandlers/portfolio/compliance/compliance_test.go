package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejection(t *testing.T) {
	t.Parallel()
	m := Manager{}
	assert.ErrorIs(t, m.AddRejection(nil), errEmptyRejection)
	assert.ErrorIs(t, m.AddRejection(&Rejection{Pair: "A/B"}), errEmptyRejection)

	require.NoError(t, m.AddRejection(&Rejection{Offset: 3, Pair: "A/B", Limit: LimitLeverage}))
	require.NoError(t, m.AddRejection(&Rejection{Offset: 3, Pair: "C/D", Limit: LimitConcurrent}))
	require.NoError(t, m.AddRejection(&Rejection{Offset: 5, Pair: "A/B", Limit: LimitLeverage}))
	assert.Error(t, m.AddRejection(&Rejection{Offset: 4, Pair: "A/B", Limit: LimitLeverage}))

	r := m.GetRejections()
	require.Len(t, r, 3)
	r[0].Pair = "changed"
	assert.Equal(t, "A/B", m.Rejections[0].Pair)
	assert.Equal(t, map[string]int{LimitLeverage: 2, LimitConcurrent: 1}, m.CountByLimit())
}
