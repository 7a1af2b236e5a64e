package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersInMemory(t *testing.T) {
	require.NoError(t, InitMetrics(""))
	t.Cleanup(func() { _ = Close() })

	Incr(ProductCreate)
	Incr(ProductCreate)
	Incr(AdminLoginFailure)

	summary, err := Summary(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, float64(2), summary[ProductCreate])
	assert.Equal(t, float64(1), summary[AdminLoginFailure])
	assert.Equal(t, float64(0), summary[ProductDelete])
}

func TestNoopBeforeInit(t *testing.T) {
	require.NoError(t, Close())
	Incr(ProductDelete)

	v, err := Sum(ProductDelete, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Zero(t, v)
}
