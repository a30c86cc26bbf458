package metrics

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCollectorPublishesPoolStats(t *testing.T) {
	var calls atomic.Int32
	sample := func() PoolSnapshot {
		calls.Add(1)
		return PoolSnapshot{Total: 6, Idle: 4, Acquired: 2, Max: 10, Acquires: 99}
	}

	c := NewCollector(sample, time.Hour, zap.NewNop())
	c.Start()
	c.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 6.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("total")))
	assert.Equal(t, 4.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("idle")))
	assert.Equal(t, 2.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("acquired")))
	assert.Equal(t, 10.0, testutil.ToFloat64(DBPoolConnections.WithLabelValues("max")))
	assert.Equal(t, 99.0, testutil.ToFloat64(DBPoolAcquireTotal))
}

func TestCollectorTicks(t *testing.T) {
	var calls atomic.Int32
	c := NewCollector(func() PoolSnapshot {
		calls.Add(1)
		return PoolSnapshot{}
	}, 5*time.Millisecond, zap.NewNop())

	c.Start()
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	c.Stop()
}
