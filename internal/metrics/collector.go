package metrics

import (
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mandi_db_pool_connections",
			Help: "Database pool connections, by state",
		},
		[]string{"state"},
	)

	DBPoolAcquireTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mandi_db_pool_acquires",
			Help: "Cumulative successful connection acquires from the pool",
		},
	)
)

// PoolSnapshot is one sample of pool usage
type PoolSnapshot struct {
	Total    int32
	Idle     int32
	Acquired int32
	Max      int32
	Acquires int64
}

// PoolStats samples a pgx pool
func PoolStats(pool *pgxpool.Pool) func() PoolSnapshot {
	return func() PoolSnapshot {
		s := pool.Stat()
		return PoolSnapshot{
			Total:    s.TotalConns(),
			Idle:     s.IdleConns(),
			Acquired: s.AcquiredConns(),
			Max:      s.MaxConns(),
			Acquires: s.AcquireCount(),
		}
	}
}

// Collector periodically copies pool usage into the Prometheus gauges
type Collector struct {
	sample   func() PoolSnapshot
	interval time.Duration
	log      *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewCollector(sample func() PoolSnapshot, interval time.Duration, log *zap.Logger) *Collector {
	return &Collector{
		sample:   sample,
		interval: interval,
		log:      log.Named("metrics"),
		stopChan: make(chan struct{}),
	}
}

// Start collects once and then on every tick until Stop
func (c *Collector) Start() {
	c.log.Info("starting pool collector", zap.Duration("interval", c.interval))
	c.collect()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopChan:
				return
			}
		}
	}()
}

func (c *Collector) Stop() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Collector) collect() {
	s := c.sample()
	DBPoolConnections.WithLabelValues("total").Set(float64(s.Total))
	DBPoolConnections.WithLabelValues("idle").Set(float64(s.Idle))
	DBPoolConnections.WithLabelValues("acquired").Set(float64(s.Acquired))
	DBPoolConnections.WithLabelValues("max").Set(float64(s.Max))
	DBPoolAcquireTotal.Set(float64(s.Acquires))
}
