package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var opsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rbindex_ops_total",
	Help: "Index operations, by operation and result",
}, []string{"op", "result"})

var keysGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rbindex_keys",
	Help: "Keys currently held by the index",
})

var unbalancedGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rbindex_unbalanced",
	Help: "1 when the last invariant check found the tree unbalanced",
})
