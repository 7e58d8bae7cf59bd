package equiledger

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	MetricNameSpace = "equiledger"
)

var (
	totalIssued = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "total_issued",
			Help:      "cumulative issued supply, whole units",
		},
	)
	totalBurned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "total_burned",
			Help:      "cumulative burned supply, whole units",
		},
	)
	verifiedAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "verified_accounts",
			Help:      "verified accounts currently counted as active",
		},
	)
	inactiveAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "inactive_accounts",
			Help:      "accounts removed by the inactivity sweep",
		},
	)
	currentEra = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "current_era",
			Help:      "1 on the active era label, 0 otherwise",
		},
		[]string{"era"},
	)
	publishedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "published_events_total",
			Help:      "ledger events drained to kafka",
		},
	)
)

func init() {
	prometheus.MustRegister(
		totalIssued,
		totalBurned,
		verifiedAccounts,
		inactiveAccounts,
		currentEra,
		publishedEvents,
	)
}

func metricSupplyAmount(g prometheus.Gauge, amount *big.Int) {
	whole, _ := decimal.NewFromBigInt(amount, -18).Float64()
	g.Set(whole)
}
