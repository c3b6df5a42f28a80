// Package metrics exposes the Prometheus instrumentation for the engine.
package metrics

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dao_mutations_total",
		Help: "Engine mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	treasuryBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dao_treasury_balance",
		Help: "Current treasury balance in the smallest asset unit.",
	})

	membersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dao_members_total",
		Help: "Number of registered members.",
	})

	proposalsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dao_proposals_total",
		Help: "Number of proposals ever created.",
	})
)

func ObserveMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mutationsTotal.WithLabelValues(operation, outcome).Inc()
}

func SetTreasuryBalance(balance *big.Int) {
	value, _ := new(big.Float).SetInt(balance).Float64()
	treasuryBalance.Set(value)
}

func SetMembers(count uint64) {
	membersTotal.Set(float64(count))
}

func SetProposals(count uint64) {
	proposalsTotal.Set(float64(count))
}

func Handler() http.Handler {
	return promhttp.Handler()
}
