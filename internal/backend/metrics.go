package backend

import "github.com/prometheus/client_golang/prometheus"

var (
	trainingItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hikepredict",
			Subsystem: "backend",
			Name:      "training_items",
			Help:      "Training items currently stored",
		},
	)

	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hikepredict",
			Subsystem: "backend",
			Name:      "predictions_total",
			Help:      "Predictions served, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(trainingItems, predictionsTotal)
}
