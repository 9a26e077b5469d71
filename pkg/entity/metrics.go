package entity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var resolutions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rbx_reference_resolutions_total",
		Help: "Total number of embedded references resolved, by parent kind and branch",
	},
	[]string{"parent", "mode"}, // mode: "partial", "fetch"
)
