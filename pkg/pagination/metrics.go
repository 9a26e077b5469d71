package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_pages_fetched_total",
		Help: "Total number of list pages fetched by cursor iterators",
	})

	itemsMapped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_page_items_total",
		Help: "Total number of list items decoded and mapped by cursor iterators",
	})
)
