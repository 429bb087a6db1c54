package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the domain counters exported on /metrics. A nil *Metrics is a no-op.
type Metrics struct {
	bids     *prometheus.CounterVec
	auctions *prometheus.CounterVec
	orders   *prometheus.CounterVec
	social   *prometheus.CounterVec
}

// NewMetrics registers the domain counters with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		bids: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artmarket_bids_total",
				Help: "Bids submitted, by outcome.",
			},
			[]string{"result"},
		),
		auctions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artmarket_auctions_closed_total",
				Help: "Auctions settled by the closer, by outcome.",
			},
			[]string{"outcome"},
		),
		orders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artmarket_orders_total",
				Help: "Orders created, by source.",
			},
			[]string{"source"},
		),
		social: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artmarket_social_posts_total",
				Help: "Social announcements, by network and status.",
			},
			[]string{"network", "status"},
		),
	}
	for _, c := range []prometheus.Collector{m.bids, m.auctions, m.orders, m.social} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) bid(result string) {
	if m != nil {
		m.bids.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) auctionClosed(outcome string) {
	if m != nil {
		m.auctions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) orderCreated(source string) {
	if m != nil {
		m.orders.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) socialPost(network, status string) {
	if m != nil {
		m.social.WithLabelValues(network, status).Inc()
	}
}
