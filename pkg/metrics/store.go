package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics tracks cart activity and catalog event delivery.
type StoreMetrics struct {
	cartEvents      *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	cartEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_events_total",
		Help: "Cart mutations by action.",
	}, []string{"action"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_events_published_total",
		Help: "Catalog change events published to local subscribers.",
	}, []string{"type"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_events_dropped_total",
		Help: "Catalog change events dropped for slow subscribers.",
	}, []string{"type"})
	reg.MustRegister(cartEvents, published, dropped)
	return &StoreMetrics{
		cartEvents:      cartEvents,
		eventsPublished: published,
		eventsDropped:   dropped,
	}
}

// CartEvent counts a cart mutation (add, update, remove, checkout).
func (s *StoreMetrics) CartEvent(action string) {
	if s == nil || s.cartEvents == nil {
		return
	}
	s.cartEvents.WithLabelValues(normalizeLabel(action)).Inc()
}

func (s *StoreMetrics) EventPublished(eventType string) {
	if s == nil || s.eventsPublished == nil {
		return
	}
	s.eventsPublished.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func (s *StoreMetrics) EventDropped(eventType string) {
	if s == nil || s.eventsDropped == nil {
		return
	}
	s.eventsDropped.WithLabelValues(normalizeLabel(eventType)).Inc()
}
