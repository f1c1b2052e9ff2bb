package metrics

import "github.com/prometheus/client_golang/prometheus"

// EngineMetrics tracks the points engine hot paths: purchases, awards, and
// badge unlocks.
type EngineMetrics struct {
	purchases     *prometheus.CounterVec
	pointsAwarded *prometheus.CounterVec
	badgesEarned  prometheus.Counter
	levelUps      prometheus.Counter
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	purchases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_purchases_total",
		Help:      "Store purchases by outcome.",
	}, []string{"outcome"})
	pointsAwarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_awarded_total",
		Help:      "Points credited by award action.",
	}, []string{"action"})
	badgesEarned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "badges_earned_total",
		Help:      "Badges unlocked across all members.",
	})
	levelUps := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "level_ups_total",
		Help:      "Level transitions across all members.",
	})
	reg.MustRegister(purchases, pointsAwarded, badgesEarned, levelUps)
	return &EngineMetrics{
		purchases:     purchases,
		pointsAwarded: pointsAwarded,
		badgesEarned:  badgesEarned,
		levelUps:      levelUps,
	}
}

// IncPurchase increments the purchase counter for the given outcome label.
func (e *EngineMetrics) IncPurchase(outcome string) {
	if e == nil || e.purchases == nil {
		return
	}
	e.purchases.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddPointsAwarded accumulates credited points under the action label.
func (e *EngineMetrics) AddPointsAwarded(action string, points int) {
	if e == nil || e.pointsAwarded == nil {
		return
	}
	e.pointsAwarded.WithLabelValues(normalizeLabel(action)).Add(float64(points))
}

// IncBadgeEarned increments the badge unlock counter.
func (e *EngineMetrics) IncBadgeEarned() {
	if e == nil || e.badgesEarned == nil {
		return
	}
	e.badgesEarned.Inc()
}

// IncLevelUp increments the level transition counter.
func (e *EngineMetrics) IncLevelUp() {
	if e == nil || e.levelUps == nil {
		return
	}
	e.levelUps.Inc()
}
