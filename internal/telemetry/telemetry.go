// Package telemetry exports map view instrumentation to Prometheus.
package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Garsondee/mapview/internal/mapview"
)

const namespace = "mapview"

// Observer implements mapview.Observer with Prometheus collectors.
type Observer struct {
	rebuilds        prometheus.Counter
	rebuildDuration prometheus.Histogram
	visibleTiles    *prometheus.GaugeVec
	creatures       prometheus.Gauge
	culled          prometheus.Counter
	floors          prometheus.Gauge
	rejected        *prometheus.CounterVec
	frameDuration   prometheus.Histogram
}

var _ mapview.Observer = (*Observer)(nil)

// NewObserver creates the collectors and registers them with reg.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		rebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Visibility passes run.",
		}),
		rebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Time spent in one visibility pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		visibleTiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_tiles",
			Help:      "Tiles kept by the last visibility pass, by draw list.",
		}, []string{"list"}),
		creatures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_creatures",
			Help:      "Creatures in view after the last visibility pass.",
		}),
		culled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "culled_tiles_total",
			Help:      "Tiles dropped because floors above hide them.",
		}),
		floors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_floors",
			Help:      "Floors between the first and last visible floor.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geometry_rejected_total",
			Help:      "Geometry changes refused, by reason.",
		}, []string{"reason"}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent drawing one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
	}
	reg.MustRegister(o.rebuilds, o.rebuildDuration, o.visibleTiles, o.creatures,
		o.culled, o.floors, o.rejected, o.frameDuration)
	return o
}

func (o *Observer) ObserveRebuild(s mapview.RebuildStats) {
	o.rebuilds.Inc()
	o.rebuildDuration.Observe(s.Duration.Seconds())
	o.visibleTiles.WithLabelValues("grounds").Set(float64(s.Grounds))
	o.visibleTiles.WithLabelValues("borders").Set(float64(s.Borders))
	o.visibleTiles.WithLabelValues("bottom_tops").Set(float64(s.BottomTops))
	o.creatures.Set(float64(s.Creatures))
	o.culled.Add(float64(s.Culled))
	o.floors.Set(float64(s.LastFloor - s.FirstFloor + 1))
}

func (o *Observer) ObserveGeometryRejected(reason string) {
	o.rejected.WithLabelValues(reason).Inc()
}

// ObserveFrame records how long one Draw call took.
func (o *Observer) ObserveFrame(d time.Duration) {
	o.frameDuration.Observe(d.Seconds())
}

// Serve exposes g on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	log.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
