package telemetry

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/mapview/internal/mapview"
)

func TestObserver_Rebuild(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)

	o.ObserveRebuild(mapview.RebuildStats{
		FirstFloor: 5,
		LastFloor:  7,
		Grounds:    120,
		Borders:    14,
		BottomTops: 30,
		Creatures:  3,
		Culled:     9,
		Duration:   2 * time.Millisecond,
	})
	o.ObserveRebuild(mapview.RebuildStats{FirstFloor: 7, LastFloor: 7, Grounds: 80, Culled: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(o.rebuilds))
	assert.Equal(t, 80.0, testutil.ToFloat64(o.visibleTiles.WithLabelValues("grounds")))
	assert.Equal(t, 0.0, testutil.ToFloat64(o.visibleTiles.WithLabelValues("borders")))
	assert.Equal(t, 10.0, testutil.ToFloat64(o.culled))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.floors))
	assert.Equal(t, 1, testutil.CollectAndCount(o.rebuildDuration))
}

func TestObserver_GeometryRejected(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())
	o.ObserveGeometryRejected("visible dimension must be odd")
	o.ObserveGeometryRejected("visible dimension must be odd")
	o.ObserveGeometryRejected("reached max zoom in")

	assert.Equal(t, 2.0, testutil.ToFloat64(o.rejected.WithLabelValues("visible dimension must be odd")))
	assert.Equal(t, 2, testutil.CollectAndCount(o.rejected))
}

func TestObserver_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg)
	o.ObserveRebuild(mapview.RebuildStats{Creatures: 4})
	o.ObserveFrame(3 * time.Millisecond)

	expected := `
# HELP mapview_visible_creatures Creatures in view after the last visibility pass.
# TYPE mapview_visible_creatures gauge
mapview_visible_creatures 4
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mapview_visible_creatures"))
}
