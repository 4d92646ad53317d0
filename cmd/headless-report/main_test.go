package main

import (
	"strings"
	"testing"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/headless"
)

func TestAssessRun_OK(t *testing.T) {
	rs := runStats{report: headless.Report{Frames: 100, Rebuilds: 12, Commands: 4000, Steps: 30, Blocked: 5}}
	ok, reason := assessRun(rs)
	if !ok || reason != "ok" {
		t.Fatalf("expected healthy run, got ok=%v reason=%s", ok, reason)
	}
}

func TestAssessRun_FlagsProblems(t *testing.T) {
	rs := runStats{report: headless.Report{Frames: 100, Rejected: 2, Steps: 3, Blocked: 9}}
	ok, reason := assessRun(rs)
	if ok {
		t.Fatal("expected unhealthy run")
	}
	for _, want := range []string{"no_rebuilds", "nothing_drawn", "geometry_rejected=2", "player_stuck=9/12"} {
		if !strings.Contains(reason, want) {
			t.Errorf("reason %q missing %q", reason, want)
		}
	}
}

func TestAssessRun_FewMovesNotStuck(t *testing.T) {
	rs := runStats{report: headless.Report{Frames: 10, Rebuilds: 1, Commands: 10, Blocked: 4}}
	if ok, reason := assessRun(rs); !ok {
		t.Fatalf("four bumps should not count as stuck, got %s", reason)
	}
}

func TestCollect_Markers(t *testing.T) {
	log := headless.NewFrameLog(false)
	start := geom.Pos(1000, 1000, 7)
	log.Add(0, "--", "camera", "move", start.String(), 7)
	log.Add(3, "--", "geometry", "rejected", "visible dimension must be odd", 0)
	log.Add(4, "--", "camera", "move", geom.Pos(1001, 1000, 7).String(), 7)
	log.Add(9, "--", "camera", "move", geom.Pos(1001, 1000, 8).String(), 8)
	log.Add(9, "--", "light", "global", "70/173", 70)

	rs := collect(1, 5, start, headless.Report{Frames: 10}, log)
	if rs.firstMoveFrame != 4 || rs.firstFloorChange != 9 || rs.firstRejectFrame != 3 {
		t.Fatalf("markers move=%d floor=%d reject=%d", rs.firstMoveFrame, rs.firstFloorChange, rs.firstRejectFrame)
	}
	if rs.cameraMoves != 3 || rs.lightChanges != 1 {
		t.Fatalf("counts moves=%d lights=%d", rs.cameraMoves, rs.lightChanges)
	}
	if got := joinFloors(rs.floorsSeen); got != "7,8" {
		t.Fatalf("floors = %s", got)
	}
}

func TestRunSession(t *testing.T) {
	rs, log, err := runSession(1, 7, 40, config.Default(), false)
	if err != nil {
		t.Fatal(err)
	}
	if rs.report.Frames != 40 || rs.report.Rebuilds == 0 {
		t.Fatalf("report %+v", rs.report)
	}
	if log.CountCategory("pool", "present") == 0 {
		t.Fatal("no pools presented")
	}
	if rs.lightChanges < 2 {
		t.Fatalf("day cycle every 10 frames should change the light, got %d", rs.lightChanges)
	}
}

func TestAvgHelpers(t *testing.T) {
	if avg(10, 0) != 0 || avg(10, 4) != 2.5 {
		t.Fatal("avg")
	}
	if avgFloat(3, 2) != 1.5 || avgFloat(3, 0) != 0 {
		t.Fatal("avgFloat")
	}
	if avgFrameString(nil) != "n/a" || avgFrameString([]int{1, 2}) != "1.5" {
		t.Fatal("avgFrameString")
	}
	if joinFloors(nil) != "none" {
		t.Fatal("joinFloors")
	}
}
