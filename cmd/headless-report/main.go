package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Garsondee/mapview/internal/config"
	"github.com/Garsondee/mapview/internal/geom"
	"github.com/Garsondee/mapview/internal/headless"
)

type runStats struct {
	runIndex int
	seed     int64
	report   headless.Report

	firstMoveFrame   int
	firstFloorChange int
	firstRejectFrame int

	cameraMoves  int
	lightChanges int
	floorsSeen   map[int]struct{}
}

func main() {
	var runs int
	var frames int
	var seedBase int64
	var seedStep int64
	var cfgPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless sessions")
	flag.IntVar(&frames, "frames", 600, "frames per session")
	flag.Int64Var(&seedBase, "seed-base", 42, "world seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&cfgPath, "config", "", "YAML config applied to every session")
	flag.BoolVar(&verbose, "verbose", false, "print the frame log of each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if frames <= 0 {
		fmt.Println("error: -frames must be > 0")
		return
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Headless Map View Report ===\n")
	fmt.Printf("runs=%d frames=%d seed_base=%d seed_step=%d view=%dx%d shader=%s\n\n",
		runs, frames, seedBase, seedStep, cfg.View.VisibleWidth, cfg.View.VisibleHeight, cfg.Shader.Name)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats, log, err := runSession(i+1, seed, frames, cfg, verbose)
		if err != nil {
			fmt.Printf("error: run %d (seed=%d): %v\n", i+1, seed, err)
			os.Exit(1)
		}
		all = append(all, stats)
		printRun(stats)
		if verbose {
			fmt.Print(log.Format())
			fmt.Println()
		}
	}
	printAggregate(all)
}

func runSession(runIndex int, seed int64, frames int, cfg *config.Config, verbose bool) (runStats, *headless.FrameLog, error) {
	opts := headless.FromConfig(cfg)
	opts = append(opts,
		headless.WithSeed(seed),
		headless.WithVerbose(verbose),
		headless.WithDayCycle(frames/4),
		headless.At(frames/2, func(s *headless.Session) { s.Shoot(4, 10) }),
	)
	s, err := headless.NewSession(opts...)
	if err != nil {
		return runStats{}, nil, err
	}
	start := s.View.CameraPosition()
	rep := s.Run(frames)
	return collect(runIndex, seed, start, rep, s.Log), s.Log, nil
}

func collect(runIndex int, seed int64, start geom.Position, rep headless.Report, log *headless.FrameLog) runStats {
	entries := log.Entries()
	rs := runStats{
		runIndex:         runIndex,
		seed:             seed,
		report:           rep,
		firstMoveFrame:   -1,
		firstFloorChange: -1,
		firstRejectFrame: firstFrame(entries, "geometry", "rejected", ""),
		cameraMoves:      log.CountCategory("camera", "move"),
		lightChanges:     log.CountCategory("light", "global"),
		floorsSeen:       map[int]struct{}{},
	}
	for _, e := range entries {
		if e.Category != "camera" || e.Key != "move" {
			continue
		}
		z := int(e.NumVal)
		rs.floorsSeen[z] = struct{}{}
		if rs.firstMoveFrame < 0 && e.Value != start.String() {
			rs.firstMoveFrame = e.Frame
		}
		if rs.firstFloorChange < 0 && z != start.Z {
			rs.firstFloorChange = e.Frame
		}
	}
	return rs
}

func firstFrame(entries []headless.FrameLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Frame
		}
	}
	return -1
}

// assessRun flags sessions whose output suggests the viewer misbehaved.
func assessRun(rs runStats) (bool, string) {
	var problems []string
	r := rs.report
	if r.Frames > 0 && r.Rebuilds == 0 {
		problems = append(problems, "no_rebuilds")
	}
	if r.Frames > 0 && r.Commands == 0 {
		problems = append(problems, "nothing_drawn")
	}
	if r.Rejected > 0 {
		problems = append(problems, fmt.Sprintf("geometry_rejected=%d", r.Rejected))
	}
	if moves := r.Steps + r.Blocked; moves >= 10 && r.Blocked*2 > moves {
		problems = append(problems, fmt.Sprintf("player_stuck=%d/%d", r.Blocked, moves))
	}
	if len(problems) == 0 {
		return true, "ok"
	}
	return false, strings.Join(problems, ",")
}

func printRun(rs runStats) {
	r := rs.report
	ok, reason := assessRun(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("markers: first_move=%d first_floor_change=%d first_reject=%d\n",
		rs.firstMoveFrame, rs.firstFloorChange, rs.firstRejectFrame)
	fmt.Printf("visibility: rebuilds=%d avg_grounds=%.1f culled=%d max_floors=%d max_creatures=%d\n",
		r.Rebuilds, r.AvgGrounds(), r.Culled, r.MaxFloors, r.MaxCreatures)
	fmt.Printf("drawing: frames=%d commands=%d per_frame=%.1f min_shader_opacity=%.2f light_changes=%d\n",
		r.Frames, r.Commands, r.CommandsPerFrame(), r.MinOpacity, rs.lightChanges)
	fmt.Printf("player: steps=%d blocked=%d camera_moves=%d floors=%s final=%s\n",
		r.Steps, r.Blocked, rs.cameraMoves, joinFloors(rs.floorsSeen), r.FinalCamera)
	fmt.Printf("verdict: ok=%v reason=%s\n\n", ok, reason)
}

func printAggregate(all []runStats) {
	totalRebuilds := 0
	totalCommands := 0
	totalFrames := 0
	totalSteps := 0
	totalBlocked := 0
	totalRejected := 0
	healthy := 0

	moveFrames := make([]int, 0, len(all))
	floorFrames := make([]int, 0, len(all))
	floorsGlobal := map[int]struct{}{}
	var grounds float64

	for _, rs := range all {
		r := rs.report
		totalRebuilds += r.Rebuilds
		totalCommands += r.Commands
		totalFrames += r.Frames
		totalSteps += r.Steps
		totalBlocked += r.Blocked
		totalRejected += r.Rejected
		grounds += r.AvgGrounds()
		if rs.firstMoveFrame >= 0 {
			moveFrames = append(moveFrames, rs.firstMoveFrame)
		}
		if rs.firstFloorChange >= 0 {
			floorFrames = append(floorFrames, rs.firstFloorChange)
		}
		for z := range rs.floorsSeen {
			floorsGlobal[z] = struct{}{}
		}
		if ok, _ := assessRun(rs); ok {
			healthy++
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d healthy=%d\n", n, healthy)
	fmt.Printf("avg_per_run: rebuilds=%.1f steps=%.1f blocked=%.1f rejected=%.1f\n",
		avg(totalRebuilds, n), avg(totalSteps, n), avg(totalBlocked, n), avg(totalRejected, n))
	fmt.Printf("avg_commands_per_frame=%.1f avg_grounds_per_rebuild=%.1f\n",
		avg(totalCommands, totalFrames), avgFloat(grounds, n))
	fmt.Printf("marker_avg_frames: first_move=%s first_floor_change=%s\n",
		avgFrameString(moveFrames), avgFrameString(floorFrames))
	fmt.Printf("floors_visited=%s\n", joinFloors(floorsGlobal))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgFloat(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

func avgFrameString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinFloors(s map[int]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	floors := make([]string, 0, len(s))
	for z := 0; z <= geom.MaxZ; z++ {
		if _, ok := s[z]; ok {
			floors = append(floors, fmt.Sprint(z))
		}
	}
	return strings.Join(floors, ",")
}
