package headless

import (
	"strings"
	"testing"
)

func TestFrameLog_FilterAndLookup(t *testing.T) {
	fl := NewFrameLog(false)
	fl.Add(0, "map", "pool", "present", "fills=3 textures=0 texts=0", 3)
	fl.Add(0, "map", "paint", "opacity", "1.00", 1)
	fl.Add(1, "map", "paint", "opacity", "0.50", 0.5)
	fl.Add(2, noPool, "camera", "move", "(1000, 1000, 7)", 7)
	fl.AddVerbose(2, "map", "draw", "fill", "ignored", 0)

	if n := len(fl.Entries()); n != 4 {
		t.Fatalf("expected 4 entries (verbose dropped), got %d", n)
	}
	if n := fl.CountCategory("paint", "opacity"); n != 2 {
		t.Fatalf("expected 2 opacity entries, got %d", n)
	}
	if n := len(fl.FilterPool("map")); n != 3 {
		t.Fatalf("expected 3 map pool entries, got %d", n)
	}
	last, ok := fl.LastOf("paint", "opacity")
	if !ok || last.NumVal != 0.5 {
		t.Fatalf("LastOf = %+v, %v; want the 0.50 entry", last, ok)
	}
	if _, ok := fl.LastOf("rebuild", ""); ok {
		t.Fatal("LastOf found an entry for a category never logged")
	}
	if !fl.HasEntry("camera", "", "1000, 1000") {
		t.Fatal("HasEntry missed the camera move")
	}
	if fl.HasEntry("camera", "move", "2000") {
		t.Fatal("HasEntry matched a value that was never logged")
	}
	if n := len(fl.FilterFrameRange(1, 2)); n != 2 {
		t.Fatalf("expected 2 entries in frames 1..2, got %d", n)
	}
}

func TestFrameLog_Verbose(t *testing.T) {
	fl := NewFrameLog(true)
	fl.AddVerbose(0, "text", "draw", "text", "10,20 hello", 0)
	if !fl.Verbose() || len(fl.Entries()) != 1 {
		t.Fatalf("verbose log should keep AddVerbose entries, got %d", len(fl.Entries()))
	}
}

func TestFrameLog_Format(t *testing.T) {
	fl := NewFrameLog(false)
	fl.Add(4, "map", "paint", "shader", "water", 0)
	fl.Add(9, noPool, "light", "draw", "shades=0 sources=2", 2)

	out := fl.Format()
	if !strings.HasPrefix(out, "[F=004] map ") {
		t.Fatalf("unexpected line format:\n%s", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected one line per entry:\n%s", out)
	}
	if got := fl.FormatRange(5, 10); !strings.Contains(got, "sources=2") || strings.Contains(got, "water") {
		t.Fatalf("FormatRange(5, 10) = %q", got)
	}
}
