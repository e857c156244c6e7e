package segment

import "testing"

func scenesEqual(got []Scene, want []Scene) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// Worked example: clustered cuts coalesce to their first timestamp and the
// final 1.0s interval sits exactly at the threshold, so nothing merges.
func TestSplitScenes_CoalesceAndKeep(t *testing.T) {
	got := SplitScenes([]float64{0, 0.2, 0.4, 5.0, 9.0}, 10.0, 0.3, 1.0)
	want := []Scene{{0, 5.0}, {5.0, 9.0}, {9.0, 10.0}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSplitScenes_ShortIntervalMergesForward(t *testing.T) {
	got := SplitScenes([]float64{2.0, 2.5}, 10.0, 0.3, 1.0)
	// [2.0,2.5) is under the minimum and merges into its next neighbor.
	want := []Scene{{0, 2.0}, {2.0, 10.0}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSplitScenes_LastShortIntervalMergesBackward(t *testing.T) {
	got := SplitScenes([]float64{5.0, 9.5}, 10.0, 0.3, 1.0)
	want := []Scene{{0, 5.0}, {5.0, 10.0}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSplitScenes_MinimumDurationInvariant(t *testing.T) {
	cuts := []float64{0.4, 0.9, 1.3, 2.1, 2.2, 7.7}
	got := SplitScenes(cuts, 12.0, 0.3, 1.0)
	if len(got) == 0 {
		t.Fatal("expected scenes")
	}
	for _, s := range got {
		if s.End-s.Start < 1.0-1e-9 {
			t.Fatalf("scene below minimum duration: %+v (all: %+v)", s, got)
		}
	}
	if got[0].Start != 0 || got[len(got)-1].End != 12.0 {
		t.Fatalf("scenes must cover the full timeline: %+v", got)
	}
}

func TestSplitScenes_NoCuts(t *testing.T) {
	got := SplitScenes(nil, 4.2, 0.3, 1.0)
	want := []Scene{{0, 4.2}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSplitScenes_VideoShorterThanMinimum(t *testing.T) {
	got := SplitScenes([]float64{0.2}, 0.6, 0.3, 1.0)
	want := []Scene{{0, 0.6}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestSplitScenes_RoundsToOneDecimal(t *testing.T) {
	got := SplitScenes([]float64{3.33333}, 10.0, 0.3, 1.0)
	want := []Scene{{0, 3.3}, {3.3, 10.0}}
	if !scenesEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestAssignToScenes_OneTextPerScene(t *testing.T) {
	scenes := []Scene{{0, 5.0}, {5.0, 10.0}}
	got := AssignToScenes([]string{"NEW DROP", "SHOP NOW"}, scenes)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments got %+v", got)
	}
	if got[0].Start != 0 || got[0].End != 5.0 || got[1].Start != 5.0 || got[1].End != 10.0 {
		t.Fatalf("segments not aligned with scenes: %+v", got)
	}
	if got[0].Position != "bottom" {
		t.Fatalf("expected bottom anchor got %q", got[0].Position)
	}
}

func TestAssignToScenes_SurplusTextsShareLastScene(t *testing.T) {
	scenes := []Scene{{0, 4.0}}
	got := AssignToScenes([]string{"ONE", "TWO", "THREE"}, scenes)
	if len(got) != 3 {
		t.Fatalf("expected 3 segments got %+v", got)
	}
	for _, s := range got {
		if s.Start != 0 || s.End != 4.0 {
			t.Fatalf("surplus text must land on the last scene: %+v", s)
		}
	}
}

func TestAssignToScenes_DropsBlankAndNoScenes(t *testing.T) {
	got := AssignToScenes([]string{"  ", "KEEP"}, []Scene{{0, 2.0}, {2.0, 4.0}})
	if len(got) != 1 || got[0].Text != "KEEP" {
		t.Fatalf("blank text must be dropped: %+v", got)
	}
	if AssignToScenes([]string{"X"}, nil) != nil {
		t.Fatal("no scenes must yield no segments")
	}
}
