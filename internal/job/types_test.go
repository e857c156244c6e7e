package job

import "testing"

func TestStatusTransitions_ForwardOnly(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusQueued, StatusAnalyzing},
		{StatusQueued, StatusTranslating}, // analysis skipped
		{StatusAnalyzing, StatusTranslating},
		{StatusTranslating, StatusGenerating},
		{StatusGenerating, StatusDone},
		{StatusQueued, StatusError},
		{StatusAnalyzing, StatusCancelled},
		{StatusTranslating, StatusCancelled},
		{StatusGenerating, StatusError},
	}
	for _, c := range legal {
		if !c.from.CanTransition(c.to) {
			t.Fatalf("%s → %s must be legal", c.from, c.to)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusDone, StatusGenerating},
		{StatusError, StatusQueued},
		{StatusCancelled, StatusTranslating},
		{StatusGenerating, StatusAnalyzing},
		{StatusTranslating, StatusAnalyzing},
		{StatusDone, StatusDone},
	}
	for _, c := range illegal {
		if c.from.CanTransition(c.to) {
			t.Fatalf("%s → %s must be illegal", c.from, c.to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusDone, StatusError, StatusCancelled} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
	for _, s := range []Status{StatusQueued, StatusAnalyzing, StatusTranslating, StatusGenerating} {
		if s.Terminal() {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}

func TestAdvance_RejectsIllegal(t *testing.T) {
	j := &Job{Status: StatusDone}
	if err := j.advance(StatusGenerating); err == nil {
		t.Fatal("expected error for done → generating")
	}
	if j.Status != StatusDone {
		t.Fatalf("status must not change on rejected transition, got %s", j.Status)
	}
}
