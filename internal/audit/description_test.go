package audit

import "testing"

func TestDescriptionNestsStages(t *testing.T) {
	d := New()
	d.StartStage("Combining")
	d.AppendText("%d candidates", 3)
	d.StartStage("inner")
	d.AppendText("deep")
	d.FinishStage()
	d.FinishStage()
	d.AppendText("done")

	parts := d.Parts()
	wantDepths := []int{0, 1, 1, 2, 0}
	if len(parts) != len(wantDepths) {
		t.Fatalf("expected %d parts, got %d", len(wantDepths), len(parts))
	}
	for i, depth := range wantDepths {
		if parts[i].Depth != depth {
			t.Fatalf("part %d (%q): depth %d want %d", i, parts[i].Text, parts[i].Depth, depth)
		}
	}
	if parts[1].Text != "3 candidates" {
		t.Fatalf("unexpected text %q", parts[1].Text)
	}
	if !d.Contains("deep") {
		t.Fatal("expected Contains to find nested text")
	}
	want := "Combining\n  3 candidates\n  inner\n    deep\ndone\n"
	if d.String() != want {
		t.Fatalf("unexpected rendering:\n%s", d.String())
	}
}

func TestNilDescriptionIsSafe(t *testing.T) {
	var d *Description
	d.StartStage("x").AppendText("y").FinishStage()
	if d.String() != "" || d.Parts() != nil || d.Contains("x") {
		t.Fatal("expected nil description to record nothing")
	}
}

func TestFinishStageDoesNotUnderflow(t *testing.T) {
	d := New()
	d.FinishStage()
	d.AppendText("top")
	if d.Parts()[0].Depth != 0 {
		t.Fatal("expected depth to stay at zero")
	}
}
