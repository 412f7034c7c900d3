package webview

import "testing"

func TestEngineCellSetOnce(t *testing.T) {
	cell := &engineCell{}
	first := newFakeController()
	second := newFakeController()

	if !cell.set(first) {
		t.Fatal("first set rejected")
	}
	if cell.set(second) {
		t.Fatal("second set should be a no-op")
	}

	ctrl, ok := cell.get()
	if !ok {
		t.Fatal("cell empty after set")
	}
	if ctrl != Controller(first) {
		t.Fatal("cell holds the wrong controller")
	}
}

func TestEngineCellNoOpBeforeSet(t *testing.T) {
	cell := &engineCell{}

	if err := cell.evaluate("1+1"); err != nil {
		t.Fatalf("evaluate on empty cell: %v", err)
	}
	if err := cell.resize(Bounds{Width: 10, Height: 10}); err != nil {
		t.Fatalf("resize on empty cell: %v", err)
	}
	if _, ok := cell.get(); ok {
		t.Fatal("empty cell reports a controller")
	}
}

func TestEngineCellClear(t *testing.T) {
	cell := &engineCell{}
	ctrl := newFakeController()
	cell.set(ctrl)

	got, ok := cell.clear()
	if !ok || got != Controller(ctrl) {
		t.Fatal("clear did not return the held controller")
	}
	if _, ok := cell.clear(); ok {
		t.Fatal("second clear should find nothing")
	}
	if err := cell.evaluate("1+1"); err != nil {
		t.Fatalf("evaluate after clear: %v", err)
	}
	if len(ctrl.executed) != 0 {
		t.Fatal("script executed against a cleared cell")
	}
}

func TestEngineCellRejectsSetAfterClear(t *testing.T) {
	cell := &engineCell{}
	cell.clear()

	late := newFakeController()
	if cell.set(late) {
		t.Fatal("set succeeded on a cleared cell")
	}
	if _, ok := cell.get(); ok {
		t.Fatal("cleared cell holds a controller")
	}
}
