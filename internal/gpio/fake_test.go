package gpio

import "testing"

func TestFakeButton(t *testing.T) {
	b := &FakeButton{}
	if b.Pressed() {
		t.Error("new button should read released")
	}
	b.Press()
	if !b.Pressed() {
		t.Error("expected pressed after Press")
	}
	b.Release()
	if b.Pressed() {
		t.Error("expected released after Release")
	}
	if b.Reads != 3 {
		t.Errorf("expected 3 reads, got %d", b.Reads)
	}
}

func TestFakeSwitchRecordsWrites(t *testing.T) {
	s := &FakeSwitch{}
	s.Set(true)
	s.Set(true)
	s.Set(false)

	if s.On {
		t.Error("expected final level off")
	}
	want := []bool{true, true, false}
	if len(s.Writes) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(s.Writes))
	}
	for i, w := range want {
		if s.Writes[i] != w {
			t.Errorf("write %d: got %v, want %v", i, s.Writes[i], w)
		}
	}

	s.Reset()
	if s.On || s.Writes != nil {
		t.Error("Reset should clear recorded state")
	}
}
