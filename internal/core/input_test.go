package core

import "testing"

func TestInputFrameSetHasClear(t *testing.T) {
	var f InputFrame // zero value must be usable

	if f.Has(ActionFire) {
		t.Error("zero frame should have no actions")
	}

	f.Set(ActionFire)
	f.Set(ActionLeft)
	if !f.Has(ActionFire) || !f.Has(ActionLeft) {
		t.Error("Set actions should be reported by Has")
	}
	if f.Has(ActionRight) {
		t.Error("unset action should not be reported")
	}

	clone := f.Clone()
	f.Clear()
	if f.Has(ActionFire) {
		t.Error("Clear should remove all actions")
	}
	if !clone.Has(ActionFire) {
		t.Error("Clone should not share storage with the original")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:    "None",
		ActionLeft:    "Left",
		ActionFire:    "Fire",
		ActionRestart: "Restart",
		Action(99):    "Unknown",
	}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, expected %q", a, got, want)
		}
	}
}
