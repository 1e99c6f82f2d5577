package registry

import (
	"testing"

	"github.com/vovakirdan/tui-invaders/internal/core"
)

type stubGame struct{ id string }

func (s *stubGame) ID() string                           { return s.id }
func (s *stubGame) Title() string                        { return "Stub " + s.id }
func (s *stubGame) Description() string                  { return "stub mode" }
func (s *stubGame) Reset(core.RuntimeConfig)             {}
func (s *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (s *stubGame) Render(*core.Screen)                  {}
func (s *stubGame) State() core.GameState                { return core.GameState{} }

func TestRegisterCreateList(t *testing.T) {
	Register("zz_stub_b", func() Game { return &stubGame{id: "zz_stub_b"} })
	Register("zz_stub_a", func() Game { return &stubGame{id: "zz_stub_a"} })

	if !Exists("zz_stub_a") || Exists("zz_missing") {
		t.Fatal("Exists mismatch")
	}

	g, err := Create("zz_stub_a")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID() != "zz_stub_a" {
		t.Fatalf("ID = %q", g.ID())
	}
	if _, err := Create("zz_missing"); err == nil {
		t.Fatal("expected error for unknown id")
	}

	a, b := -1, -1
	for i, info := range List() {
		switch info.ID {
		case "zz_stub_a":
			a = i
			if info.Title != "Stub zz_stub_a" || info.Description != "stub mode" {
				t.Errorf("info = %+v", info)
			}
		case "zz_stub_b":
			b = i
		}
	}
	if a < 0 || b < 0 || a > b {
		t.Fatalf("List not sorted or incomplete: a=%d b=%d", a, b)
	}
	if ids := IDs(); len(ids) != len(List()) {
		t.Fatalf("IDs = %v", ids)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz_dup", func() Game { return &stubGame{id: "zz_dup"} })
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate id")
		}
	}()
	Register("zz_dup", func() Game { return &stubGame{id: "zz_dup"} })
}
