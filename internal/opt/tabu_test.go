package opt

import "testing"

func TestTabuRegisterDecay(t *testing.T) {
	tl := NewTabuList()
	m := Move{Client: "a", From: 0, To: 1}

	tl.Register(m, 3)
	if !tl.IsTabu(m) || tl.Remaining(m) != 3 {
		t.Fatalf("after register: tabu=%v remaining=%d", tl.IsTabu(m), tl.Remaining(m))
	}
	if tl.IsTabu(m.Reverse()) {
		t.Fatalf("reverse move %v must be a distinct identity", m.Reverse())
	}

	tl.Decay()
	tl.Decay()
	if tl.Remaining(m) != 1 {
		t.Fatalf("remaining = %d, want 1", tl.Remaining(m))
	}
	tl.Decay()
	if tl.IsTabu(m) || tl.Len() != 0 {
		t.Fatalf("entry should expire at zero, len=%d", tl.Len())
	}
}

func TestTabuOverwrite(t *testing.T) {
	tl := NewTabuList()
	m := Move{Client: "a", From: 2, To: 0}
	tl.Register(m, 1)
	tl.Register(m, 4)
	if tl.Remaining(m) != 4 {
		t.Fatalf("remaining = %d, want 4", tl.Remaining(m))
	}
}

func TestTabuZeroTenure(t *testing.T) {
	tl := NewTabuList()
	m := Move{Client: "a", From: 0, To: 1}
	tl.Register(m, 0)
	if tl.IsTabu(m) {
		t.Fatal("tenure 0 must leave the move eligible")
	}
	tl.Register(m, 2)
	tl.Register(m, 0)
	if tl.IsTabu(m) {
		t.Fatal("tenure 0 must clear an existing entry")
	}
}

func TestTabuTenureBound(t *testing.T) {
	const tenure = 5
	tl := NewTabuList()
	m := Move{Client: "x", From: 1, To: 2}
	tl.Register(m, tenure)
	stayed := 0
	for i := 0; i < 3*tenure; i++ {
		if tl.IsTabu(m) {
			stayed++
		}
		if tl.Remaining(m) < 0 {
			t.Fatalf("negative tenure at step %d", i)
		}
		tl.Decay()
	}
	if stayed > tenure {
		t.Fatalf("move stayed tabu for %d iterations, tenure %d", stayed, tenure)
	}
}
