package lobby

import (
	"errors"
	"testing"
)

func TestAppendRemoveLifecycle(t *testing.T) {
	l := New()
	e := l.Create(Settings{SecsPerPlayer: 300})
	if e.ID == "" {
		t.Fatalf("empty id")
	}

	n, err := l.Append(e.ID, "ann")
	if err != nil || n != 1 {
		t.Fatalf("Append ann: n=%d err=%v", n, err)
	}
	if n, _ := l.Append(e.ID, "ann"); n != 1 {
		t.Fatalf("duplicate append changed count to %d", n)
	}
	n, err = l.Append(e.ID, "bob")
	if err != nil || n != 2 {
		t.Fatalf("Append bob: n=%d err=%v", n, err)
	}
	if _, err := l.Append(e.ID, "cid"); !errors.Is(err, ErrEntryFull) {
		t.Fatalf("third append: %v", err)
	}

	if l.Remove(e.ID, "bob") {
		t.Fatalf("entry deleted with ann still waiting")
	}
	if !l.Remove(e.ID, "ann") {
		t.Fatalf("empty entry not deleted")
	}
	if _, ok := l.Get(e.ID); ok {
		t.Fatalf("entry still present")
	}
	if _, err := l.Append(e.ID, "ann"); !errors.Is(err, ErrUnknownEntry) {
		t.Fatalf("append to deleted entry: %v", err)
	}
}

func TestTake(t *testing.T) {
	l := New()
	e := l.Create(Settings{SecsPerPlayer: 60, VsAI: true})
	l.Append(e.ID, "ann")
	got, ok := l.Take(e.ID)
	if !ok || got.Waiting[0] != "ann" || !got.Settings.VsAI {
		t.Fatalf("Take = %+v %v", got, ok)
	}
	if _, ok := l.Take(e.ID); ok {
		t.Fatalf("second Take succeeded")
	}
	if l.Len() != 0 {
		t.Fatalf("len = %d", l.Len())
	}
}

func TestListOldestFirst(t *testing.T) {
	l := New()
	var ids []string
	for _, u := range []string{"a", "b", "c", "d"} {
		e := l.Create(Settings{SecsPerPlayer: 60})
		l.Append(e.ID, u)
		ids = append(ids, e.ID)
	}
	l.Create(Settings{SecsPerPlayer: 60}) // nobody waiting

	got := l.List(3)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, e := range got {
		if e.ID != ids[i] {
			t.Fatalf("position %d = %s, want %s", i, e.ID, ids[i])
		}
	}
	got[0].Waiting[0] = "mutated"
	if e, _ := l.Get(ids[0]); e.Waiting[0] != "a" {
		t.Fatalf("List leaked internal state")
	}
}
