package owner

import (
	"errors"
	"testing"
	"time"

	"dlremindme/internal/task"
)

var utc7 = time.FixedZone("UTC+7", 7*60*60)

func TestRegistryAppendRemove(t *testing.T) {
	reg := Registry{}
	due := time.Date(2025, 5, 21, 10, 0, 0, 0, utc7)
	a := task.NewTask("a", "first", due)
	b := task.NewTask("b", "second", due)
	c := task.NewTask("c", "third", due)
	reg.Append("alice@example.com", a)
	reg.Append("alice@example.com", b)
	reg.Append("alice@example.com", c)

	if !reg.Remove("alice@example.com", "b") {
		t.Fatal("Remove(b) should report removal")
	}
	got := reg.Tasks("alice@example.com")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("unexpected order after remove: %+v", got)
	}
	if reg.Remove("alice@example.com", "missing") {
		t.Error("Remove(missing) should report false")
	}
	if reg.Remove("bob@example.com", "a") {
		t.Error("Remove on unknown owner should report false")
	}
	if len(reg.Tasks("bob@example.com")) != 0 {
		t.Error("unknown owner should have no tasks")
	}
}

func TestRemoveDoesNotAliasOriginal(t *testing.T) {
	due := time.Date(2025, 5, 21, 10, 0, 0, 0, utc7)
	list := []*task.Task{task.NewTask("a", "x", due), task.NewTask("b", "y", due), task.NewTask("c", "z", due)}
	reg := Registry{"o": list}
	reg.Remove("o", "a")
	if list[0].ID != "a" {
		t.Errorf("original slice mutated: %v", list[0].ID)
	}
}

func TestFromRecordsCollectsErrors(t *testing.T) {
	recs := Records{
		"alice@example.com": {
			{ID: "1", Name: "ok", Deadline: "2025-05-21T10:00:00"},
			{ID: "2", Name: "bad", Deadline: "soon"},
		},
	}
	reg, errs := FromRecords(recs, utc7)
	if len(errs) != 1 || !errors.Is(errs[0], task.ErrBadDeadline) {
		t.Fatalf("expected one ErrBadDeadline, got %v", errs)
	}
	tasks := reg.Tasks("alice@example.com")
	if len(tasks) != 2 {
		t.Fatalf("expected both tasks kept, got %d", len(tasks))
	}
	if !tasks[0].HasDeadline() || tasks[1].HasDeadline() {
		t.Errorf("deadline flags wrong: %v %v", tasks[0].HasDeadline(), tasks[1].HasDeadline())
	}
	back := reg.Records()
	if back["alice@example.com"][0].Deadline != "2025-05-21T10:00:00+07:00" {
		t.Errorf("normalized deadline = %q", back["alice@example.com"][0].Deadline)
	}
	if back["alice@example.com"][1].Deadline != "soon" {
		t.Errorf("raw deadline not kept: %q", back["alice@example.com"][1].Deadline)
	}
}
