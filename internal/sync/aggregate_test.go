package sync

import (
	"testing"

	"github.com/terra-clan/progress-engine/internal/models"
	"github.com/terra-clan/progress-engine/internal/storage"
)

func TestDeltaFor(t *testing.T) {
	cases := []struct {
		difficulty models.Difficulty
		want       storage.CounterDelta
	}{
		{models.DifficultyEasy, storage.CounterDelta{Easy: 1, Total: 1}},
		{models.DifficultyMedium, storage.CounterDelta{Medium: 1, Total: 1}},
		{models.DifficultyHard, storage.CounterDelta{Hard: 1, Total: 1}},
		// Unknown still counts toward the total.
		{models.DifficultyUnknown, storage.CounterDelta{Total: 1}},
	}

	for _, c := range cases {
		if got := DeltaFor(c.difficulty); got != c.want {
			t.Errorf("DeltaFor(%s) = %+v, expected %+v", c.difficulty, got, c.want)
		}
	}
}

func TestApplyDelta(t *testing.T) {
	u := &models.User{EasySolved: 1, TotalSolved: 1}
	ApplyDelta(u, storage.CounterDelta{Medium: 1, Total: 1})

	if u.EasySolved != 1 || u.MediumSolved != 1 || u.TotalSolved != 2 {
		t.Errorf("unexpected counters: %d/%d/%d total %d",
			u.EasySolved, u.MediumSolved, u.HardSolved, u.TotalSolved)
	}
}

func TestRecountCountersRepairsWipedUser(t *testing.T) {
	u := &models.User{}
	counts := storage.DifficultyCounts{Easy: 2, Medium: 1, Hard: 1}

	if !RecountCounters(u, counts) {
		t.Fatal("recount of a wiped user should report a change")
	}
	if u.EasySolved != 2 || u.MediumSolved != 1 || u.HardSolved != 1 || u.TotalSolved != 4 {
		t.Errorf("unexpected counters after recount: %+v", u)
	}

	// Idempotent on repeat.
	if RecountCounters(u, counts) {
		t.Error("repeated recount should be a no-op")
	}
}

func TestRecountCountersUnknownOnlyLedger(t *testing.T) {
	u := &models.User{}
	counts := storage.DifficultyCounts{Unknown: 5}

	RecountCounters(u, counts)
	if u.TotalSolved != 5 {
		t.Errorf("all-Unknown ledger should floor the total at 5, got %d", u.TotalSolved)
	}
	if u.EasySolved != 0 || u.MediumSolved != 0 || u.HardSolved != 0 {
		t.Errorf("per-difficulty counters invented: %+v", u)
	}
}

func TestRecountCountersNeverRegresses(t *testing.T) {
	u := &models.User{EasySolved: 10, MediumSolved: 5, HardSolved: 2, TotalSolved: 17}
	counts := storage.DifficultyCounts{Easy: 3, Medium: 1}

	if RecountCounters(u, counts) {
		t.Error("a smaller ledger count must not change anything")
	}
	if u.EasySolved != 10 || u.TotalSolved != 17 {
		t.Errorf("counters regressed: %+v", u)
	}
}

func TestRecountCountersMixedFloors(t *testing.T) {
	// Easy already ahead of the ledger, hard behind it.
	u := &models.User{EasySolved: 4, HardSolved: 0, TotalSolved: 4}
	counts := storage.DifficultyCounts{Easy: 2, Hard: 3, Unknown: 1}

	RecountCounters(u, counts)
	if u.EasySolved != 4 {
		t.Errorf("easy should keep the higher existing value, got %d", u.EasySolved)
	}
	if u.HardSolved != 3 {
		t.Errorf("hard should take the ledger value, got %d", u.HardSolved)
	}
	// Accepted total 2+3+1 = 6 beats both the old total and the known sum.
	if u.TotalSolved != 6 {
		t.Errorf("expected total 6, got %d", u.TotalSolved)
	}
}
