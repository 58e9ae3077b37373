package spatial

import (
	"fmt"
	"testing"
)

func TestSkipListOrdering(t *testing.T) {
	sl := NewSkipList(1)
	sl.Insert("carol", 30)
	sl.Insert("alice", 50)
	sl.Insert("bob", 50)
	sl.Insert("dave", 10)

	want := []string{"alice", "bob", "carol", "dave"}
	got := sl.GetRange(1, 10)
	if len(got) != len(want) {
		t.Fatalf("GetRange len = %d, want %d", len(got), len(want))
	}
	for i, e := range got {
		if e.Key != want[i] {
			t.Errorf("rank %d = %s, want %s", i+1, e.Key, want[i])
		}
		if r := sl.GetRank(e.Key); r != i+1 {
			t.Errorf("GetRank(%s) = %d, want %d", e.Key, r, i+1)
		}
	}
}

func TestSkipListUpdateAndRemove(t *testing.T) {
	tests := []struct {
		name     string
		ops      func(sl *SkipList)
		wantTop  string
		wantLen  int
		wantRank map[string]int
	}{
		{
			name: "score raise moves key up",
			ops: func(sl *SkipList) {
				sl.Insert("a", 10)
				sl.Insert("b", 20)
				sl.Insert("a", 30)
			},
			wantTop:  "a",
			wantLen:  2,
			wantRank: map[string]int{"a": 1, "b": 2},
		},
		{
			name: "remove leaves the rest ranked",
			ops: func(sl *SkipList) {
				sl.Insert("a", 10)
				sl.Insert("b", 20)
				sl.Insert("c", 30)
				sl.Remove("c")
			},
			wantTop:  "b",
			wantLen:  2,
			wantRank: map[string]int{"b": 1, "a": 2, "c": 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl := NewSkipList(7)
			tt.ops(sl)
			if sl.Length() != tt.wantLen {
				t.Errorf("Length = %d, want %d", sl.Length(), tt.wantLen)
			}
			top, ok := sl.GetByRank(1)
			if !ok || top.Key != tt.wantTop {
				t.Errorf("GetByRank(1) = %v, %v; want %s", top, ok, tt.wantTop)
			}
			for k, r := range tt.wantRank {
				if got := sl.GetRank(k); got != r {
					t.Errorf("GetRank(%s) = %d, want %d", k, got, r)
				}
			}
		})
	}
}

func TestSkipListManyEntries(t *testing.T) {
	sl := NewSkipList(42)
	for i := 0; i < 500; i++ {
		sl.Insert(fmt.Sprintf("p%03d", i), float64(i%50))
	}
	prev := SkipListEntry{Score: 1e9}
	rank := 0
	sl.ForEach(func(r int, e SkipListEntry) bool {
		rank = r
		if !prev.before(e) && prev.Key != "" {
			t.Fatalf("rank %d out of order: %v then %v", r, prev, e)
		}
		prev = e
		return true
	})
	if rank != 500 {
		t.Errorf("visited %d entries", rank)
	}
	if e, _ := sl.GetByRank(250); sl.GetRank(e.Key) != 250 {
		t.Errorf("GetRank/GetByRank disagree at 250")
	}
	sl.Clear()
	if sl.Length() != 0 {
		t.Errorf("Length after Clear = %d", sl.Length())
	}
}
