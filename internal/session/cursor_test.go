package session

import "testing"

func TestCursor_ClampsAtEnds(t *testing.T) {
	c := NewCursor([]string{"a", "b", "c"})

	if got := c.Previous().Index(); got != 0 {
		t.Errorf("Previous at first item: index %d, want 0", got)
	}

	c = c.Next().Next().Next().Next()
	if c.Index() != 2 {
		t.Errorf("Next past last item: index %d, want 2", c.Index())
	}
	if v, _ := c.Current(); v != "c" {
		t.Errorf("Current() = %q, want c", v)
	}

	c = c.Previous()
	if v, _ := c.Current(); v != "b" {
		t.Errorf("Current() after Previous = %q, want b", v)
	}
}

func TestCursor_Select(t *testing.T) {
	c := NewCursor([]int{10, 20, 30})

	tests := []struct {
		index int
		ok    bool
		want  int
	}{
		{0, true, 0},
		{2, true, 2},
		{3, false, 0},
		{-1, false, 0},
	}

	for _, tt := range tests {
		got, ok := c.Select(tt.index)
		if ok != tt.ok || got.Index() != tt.want {
			t.Errorf("Select(%d) = (%d, %v), want (%d, %v)", tt.index, got.Index(), ok, tt.want, tt.ok)
		}
	}
}

func TestCursor_UpdateIsCopyOnWrite(t *testing.T) {
	orig := NewCursor([]int{1, 2, 3}).Next()
	updated := orig.Update(func(v int) int { return v * 100 })

	if v, _ := updated.Current(); v != 200 {
		t.Errorf("updated Current() = %d, want 200", v)
	}
	if v, _ := orig.Current(); v != 2 {
		t.Errorf("original cursor changed: %d", v)
	}
	if updated.Items()[0] != 1 || updated.Items()[2] != 3 {
		t.Errorf("Update touched unselected items: %v", updated.Items())
	}
}

func TestCursor_Empty(t *testing.T) {
	var c Cursor[int]

	if _, ok := c.Current(); ok {
		t.Error("empty cursor should have no current item")
	}
	if c.Next().Index() != 0 || c.Previous().Index() != 0 {
		t.Error("moving an empty cursor should keep index 0")
	}
	if c.Update(func(v int) int { return v + 1 }).Len() != 0 {
		t.Error("Update on an empty cursor should stay empty")
	}
}
