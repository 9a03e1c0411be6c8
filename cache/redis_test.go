package cache

import (
	"errors"
	"testing"
)

// A multi-page keyspace hands back a non-zero continuation cursor; the walk
// must feed that cursor into the next scan and stop only on a zero one.
// Restarting from cursor 0 every page would loop forever against a server
// that pages its keyspace.
func TestScanPages_AdvancesCursorAcrossPages(t *testing.T) {
	pages := map[uint64]struct {
		keys []string
		next uint64
	}{
		0:  {keys: []string{"a", "b"}, next: 7},
		7:  {keys: []string{"c"}, next: 42},
		42: {keys: []string{"d", "e"}, next: 0},
	}

	var gotCursors []uint64
	var gotKeys []string

	err := scanPages(
		func(cursor uint64) ([]string, uint64, error) {
			gotCursors = append(gotCursors, cursor)
			page, ok := pages[cursor]
			if !ok {
				t.Fatalf("scan called with unexpected cursor %d", cursor)
			}
			return page.keys, page.next, nil
		},
		func(keys []string) error {
			gotKeys = append(gotKeys, keys...)
			return nil
		},
	)
	if err != nil {
		t.Fatalf("scanPages failed: %v", err)
	}

	wantCursors := []uint64{0, 7, 42}
	if len(gotCursors) != len(wantCursors) {
		t.Fatalf("scan called %d times with %v, want cursors %v", len(gotCursors), gotCursors, wantCursors)
	}
	for i := range wantCursors {
		if gotCursors[i] != wantCursors[i] {
			t.Errorf("scan call %d used cursor %d, want %d", i, gotCursors[i], wantCursors[i])
		}
	}

	if len(gotKeys) != 5 {
		t.Errorf("visited %d keys %v, want all 5", len(gotKeys), gotKeys)
	}
}

func TestScanPages_SkipsVisitForEmptyPages(t *testing.T) {
	calls := 0
	err := scanPages(
		func(cursor uint64) ([]string, uint64, error) {
			if cursor == 0 {
				return nil, 9, nil // empty page mid-scan
			}
			return []string{"x"}, 0, nil
		},
		func(keys []string) error {
			calls++
			return nil
		},
	)
	if err != nil {
		t.Fatalf("scanPages failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("visit called %d times, want 1", calls)
	}
}

func TestScanPages_PropagatesErrors(t *testing.T) {
	scanErr := errors.New("scan broke")
	err := scanPages(
		func(cursor uint64) ([]string, uint64, error) {
			return nil, 0, scanErr
		},
		func(keys []string) error { return nil },
	)
	if err == nil || !errors.Is(err, scanErr) {
		t.Errorf("err = %v, want wrapped scan error", err)
	}

	visitErr := errors.New("delete broke")
	err = scanPages(
		func(cursor uint64) ([]string, uint64, error) {
			return []string{"k"}, 0, nil
		},
		func(keys []string) error { return visitErr },
	)
	if !errors.Is(err, visitErr) {
		t.Errorf("err = %v, want visit error", err)
	}
}
