package photos

import (
	"errors"
	"testing"
)

func TestSetAppendKeepsOrder(t *testing.T) {
	s := NewSet(nil)
	s.Append("a", "b")
	s.Append("c")

	got := s.All()
	want := []Photo{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d photos, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	first, ok := s.First()
	if !ok || first != "a" {
		t.Errorf("expected first photo %q, got %q", "a", first)
	}
}

func TestSetAllReturnsCopy(t *testing.T) {
	s := NewSet(nil)
	s.Append("a")
	all := s.All()
	all[0] = "mutated"

	if first, _ := s.First(); first != "a" {
		t.Errorf("expected set to be unaffected, got %q", first)
	}
}

func TestSetRemoveAt(t *testing.T) {
	tests := []struct {
		name    string
		index   int
		want    []Photo
		wantErr error
	}{
		{name: "first", index: 0, want: []Photo{"b", "c"}},
		{name: "middle", index: 1, want: []Photo{"a", "c"}},
		{name: "last", index: 2, want: []Photo{"a", "b"}},
		{name: "negative", index: -1, want: []Photo{"a", "b", "c"}, wantErr: ErrIndexOutOfRange},
		{name: "past end", index: 3, want: []Photo{"a", "b", "c"}, wantErr: ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet(nil)
			s.Append("a", "b", "c")

			err := s.RemoveAt(tt.index)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			got := s.All()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestSetRotateAt(t *testing.T) {
	n := NewNormalizer(DefaultMaxWidth, DefaultQuality)
	photo, err := n.Normalize(testImage(t, 80, 40))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := NewSet(n)
	s.Append("untouched", photo)

	if err := s.RotateAt(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := s.RotateAt(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all := s.All()
	if all[0] != "untouched" {
		t.Errorf("expected other photos to be untouched")
	}
	w, h, err := Dimensions(all[1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 40 || h != 80 {
		t.Errorf("expected rotated photo to be 40x80, got %dx%d", w, h)
	}
}

func TestSetClearAndReplace(t *testing.T) {
	s := NewSet(nil)
	s.Append("a", "b")
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
	if _, ok := s.First(); ok {
		t.Errorf("expected no first photo on empty set")
	}

	s.Replace("z")
	if got := s.All(); len(got) != 1 || got[0] != "z" {
		t.Errorf("expected [z], got %v", got)
	}
}
