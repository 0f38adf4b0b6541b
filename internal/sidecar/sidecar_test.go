package sidecar

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "sidecar.db"))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return s
}

func TestDescriptionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetDescription(ctx, "/a/b.png", "hero render"); err != nil {
		t.Fatalf("SetDescription() error: %v", err)
	}

	got, err := s.Description(ctx, "/a/b.png")
	if err != nil {
		t.Fatalf("Description() error: %v", err)
	}
	if got != "hero render" {
		t.Errorf("Description() = %q, want %q", got, "hero render")
	}
}

func TestAbsentKeysReturnZeroValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	desc, err := s.Description(ctx, "/missing")
	if err != nil || desc != "" {
		t.Errorf("Description(absent) = (%q, %v), want (\"\", nil)", desc, err)
	}

	notes, err := s.Notes(ctx, "/missing")
	if err != nil || notes != nil {
		t.Errorf("Notes(absent) = (%v, %v), want (nil, nil)", notes, err)
	}

	flags, err := s.Flags(ctx, "/missing")
	if err != nil || flags != 0 {
		t.Errorf("Flags(absent) = (%d, %v), want (0, nil)", flags, err)
	}
}

func TestNotesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := []Note{
		{Text: "fix the alpha edge", Checked: false},
		{Text: "regrade", Checked: true},
	}
	if err := s.SetNotes(ctx, "/shot", in); err != nil {
		t.Fatalf("SetNotes() error: %v", err)
	}

	got, err := s.Notes(ctx, "/shot")
	if err != nil {
		t.Fatalf("Notes() error: %v", err)
	}
	if len(got) != 2 || got[0] != in[0] || got[1] != in[1] {
		t.Errorf("Notes() = %v, want %v", got, in)
	}
}

func TestFlagsRoundTripAndUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetFlags(ctx, "/shot", 0b101); err != nil {
		t.Fatalf("SetFlags() error: %v", err)
	}
	if err := s.SetFlags(ctx, "/shot", 0b010); err != nil {
		t.Fatalf("SetFlags() update error: %v", err)
	}

	got, err := s.Flags(ctx, "/shot")
	if err != nil {
		t.Fatalf("Flags() error: %v", err)
	}
	if got != 0b010 {
		t.Errorf("Flags() = %b, want %b", got, 0b010)
	}
}

func TestUpsertPreservesOtherColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetDescription(ctx, "/shot", "desc"); err != nil {
		t.Fatalf("SetDescription() error: %v", err)
	}
	if err := s.SetFlags(ctx, "/shot", 7); err != nil {
		t.Fatalf("SetFlags() error: %v", err)
	}

	desc, err := s.Description(ctx, "/shot")
	if err != nil || desc != "desc" {
		t.Errorf("Description() = (%q, %v) after flags upsert, want (\"desc\", nil)", desc, err)
	}
}

func TestCountOpenNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes []Note
		want  int
	}{
		{
			name: "Mixed",
			notes: []Note{
				{Text: "open", Checked: false},
				{Text: "done", Checked: true},
				{Text: "", Checked: false},
			},
			want: 1,
		},
		{
			name:  "Empty",
			notes: nil,
			want:  0,
		},
		{
			name: "All open",
			notes: []Note{
				{Text: "a"},
				{Text: "b"},
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountOpenNotes(tt.notes); got != tt.want {
				t.Errorf("CountOpenNotes() = %d, want %d", got, tt.want)
			}
		})
	}
}
