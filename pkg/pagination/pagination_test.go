package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: DefaultLimit},
		{name: "negative uses default", limit: -4, want: DefaultLimit},
		{name: "within range kept", limit: 40, want: 40},
		{name: "above max clamped", limit: 500, want: MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
	if got := LimitWithBuffer(0); got != DefaultLimit+1 {
		t.Fatalf("LimitWithBuffer(0) = %d, want %d", got, DefaultLimit+1)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{
		CreatedAt: time.Date(2025, 8, 12, 14, 30, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(in)
	out, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if out == nil {
		t.Fatal("expected cursor, got nil")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("created at mismatch: got %s want %s", out.CreatedAt, in.CreatedAt)
	}
	if out.ID != in.ID {
		t.Fatalf("id mismatch: got %s want %s", out.ID, in.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	out, err := ParseCursor("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil cursor, got %+v", out)
	}
}

func TestParseCursorInvalid(t *testing.T) {
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := ParseCursor("bm8tcGlwZQ=="); err == nil {
		t.Fatal("expected format error")
	}
}
