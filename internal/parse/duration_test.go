package parse

import "testing"

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		token string
		want  int
	}{
		{"2h 30m", 150},
		{"2:30", 150},
		{"150m", 150},
		{"2.5h", 150},
		{"1h", 60},
		{"45m", 45},
		{"0:45", 45},
		{"90", 90},
		{"", 0},
		{"soon", 0},
	}
	for _, tc := range cases {
		if got := DurationMinutes(tc.token); got != tc.want {
			t.Errorf("DurationMinutes(%q) = %d, want %d", tc.token, got, tc.want)
		}
	}
}

func TestDurationMinutesColonPrecedence(t *testing.T) {
	// "1:30" must read as one hour thirty minutes, never as a bare
	// number or an h/m decomposition.
	if got := DurationMinutes("1:30"); got != 90 {
		t.Fatalf("colon form must win: got %d", got)
	}
}
