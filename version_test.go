package archmigrate

import "testing"

func TestVersionCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "2.0", -1},
		{"2.0", "1.0", 1},
		{"1.0-1", "1.0-2", -1},
		{"1:1.0", "2.0", 1},
		{"1.0~beta1", "1.0", -1},
		{"1.0~beta1", "1.0~beta2", -1},
		{"7.6p2-4", "7.6p2-4", 0},
		{"1.001", "1.1", 0},
		{"1.0", "1.0.0", -1},
		{"0", "", 1},
	}
	for _, tt := range tests {
		got := ParseVersion(tt.a).Compare(ParseVersion(tt.b))
		norm := func(n int) int {
			switch {
			case n < 0:
				return -1
			case n > 0:
				return 1
			default:
				return 0
			}
		}
		if norm(got) != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	v := Version{Epoch: 1, Upstream: "2.3", Revision: "4"}
	v.raw = ""
	if got, want := v.String(), "1:2.3-4"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
