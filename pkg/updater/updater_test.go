package updater

import "testing"

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		v1, v2 string
		want   int
	}{
		{"v0.1.0", "v0.1.0", 0},
		{"v0.2.0", "v0.1.9", 1},
		{"v0.1.0", "v0.2.0", -1},
		{"1.0.0", "v1.0.0", 0},
	}
	for _, c := range cases {
		if got := compareVersions(c.v1, c.v2); got != c.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", c.v1, c.v2, got, c.want)
		}
	}
}
