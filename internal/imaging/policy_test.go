package imaging

import "testing"

func TestTargetWidthLadder(t *testing.T) {
	cases := []struct {
		sourceWidth int
		want        int
	}{
		{sourceWidth: 3500, want: 640},
		{sourceWidth: 3001, want: 640},
		{sourceWidth: 3000, want: 512},
		{sourceWidth: 2000, want: 512},
		{sourceWidth: 1501, want: 512},
		{sourceWidth: 1500, want: 384},
		{sourceWidth: 801, want: 384},
		{sourceWidth: 800, want: 0},
		{sourceWidth: 500, want: 0},
		{sourceWidth: 0, want: 0},
	}
	for _, tc := range cases {
		if got := TargetWidth(tc.sourceWidth); got != tc.want {
			t.Fatalf("TargetWidth(%d) = %d, want %d", tc.sourceWidth, got, tc.want)
		}
	}
}
