package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		input  string
		region string
		want   string
	}{
		{"98765 43210", "IN", "+919876543210"},
		{"+91 98765 43210", "NL", "+919876543210"},
		{"06 12345678", "NL", "+31612345678"},
		{"  not a number ", "IN", "not a number"},
		{"", "IN", ""},
	}

	for _, tc := range tests {
		if got := NormalizeE164(tc.input, tc.region); got != tc.want {
			t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
		}
	}
}
