package report_test

import (
	"errors"
	"testing"

	"github.com/mpetrov/rollcall/internal/report"
)

func TestNavStateRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		state report.NavState
		want  string
	}{
		{
			name:  "default view",
			state: report.NavState{Page: 0, Filter: report.FilterAll, Sort: report.SortByName},
			want:  "att:1:0:all:name",
		},
		{
			name:  "later page inactive filter",
			state: report.NavState{Page: 7, Filter: report.FilterInactive, Sort: report.SortByLastActive},
			want:  "att:1:7:inactive:last",
		},
		{
			name:  "negative page survives encoding",
			state: report.NavState{Page: -1, Filter: report.FilterActive, Sort: report.SortByName},
			want:  "att:1:-1:active:name",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			encoded := tc.state.Encode()
			if encoded != tc.want {
				t.Errorf("Encode() = %q, want %q", encoded, tc.want)
			}
			if len(encoded) > 64 {
				t.Errorf("encoded state %q exceeds Telegram's 64-byte callback data limit", encoded)
			}

			decoded, err := report.DecodeNav(encoded)
			if err != nil {
				t.Fatalf("DecodeNav(%q) returned error: %v", encoded, err)
			}
			if decoded != tc.state {
				t.Errorf("round trip: got %+v, want %+v", decoded, tc.state)
			}
		})
	}
}

func TestDecodeNavMalformed(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		data string
	}{
		{name: "empty string", data: ""},
		{name: "too few fields", data: "att:1:0:all"},
		{name: "too many fields", data: "att:1:0:all:name:extra"},
		{name: "wrong prefix", data: "xyz:1:0:all:name"},
		{name: "unsupported version", data: "att:2:0:all:name"},
		{name: "non-integer page", data: "att:1:abc:all:name"},
		{name: "unknown filter", data: "att:1:0:bogus:name"},
		{name: "unknown sort", data: "att:1:0:all:bogus"},
		{name: "legacy pipe format", data: "ATT|0|all|name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := report.DecodeNav(tc.data)
			if err == nil {
				t.Fatalf("DecodeNav(%q) succeeded, want error", tc.data)
			}

			var decodeErr *report.NavDecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("DecodeNav(%q) error is %T, want *report.NavDecodeError", tc.data, err)
			}
		})
	}
}
