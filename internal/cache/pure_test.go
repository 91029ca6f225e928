package cache

import (
	"testing"

	"github.com/canteenrush/canteenrush/internal/model"
)

func TestHashIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"same IPv4", "192.168.1.100", "192.168.1.100", true},
		{"neighbouring IPv4", "10.0.0.1", "10.0.0.2", false},
		{"IPv4 vs IPv6 loopback", "127.0.0.1", "::1", false},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ha, hb := hashIP(tt.a), hashIP(tt.b)
			if len(ha) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.a, len(ha))
			}
			if (ha == hb) != tt.same {
				t.Errorf("hashIP(%q) == hashIP(%q) is %v, want %v", tt.a, tt.b, ha == hb, tt.same)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := key("ratelimit", "login", "abcd"); got != "canteen:ratelimit:login:abcd" {
		t.Errorf("key = %q", got)
	}
}

func TestSessionKeys(t *testing.T) {
	t.Parallel()

	if got := sessionKey("abc"); got != "canteen:session:abc" {
		t.Errorf("sessionKey = %q, want canteen:session:abc", got)
	}
	if got := seenKey("abc"); got != "canteen:seen:abc" {
		t.Errorf("seenKey = %q, want canteen:seen:abc", got)
	}
}

func TestDecodeSeen(t *testing.T) {
	t.Parallel()

	got := decodeSeen(map[string]string{
		"01HX": "Ready",
		"01HY": "Cooking",
	})

	if len(got) != 2 || got["01HX"] != model.StatusReady || got["01HY"] != model.StatusCooking {
		t.Errorf("decodeSeen = %v", got)
	}
}

func TestEncodeSeen(t *testing.T) {
	t.Parallel()

	got := encodeSeen(map[string]model.Status{"01HX": model.StatusReady})
	if len(got) != 2 || got[0] != "01HX" || got[1] != "Ready" {
		t.Errorf("encodeSeen = %v", got)
	}
}
