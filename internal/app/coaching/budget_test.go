package coaching

import (
	"strings"
	"testing"
)

func TestTokenBudgetClamping(t *testing.T) {
	cases := []struct {
		name   string
		window int
		prompt string
		want   int
	}{
		{"tiny window clamps low", 100, strings.Repeat("word ", 500), 200},
		{"huge window clamps high", 100000, "short prompt", 600},
		{"mid-range passes through", 1000, strings.Repeat("word ", 500), 500},
		{"empty prompt", 4096, "", 600},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tokenBudget(tc.window, tc.prompt); got != tc.want {
				t.Fatalf("tokenBudget(%d, %d words) = %d, want %d",
					tc.window, len(strings.Fields(tc.prompt)), got, tc.want)
			}
		})
	}
}

func TestTokenBudgetAlwaysInRange(t *testing.T) {
	for _, window := range []int{0, 1, 512, 2048, 4096, 1 << 20} {
		for _, words := range []int{0, 10, 1000, 10000} {
			got := tokenBudget(window, strings.Repeat("w ", words))
			if got < 200 || got > 600 {
				t.Fatalf("tokenBudget(%d, %d words) = %d outside [200, 600]", window, words, got)
			}
		}
	}
}
