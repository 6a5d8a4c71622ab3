package walletaddr_test

import (
	"testing"

	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"lowercase passes through", "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", false},
		{"mixed case is lowered", "0xABCDefabcdefabcdefabcdefabcdefabcdefABCD", "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", false},
		{"surrounding whitespace is trimmed", "  0xabcdefabcdefabcdefabcdefabcdefabcdefabcd ", "0xabcdefabcdefabcdefabcdefabcdefabcdefabcd", false},
		{"missing prefix", "abcdefabcdefabcdefabcdefabcdefabcdefabcd00", "", true},
		{"too short", "0xabc", "", true},
		{"non-hex characters", "0xzzcdefabcdefabcdefabcdefabcdefabcdefabcd", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := walletaddr.Normalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	got := walletaddr.Short("0xabcdefabcdefabcdefabcdefabcdefabcdefabcd")
	if got != "0xabcd...abcd" {
		t.Fatalf("got %q", got)
	}
}
