package tokencrypto

import "testing"

func TestGenerateSecret(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		secret, err := GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret() error = %v", err)
		}
		if len(secret) != secretLength {
			t.Errorf("GenerateSecret() length = %d, want %d", len(secret), secretLength)
		}
		if seen[secret] {
			t.Errorf("GenerateSecret() produced duplicate value %q", secret)
		}
		seen[secret] = true
	}
}

func TestHash(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{name: "simple", secret: "abc123"},
		{name: "empty", secret: ""},
		{name: "long", secret: "a-much-longer-secret-value-than-usual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.secret)
			if len(got) != 64 {
				t.Errorf("Hash() length = %d, want 64", len(got))
			}
			if Hash(tt.secret) != got {
				t.Error("Hash() is not deterministic")
			}
		})
	}

	if Hash("a") == Hash("b") {
		t.Error("Hash() collided for distinct inputs")
	}
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "short", secret: "abc", want: "abc"},
		{name: "exact", secret: "abcdefgh", want: "abcdefgh"},
		{name: "long", secret: "abcdefghijklmnop", want: "abcdefgh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Prefix(tt.secret); got != tt.want {
				t.Errorf("Prefix(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}
