package envutil

import "testing"

func TestEnvKeyNormalizesName(t *testing.T) {
	cases := map[string]string{
		"staging":       "ENVDB_STAGING_DB_HOST",
		"sandbox-alice": "ENVDB_SANDBOX_ALICE_DB_HOST",
		" dev.2 ":       "ENVDB_DEV_2_DB_HOST",
	}
	for name, want := range cases {
		if got := EnvKey(name, "DB_HOST"); got != want {
			t.Fatalf("EnvKey(%q): expected %s, got %s", name, want, got)
		}
	}
}

func TestFromPairsSkipsMalformed(t *testing.T) {
	got := FromPairs([]string{"A=1", "B=x=y", "broken", "=nokey", "C="})
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %v", got)
	}
	if got["B"] != "x=y" {
		t.Fatalf("expected value with separator preserved, got %q", got["B"])
	}
	if v, ok := got["C"]; !ok || v != "" {
		t.Fatalf("expected empty value for C, got %q (%v)", v, ok)
	}
}
