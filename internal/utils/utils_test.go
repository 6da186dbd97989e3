package utils

import "testing"

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_BOT_TOKEN", "456:def")

	env, err := LoadEnv([]string{"BOT_TOKEN", "ADMIN_BOT_TOKEN"})
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if env["BOT_TOKEN"] != "123:abc" || env["ADMIN_BOT_TOKEN"] != "456:def" {
		t.Errorf("LoadEnv() = %v", env)
	}
}

func TestLoadEnvMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "")

	if _, err := LoadEnv([]string{"BOT_TOKEN"}); err == nil {
		t.Fatal("LoadEnv() should fail for an empty variable")
	}
}
