package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"BASE_URL":   "https://phonebook.example",
		"JWT_SECRET": "secret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.Mongo.Database != "phonebook" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Auth.JWTTTL != 23*time.Hour {
		t.Fatalf("expected 23h token ttl, got %s", cfg.Auth.JWTTTL)
	}
	if cfg.Auth.ResendCooldown != time.Minute {
		t.Fatalf("expected 1m cooldown, got %s", cfg.Auth.ResendCooldown)
	}
	if cfg.SMTP.Delivery != "strict" || cfg.SMTP.Port != 587 || cfg.SMTP.Workers != 4 {
		t.Fatalf("unexpected smtp defaults %+v", cfg.SMTP)
	}
	if cfg.Avatar.MaxBytes != 5<<20 || cfg.Avatar.PublicDir != "public" || cfg.Avatar.TmpDir != "tmp" {
		t.Fatalf("unexpected avatar defaults %+v", cfg.Avatar)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["JWT_TTL"] = "2h"
	env["MAIL_DELIVERY"] = "best_effort"
	env["VERIFY_RESEND_COOLDOWN"] = "0s"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTTTL != 2*time.Hour || cfg.SMTP.Delivery != "best_effort" || cfg.Auth.ResendCooldown != 0 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoad_RequiresSecretAndBaseURL(t *testing.T) {
	for _, missing := range []string{"JWT_SECRET", "BASE_URL"} {
		env := baseEnv()
		delete(env, missing)
		if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Fatalf("expected error when %s is missing", missing)
		}
	}
}

func TestValidate(t *testing.T) {
	env := baseEnv()
	env["BASE_URL"] = "not a url"
	env["MAIL_DELIVERY"] = "sometimes"

	_, err := load(context.Background(), envconfig.MapLookuper(env))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"BASE_URL", "MAIL_DELIVERY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}
