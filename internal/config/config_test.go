package config

import (
	"io"
	"log"
	"testing"
)

func init() {
	log.SetOutput(io.Discard)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POS_API_BASE_URL", "http://backend:8000/")
	t.Setenv("POS_PAGE_SIZE", "")
	t.Setenv("POS_PUSH", "")
	t.Setenv("POS_REFETCH_AFTER_MUTATION", "")

	cfg := Load()
	if cfg.APIBaseURL != "http://backend:8000" {
		t.Fatalf("base url=%q, trailing slash should be trimmed", cfg.APIBaseURL)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("page size=%d, want 10", cfg.PageSize)
	}
	if cfg.PushMode != PushNone || !cfg.RefetchAfterMutation {
		t.Fatalf("push=%s refetch=%t, want none/true", cfg.PushMode, cfg.RefetchAfterMutation)
	}
	if !cfg.SubmitGuard {
		t.Fatalf("submit guard should default to on")
	}
}

func TestLoad_PushDisablesRefetch(t *testing.T) {
	t.Setenv("POS_PUSH", "WS")
	t.Setenv("POS_REFETCH_AFTER_MUTATION", "")

	cfg := Load()
	if cfg.PushMode != PushWS {
		t.Fatalf("push=%s, want ws", cfg.PushMode)
	}
	if cfg.RefetchAfterMutation {
		t.Fatalf("refetch should default off when a push channel is configured")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POS_PAGE_SIZE", "-3")
	t.Setenv("POS_SUBMIT_GUARD", "maybe")
	t.Setenv("POS_PUSH", "carrier-pigeon")

	cfg := Load()
	if cfg.PageSize != 10 || !cfg.SubmitGuard || cfg.PushMode != PushNone {
		t.Fatalf("unexpected fallback cfg: %+v", cfg)
	}
}
