package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bonjohen/chess-metric-analyzer/internal/config"
	"github.com/bonjohen/chess-metric-analyzer/internal/logging"
	"github.com/bonjohen/chess-metric-analyzer/internal/uistate"
)

func TestOpenBackendFallsBackToMemory(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Server
	}{
		{"none", config.Server{StorageBackend: "none"}},
		{"unreachable redis", config.Server{StorageBackend: "redis", RedisAddr: "127.0.0.1:1"}},
		{"unopenable sqlite", config.Server{StorageBackend: "sqlite", StoragePath: filepath.Join(t.TempDir(), "missing", "dir", "viz.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be := openBackend(context.Background(), &tt.cfg, logging.Nop())
			defer be.close()

			if be.name != "memory" || be.store != nil {
				t.Fatalf("backend = %q (store %v), want memory", be.name, be.store != nil)
			}
			ctx := context.Background()
			want := uistate.Default()
			want.ProfileName = "Mine"
			if err := be.state.Save(ctx, uistate.DefaultKey, want); err != nil {
				t.Fatal(err)
			}
			if got, err := be.state.Load(ctx, uistate.DefaultKey); err != nil || got != want {
				t.Errorf("load = %+v, %v", got, err)
			}
		})
	}
}

func TestOpenBackendSqlite(t *testing.T) {
	cfg := config.Server{StorageBackend: "sqlite", StoragePath: filepath.Join(t.TempDir(), "viz.db")}
	be := openBackend(context.Background(), &cfg, logging.Nop())
	defer be.close()

	if be.name != "sqlite" || be.store == nil || be.state == nil {
		t.Fatalf("backend = %q, store set %v", be.name, be.store != nil)
	}
	if err := be.store.Close(); err != nil {
		t.Error(err)
	}
}
