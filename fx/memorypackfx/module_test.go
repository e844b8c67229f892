package memorypackfx

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/discochess/lzwpack"
	"github.com/discochess/lzwpack/internal/store/memstore"
)

func TestModule(t *testing.T) {
	var (
		client *lzwpack.Client
		mem    *memstore.Store
	)
	app := fxtest.New(t,
		fx.Supply(zap.NewNop()),
		Module,
		fx.Populate(&client, &mem),
	)
	app.RequireStart()

	ctx := context.Background()
	if err := client.Put(ctx, "greeting.txt", []byte("hello")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := client.Get(ctx, "greeting.txt")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Get() = %q, want %q", got, "hello")
	}
	if client.Store() != mem {
		t.Error("client is not backed by the provided memstore")
	}

	app.RequireStop()
	if _, err := client.Get(ctx, "greeting.txt"); err == nil {
		t.Error("Get() after stop succeeded")
	}
}
