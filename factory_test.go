package vfskit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gobeaver/vfskit"
	"github.com/gobeaver/vfskit/driver/local"
	"github.com/gobeaver/vfskit/driver/memory"
)

// the driver imports register their factories as a side effect
var _ = memory.New
var _ = local.New

func TestCreateDriverFromConfig(t *testing.T) {
	ctx := context.Background()
	fs, err := vfskit.CreateDriver(&vfskit.Config{Driver: "memory"})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}
	defer fs.Close()

	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/probe"), []byte("x")); err != nil {
		t.Fatalf("configured backend is not usable: %v", err)
	}
}

func TestCreateDriverUnknownName(t *testing.T) {
	_, err := vfskit.CreateDriver(&vfskit.Config{Driver: "bogus"})
	if !errors.Is(err, vfskit.ErrNotSupported) {
		t.Fatalf("unknown driver = %v, want ErrNotSupported", err)
	}
}

func TestDriversListsRegisteredBackends(t *testing.T) {
	names := vfskit.Drivers()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["memory"] || !seen["local"] {
		t.Errorf("Drivers() = %v, want memory and local present", names)
	}
}
