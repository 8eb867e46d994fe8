package vfskit_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/gobeaver/vfskit"
	"github.com/gobeaver/vfskit/driver/memory"
)

func TestMountFSRouting(t *testing.T) {
	ctx := context.Background()
	fsA := memory.New()
	fsB := memory.New()

	m := vfskit.NewMountFS()
	if err := m.Mount(vfskit.NewPath("/a"), fsA); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := m.Mount(vfskit.NewPath("/b"), fsB); err != nil {
		t.Fatalf("mount: %v", err)
	}

	if err := vfskit.WriteAllBytes(ctx, m, vfskit.NewPath("/a/file.txt"), []byte("A")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// the write landed on fsA under the stripped path
	data, err := vfskit.ReadAllBytes(ctx, fsA, vfskit.NewPath("/file.txt"))
	if err != nil || string(data) != "A" {
		t.Fatalf("backend read = %q, %v", data, err)
	}
	// and reads back through the mount
	data, err = vfskit.ReadAllBytes(ctx, m, vfskit.NewPath("/a/file.txt"))
	if err != nil || string(data) != "A" {
		t.Fatalf("mount read = %q, %v", data, err)
	}

	if _, err := m.OpenRead(ctx, vfskit.NewPath("/c/file.txt")); !errors.Is(err, vfskit.ErrMountNotFound) {
		t.Errorf("unmounted path = %v, want ErrMountNotFound", err)
	}
}

func TestMountFSDuplicateAndUnmount(t *testing.T) {
	m := vfskit.NewMountFS()
	fs := memory.New()
	if err := m.Mount(vfskit.NewPath("/a"), fs); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := m.Mount(vfskit.NewPath("/a"), fs); !errors.Is(err, vfskit.ErrMountExists) {
		t.Errorf("duplicate mount = %v, want ErrMountExists", err)
	}
	if err := m.Unmount(vfskit.NewPath("/a")); err != nil {
		t.Fatalf("unmount: %v", err)
	}
	if err := m.Unmount(vfskit.NewPath("/a")); !errors.Is(err, vfskit.ErrMountNotFound) {
		t.Errorf("second unmount = %v, want ErrMountNotFound", err)
	}
}

func TestMountFSLongestPrefixWins(t *testing.T) {
	ctx := context.Background()
	outer := memory.New()
	nested := memory.New()

	m := vfskit.NewMountFS()
	m.Mount(vfskit.NewPath("/data"), outer)
	m.Mount(vfskit.NewPath("/data/archive"), nested)

	if err := vfskit.WriteAllBytes(ctx, m, vfskit.NewPath("/data/archive/x"), []byte("n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ok, _ := nested.FileExists(ctx, vfskit.NewPath("/x")); !ok {
		t.Errorf("nested mount should own /data/archive/x")
	}
	if ok, _ := outer.FileExists(ctx, vfskit.NewPath("/archive/x")); ok {
		t.Errorf("outer mount must not see the nested write")
	}
}

func TestMountFSVirtualListing(t *testing.T) {
	ctx := context.Background()
	m := vfskit.NewMountFS()
	m.Mount(vfskit.NewPath("/mem"), memory.New())
	m.Mount(vfskit.NewPath("/cloud/archive"), memory.New())

	var names []string
	for p, err := range m.EnumeratePaths(ctx, vfskit.Root, "*", false, vfskit.SearchDirectory) {
		if err != nil {
			t.Fatalf("enumerate: %v", err)
		}
		names = append(names, p.String())
	}
	sort.Strings(names)
	want := []string{"/cloud", "/mem"}
	if len(names) != len(want) || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("root listing = %v, want %v", names, want)
	}

	if ok, _ := m.DirectoryExists(ctx, vfskit.NewPath("/cloud")); !ok {
		t.Errorf("/cloud should exist as a virtual directory")
	}
}

func TestMountFSCrossMountCopyAndMove(t *testing.T) {
	ctx := context.Background()
	fsA := memory.New()
	fsB := memory.New()

	m := vfskit.NewMountFS()
	m.Mount(vfskit.NewPath("/a"), fsA)
	m.Mount(vfskit.NewPath("/b"), fsB)

	if err := vfskit.WriteAllBytes(ctx, m, vfskit.NewPath("/a/src.txt"), []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := m.CopyFile(ctx, vfskit.NewPath("/a/src.txt"), vfskit.NewPath("/b/copy.txt"), false); err != nil {
		t.Fatalf("cross-mount copy: %v", err)
	}
	data, err := vfskit.ReadAllBytes(ctx, fsB, vfskit.NewPath("/copy.txt"))
	if err != nil || string(data) != "payload" {
		t.Fatalf("copied content = %q, %v", data, err)
	}

	// copy again without overwrite must refuse
	err = m.CopyFile(ctx, vfskit.NewPath("/a/src.txt"), vfskit.NewPath("/b/copy.txt"), false)
	if !errors.Is(err, vfskit.ErrDestinationExists) {
		t.Errorf("copy onto existing = %v, want ErrDestinationExists", err)
	}

	if err := m.MoveFile(ctx, vfskit.NewPath("/a/src.txt"), vfskit.NewPath("/b/moved.txt")); err != nil {
		t.Fatalf("cross-mount move: %v", err)
	}
	if ok, _ := fsA.FileExists(ctx, vfskit.NewPath("/src.txt")); ok {
		t.Errorf("source should be gone after move")
	}
	if ok, _ := fsB.FileExists(ctx, vfskit.NewPath("/moved.txt")); !ok {
		t.Errorf("destination missing after move")
	}
}

func TestMountFSWatchFansAcrossMounts(t *testing.T) {
	ctx := context.Background()
	fsA := memory.New()
	fsB := memory.New()

	m := vfskit.NewMountFS()
	m.Mount(vfskit.NewPath("/a"), fsA)
	m.Mount(vfskit.NewPath("/b"), fsB)

	w, err := m.Watch(vfskit.Root)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()
	w.SetFilter("*")
	w.SetIncludeSubdirectories(true)
	w.SetEnableRaisingEvents(true)

	events := make(chan vfskit.FileChangedEvent, 8)
	w.OnCreated(func(ev vfskit.FileChangedEvent) { events <- ev })

	if err := vfskit.WriteAllBytes(ctx, m, vfskit.NewPath("/a/x"), []byte("1")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := vfskit.WriteAllBytes(ctx, m, vfskit.NewPath("/b/y"), []byte("2")); err != nil {
		t.Fatalf("write: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			seen[ev.FullPath.String()] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	if !seen["/a/x"] || !seen["/b/y"] {
		t.Errorf("events not translated into mount space: %v", seen)
	}
}
