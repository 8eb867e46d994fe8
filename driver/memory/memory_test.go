package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gobeaver/vfskit"
)

func TestWriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := New()

	p := vfskit.NewPath("/a/b/c.txt")
	if err := fs.CreateDirectory(ctx, p.Parent()); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := vfskit.WriteAllBytes(ctx, fs, p, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := vfskit.ReadAllBytes(ctx, fs, p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0] != 0x01 || got[1] != 0x02 {
		t.Errorf("round trip = %v", got)
	}
}

func TestOpenFileParentMustExist(t *testing.T) {
	ctx := context.Background()
	fs := New()
	_, err := fs.OpenFile(ctx, vfskit.NewPath("/missing/f.txt"), vfskit.OpenModeCreate, vfskit.AccessWrite, vfskit.ShareNone)
	if !errors.Is(err, vfskit.ErrNotExist) {
		t.Errorf("create under missing dir = %v, want ErrNotExist", err)
	}
}

func TestDirectoryOverFileRefused(t *testing.T) {
	ctx := context.Background()
	fs := New()
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/f"), []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := fs.CreateDirectory(ctx, vfskit.NewPath("/f/sub")); !errors.Is(err, vfskit.ErrNotDir) {
		t.Errorf("mkdir through file = %v, want ErrNotDir", err)
	}
	if _, err := fs.OpenRead(ctx, vfskit.NewPath("/f/sub")); err == nil {
		t.Errorf("open through file should fail")
	}
}

func TestMoveDirectory(t *testing.T) {
	ctx := context.Background()
	fs := New()
	if err := fs.CreateDirectory(ctx, vfskit.NewPath("/src/sub")); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/src/sub/f.txt"), []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := fs.MoveDirectory(ctx, vfskit.NewPath("/src"), vfskit.NewPath("/dst")); err != nil {
		t.Fatalf("move: %v", err)
	}
	if ok, _ := fs.FileExists(ctx, vfskit.NewPath("/dst/sub/f.txt")); !ok {
		t.Errorf("tree content missing after move")
	}
	if ok, _ := fs.DirectoryExists(ctx, vfskit.NewPath("/src")); ok {
		t.Errorf("source dir still present")
	}

	// moving a directory into its own subtree is refused
	if err := fs.MoveDirectory(ctx, vfskit.NewPath("/dst"), vfskit.NewPath("/dst/sub/inner")); err == nil {
		t.Errorf("move into own subtree should fail")
	}
}

func TestReplaceFile(t *testing.T) {
	ctx := context.Background()
	fs := New()
	src := vfskit.NewPath("/src.txt")
	dst := vfskit.NewPath("/dst.txt")
	backup := vfskit.NewPath("/dst.bak")
	if err := vfskit.WriteAllBytes(ctx, fs, src, []byte("new")); err != nil {
		t.Fatal(err)
	}
	if err := vfskit.WriteAllBytes(ctx, fs, dst, []byte("old")); err != nil {
		t.Fatal(err)
	}

	if err := fs.ReplaceFile(ctx, src, dst, backup, false); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := vfskit.ReadAllBytes(ctx, fs, dst)
	if string(got) != "new" {
		t.Errorf("dst = %q", got)
	}
	got, _ = vfskit.ReadAllBytes(ctx, fs, backup)
	if string(got) != "old" {
		t.Errorf("backup = %q", got)
	}
	if ok, _ := fs.FileExists(ctx, src); ok {
		t.Errorf("src should be gone")
	}
}

func TestSetAttributesAndTimes(t *testing.T) {
	ctx := context.Background()
	fs := New()
	p := vfskit.NewPath("/f")
	if err := vfskit.WriteAllBytes(ctx, fs, p, []byte("x")); err != nil {
		t.Fatal(err)
	}

	if err := fs.SetAttributes(ctx, p, vfskit.AttrReadOnly|vfskit.AttrHidden); err != nil {
		t.Fatalf("set attrs: %v", err)
	}
	attrs, err := fs.Attributes(ctx, p)
	if err != nil || !attrs.Has(vfskit.AttrReadOnly|vfskit.AttrHidden) {
		t.Errorf("attrs = %v, %v", attrs, err)
	}

	want := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	if err := fs.SetLastWriteTime(ctx, p, want); err != nil {
		t.Fatalf("set mtime: %v", err)
	}
	got, err := fs.LastWriteTime(ctx, p)
	if err != nil || !got.Equal(want) {
		t.Errorf("mtime = %v, %v", got, err)
	}
}

func TestMaxSizeEnforced(t *testing.T) {
	ctx := context.Background()
	fs := New(Config{MaxSize: 4})

	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/ok"), []byte("1234")); err != nil {
		t.Fatalf("write within cap: %v", err)
	}
	err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/over"), []byte("5"))
	if !errors.Is(err, ErrNoSpace) {
		t.Errorf("write over cap = %v, want ErrNoSpace", err)
	}
}

func TestWatchRenamedEvent(t *testing.T) {
	ctx := context.Background()
	fs := New()
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/old.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	w, err := fs.Watch(vfskit.Root)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()
	w.SetFilter("*")
	w.SetEnableRaisingEvents(true)

	renames := make(chan vfskit.FileRenamedEvent, 1)
	w.OnRenamed(func(ev vfskit.FileRenamedEvent) { renames <- ev })

	if err := fs.MoveFile(ctx, vfskit.NewPath("/old.txt"), vfskit.NewPath("/new.txt")); err != nil {
		t.Fatalf("move: %v", err)
	}

	select {
	case ev := <-renames:
		if ev.OldFullPath != vfskit.NewPath("/old.txt") || ev.FullPath != vfskit.NewPath("/new.txt") {
			t.Errorf("rename = %q -> %q", ev.OldFullPath, ev.FullPath)
		}
		if ev.Kind != vfskit.ChangeRenamed {
			t.Errorf("kind = %v", ev.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rename event")
	}
}

func TestWatchDeleteEvent(t *testing.T) {
	ctx := context.Background()
	fs := New()
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/f.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	w, err := fs.Watch(vfskit.Root)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()
	w.SetFilter("*")
	w.SetEnableRaisingEvents(true)

	deletes := make(chan vfskit.FileChangedEvent, 1)
	w.OnDeleted(func(ev vfskit.FileChangedEvent) { deletes <- ev })

	if err := fs.DeleteFile(ctx, vfskit.NewPath("/f.txt")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case ev := <-deletes:
		if ev.FullPath != vfskit.NewPath("/f.txt") {
			t.Errorf("deleted path = %q", ev.FullPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delete event")
	}
}

func TestEnumerateTargets(t *testing.T) {
	ctx := context.Background()
	fs := New()
	if err := fs.CreateDirectory(ctx, vfskit.NewPath("/dir")); err != nil {
		t.Fatal(err)
	}
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/file"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	count := func(target vfskit.SearchTarget) int {
		n := 0
		for _, err := range fs.EnumeratePaths(ctx, vfskit.Root, "*", false, target) {
			if err != nil {
				t.Fatalf("enumerate: %v", err)
			}
			n++
		}
		return n
	}
	if got := count(vfskit.SearchBoth); got != 2 {
		t.Errorf("both = %d", got)
	}
	if got := count(vfskit.SearchFile); got != 1 {
		t.Errorf("files = %d", got)
	}
	if got := count(vfskit.SearchDirectory); got != 1 {
		t.Errorf("dirs = %d", got)
	}
}
