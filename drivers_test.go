package vfskit_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gobeaver/vfskit"
	"github.com/gobeaver/vfskit/driver/local"
	"github.com/gobeaver/vfskit/driver/memory"
)

// backend constructors exercised by the shared contract tests
func contractBackends(t *testing.T) map[string]vfskit.FileSystem {
	t.Helper()
	lfs, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	return map[string]vfskit.FileSystem{
		"memory": memory.New(),
		"local":  lfs,
	}
}

func TestBackendContractDirectories(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			dir := vfskit.NewPath("/d/e")

			if err := fs.CreateDirectory(ctx, dir); err != nil {
				t.Fatalf("CreateDirectory: %v", err)
			}
			if ok, _ := fs.DirectoryExists(ctx, dir); !ok {
				t.Fatalf("directory should exist after create")
			}
			// idempotent
			if err := fs.CreateDirectory(ctx, dir); err != nil {
				t.Fatalf("CreateDirectory twice: %v", err)
			}

			// non-empty delete refuses, recursive succeeds
			if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/d/e.txt"), []byte("x")); err != nil {
				t.Fatalf("write: %v", err)
			}
			err := fs.DeleteDirectory(ctx, vfskit.NewPath("/d"), false)
			if !isErr(err, vfskit.ErrNotEmpty) {
				t.Fatalf("non-recursive delete = %v, want ErrNotEmpty", err)
			}
			if err := fs.DeleteDirectory(ctx, vfskit.NewPath("/d"), true); err != nil {
				t.Fatalf("recursive delete: %v", err)
			}
			if ok, _ := fs.DirectoryExists(ctx, vfskit.NewPath("/d")); ok {
				t.Errorf("directory still present after recursive delete")
			}
			if ok, _ := fs.FileExists(ctx, vfskit.NewPath("/d/e.txt")); ok {
				t.Errorf("descendant still present after recursive delete")
			}
		})
	}
}

func TestBackendContractReadWriteRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			p := vfskit.NewPath("/blob.bin")
			payload := []byte{0x00, 0x01, 0xFE, 0xFF}

			if err := vfskit.WriteAllBytes(ctx, fs, p, payload); err != nil {
				t.Fatalf("write: %v", err)
			}
			got, err := vfskit.ReadAllBytes(ctx, fs, p)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip = %v, want %v", got, payload)
			}
			n, err := fs.FileLength(ctx, p)
			if err != nil || n != int64(len(payload)) {
				t.Errorf("length = %d, %v", n, err)
			}
		})
	}
}

func TestBackendContractCopyOverwriteGuard(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			x := vfskit.NewPath("/x")
			y := vfskit.NewPath("/y")
			if err := vfskit.WriteAllBytes(ctx, fs, x, []byte("xx")); err != nil {
				t.Fatalf("write x: %v", err)
			}
			if err := vfskit.WriteAllBytes(ctx, fs, y, []byte("yy")); err != nil {
				t.Fatalf("write y: %v", err)
			}

			err := fs.CopyFile(ctx, x, y, false)
			if !isErr(err, vfskit.ErrDestinationExists) {
				t.Fatalf("copy no-overwrite = %v, want ErrDestinationExists", err)
			}
			if err := fs.CopyFile(ctx, x, y, true); err != nil {
				t.Fatalf("copy overwrite: %v", err)
			}
			got, _ := vfskit.ReadAllBytes(ctx, fs, y)
			if string(got) != "xx" {
				t.Errorf("destination = %q, want %q", got, "xx")
			}
		})
	}
}

func TestBackendContractMoveFile(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			a := vfskit.NewPath("/a.txt")
			b := vfskit.NewPath("/b.txt")
			if err := vfskit.WriteAllBytes(ctx, fs, a, []byte("move me")); err != nil {
				t.Fatalf("write: %v", err)
			}

			if err := fs.MoveFile(ctx, a, b); err != nil {
				t.Fatalf("move: %v", err)
			}
			if ok, _ := fs.FileExists(ctx, a); ok {
				t.Errorf("source still exists")
			}
			if ok, _ := fs.FileExists(ctx, b); !ok {
				t.Errorf("destination missing")
			}

			// moving onto an existing file refuses
			if err := vfskit.WriteAllBytes(ctx, fs, a, []byte("again")); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := fs.MoveFile(ctx, a, b); !isErr(err, vfskit.ErrDestinationExists) {
				t.Errorf("move onto existing = %v, want ErrDestinationExists", err)
			}
		})
	}
}

func TestBackendContractOpenModes(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			p := vfskit.NewPath("/file.txt")

			// CreateNew on a fresh path succeeds, on an existing one fails
			f, err := fs.OpenFile(ctx, p, vfskit.OpenModeCreateNew, vfskit.AccessWrite, vfskit.ShareNone)
			if err != nil {
				t.Fatalf("CreateNew: %v", err)
			}
			f.Write([]byte("one"))
			f.Close()
			if _, err := fs.OpenFile(ctx, p, vfskit.OpenModeCreateNew, vfskit.AccessWrite, vfskit.ShareNone); !isErr(err, vfskit.ErrExist) {
				t.Fatalf("CreateNew on existing = %v, want ErrExist", err)
			}

			// Append positions at the end
			f, err = fs.OpenFile(ctx, p, vfskit.OpenModeAppend, vfskit.AccessWrite, vfskit.ShareNone)
			if err != nil {
				t.Fatalf("Append: %v", err)
			}
			f.Write([]byte("two"))
			f.Close()
			got, _ := vfskit.ReadAllBytes(ctx, fs, p)
			if string(got) != "onetwo" {
				t.Errorf("after append = %q", got)
			}

			// Truncate empties an existing file and requires it to exist
			f, err = fs.OpenFile(ctx, p, vfskit.OpenModeTruncate, vfskit.AccessWrite, vfskit.ShareNone)
			if err != nil {
				t.Fatalf("Truncate: %v", err)
			}
			f.Close()
			if n, _ := fs.FileLength(ctx, p); n != 0 {
				t.Errorf("length after truncate = %d", n)
			}
			if _, err := fs.OpenFile(ctx, vfskit.NewPath("/absent"), vfskit.OpenModeTruncate, vfskit.AccessWrite, vfskit.ShareNone); !isErr(err, vfskit.ErrNotExist) {
				t.Errorf("Truncate on missing = %v, want ErrNotExist", err)
			}
			if _, err := fs.OpenFile(ctx, vfskit.NewPath("/absent"), vfskit.OpenModeOpen, vfskit.AccessRead, vfskit.ShareRead); !isErr(err, vfskit.ErrNotExist) {
				t.Errorf("Open on missing = %v, want ErrNotExist", err)
			}
		})
	}
}

func TestBackendContractEnumerate(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			files := []string{"/a.txt", "/b.log", "/sub/c.txt"}
			for _, f := range files {
				p := vfskit.NewPath(f)
				if err := fs.CreateDirectory(ctx, p.Parent()); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
				if err := vfskit.WriteAllBytes(ctx, fs, p, []byte("x")); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			pattern := vfskit.MustParseFilter("*.txt")
			var got []string
			for p, err := range fs.EnumeratePaths(ctx, vfskit.Root, "*.txt", true, vfskit.SearchFile) {
				if err != nil {
					t.Fatalf("enumerate: %v", err)
				}
				if !p.IsAbsolute() {
					t.Errorf("result %q not absolute", p)
				}
				if !pattern.Match(p.Name()) {
					t.Errorf("result %q does not satisfy the filter", p)
				}
				got = append(got, p.String())
			}
			if len(got) != 2 {
				t.Errorf("matches = %v, want /a.txt and /sub/c.txt", got)
			}
		})
	}
}

func TestBackendContractRejectsRelativePaths(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			rel := vfskit.NewPath("not/absolute")
			if err := fs.CreateDirectory(ctx, rel); !vfskit.IsInvalidPath(err) {
				t.Errorf("CreateDirectory(relative) = %v, want ErrInvalidPath", err)
			}
			if err := fs.DeleteFile(ctx, rel); !vfskit.IsInvalidPath(err) {
				t.Errorf("DeleteFile(relative) = %v, want ErrInvalidPath", err)
			}
			if _, err := fs.OpenRead(ctx, vfskit.UPath{}); !vfskit.IsInvalidPath(err) {
				t.Errorf("OpenRead(null) = %v, want ErrInvalidPath", err)
			}
		})
	}
}

func TestBackendContractTimesSentinel(t *testing.T) {
	ctx := context.Background()
	for name, fs := range contractBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer fs.Close()
			missing := vfskit.NewPath("/nope")
			for opName, op := range map[string]func(context.Context, vfskit.UPath) (time.Time, error){
				"creation":   fs.CreationTime,
				"lastaccess": fs.LastAccessTime,
				"lastwrite":  fs.LastWriteTime,
			} {
				got, err := op(ctx, missing)
				if err != nil {
					t.Errorf("%s time on missing: %v", opName, err)
				}
				if !got.Equal(vfskit.DefaultFileTime) {
					t.Errorf("%s time on missing = %v, want sentinel", opName, got)
				}
			}
		})
	}
}

// Scenario: watcher on / with filter *.log, non-recursive.
func TestBackendWatcherFilterScenario(t *testing.T) {
	ctx := context.Background()
	fs := memory.New()
	defer fs.Close()
	if err := fs.CreateDirectory(ctx, vfskit.NewPath("/sub")); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := fs.Watch(vfskit.Root)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer w.Close()
	w.SetFilter("*.log")
	w.SetEnableRaisingEvents(true)

	events := make(chan vfskit.FileChangedEvent, 8)
	w.OnCreated(func(ev vfskit.FileChangedEvent) { events <- ev })

	// these two must not raise
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/a.txt"), []byte("t")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/sub/a.log"), []byte("n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// this one does; FIFO order per watcher means any stray event from the
	// writes above would have arrived first
	if err := vfskit.WriteAllBytes(ctx, fs, vfskit.NewPath("/a.log"), []byte("l")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-events:
		if ev.FullPath != vfskit.NewPath("/a.log") {
			t.Fatalf("got %q, want /a.log", ev.FullPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for /a.log")
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected event %q", ev.FullPath)
	case <-time.After(100 * time.Millisecond):
	}
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
