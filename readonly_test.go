package vfskit_test

import (
	"context"
	"testing"

	"github.com/gobeaver/vfskit"
)

func TestReadOnlyFileSystemBlocksWrites(t *testing.T) {
	ctx := context.Background()
	fs := newMemWith(t, map[string][]byte{"/f.txt": []byte("data")})
	ro := vfskit.NewReadOnlyFileSystem(fs)

	// reads pass through
	data, err := vfskit.ReadAllBytes(ctx, ro, vfskit.NewPath("/f.txt"))
	if err != nil || string(data) != "data" {
		t.Fatalf("read through = %q, %v", data, err)
	}
	attrs, err := ro.Attributes(ctx, vfskit.NewPath("/f.txt"))
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if !attrs.Has(vfskit.AttrReadOnly) {
		t.Errorf("read-only bit should be set, got %v", attrs)
	}

	// writes are refused
	writeOps := map[string]error{
		"write":     vfskit.WriteAllBytes(ctx, ro, vfskit.NewPath("/new.txt"), []byte("x")),
		"delete":    ro.DeleteFile(ctx, vfskit.NewPath("/f.txt")),
		"createdir": ro.CreateDirectory(ctx, vfskit.NewPath("/d")),
		"movefile":  ro.MoveFile(ctx, vfskit.NewPath("/f.txt"), vfskit.NewPath("/g.txt")),
		"copyfile":  ro.CopyFile(ctx, vfskit.NewPath("/f.txt"), vfskit.NewPath("/g.txt"), true),
		"deletedir": ro.DeleteDirectory(ctx, vfskit.NewPath("/d"), true),
	}
	for op, err := range writeOps {
		if !vfskit.IsReadOnlyError(err) {
			t.Errorf("%s = %v, want ErrReadOnly", op, err)
		}
	}

	// the delegate is untouched
	if ok, _ := fs.FileExists(ctx, vfskit.NewPath("/f.txt")); !ok {
		t.Errorf("delegate file disappeared")
	}
}

func TestReadOnlyFileSystemAllowOptions(t *testing.T) {
	ctx := context.Background()
	fs := newMemWith(t, map[string][]byte{"/f.txt": []byte("data")})
	ro := vfskit.NewReadOnlyFileSystem(fs,
		vfskit.WithAllowCreateDir(true),
		vfskit.WithAllowDelete(true),
	)

	if err := ro.CreateDirectory(ctx, vfskit.NewPath("/staging")); err != nil {
		t.Errorf("CreateDirectory with AllowCreateDir: %v", err)
	}
	if err := ro.DeleteFile(ctx, vfskit.NewPath("/f.txt")); err != nil {
		t.Errorf("DeleteFile with AllowDelete: %v", err)
	}
}

func TestReadOnlyFileSystemOpenFile(t *testing.T) {
	ctx := context.Background()
	fs := newMemWith(t, map[string][]byte{"/f.txt": []byte("data")})
	ro := vfskit.NewReadOnlyFileSystem(fs)

	if _, err := ro.OpenFile(ctx, vfskit.NewPath("/f.txt"), vfskit.OpenModeOpen, vfskit.AccessReadWrite, vfskit.ShareNone); !vfskit.IsReadOnlyError(err) {
		t.Errorf("write access = %v, want ErrReadOnly", err)
	}
	f, err := ro.OpenFile(ctx, vfskit.NewPath("/f.txt"), vfskit.OpenModeOpen, vfskit.AccessRead, vfskit.ShareRead)
	if err != nil {
		t.Fatalf("read access: %v", err)
	}
	f.Close()
}
