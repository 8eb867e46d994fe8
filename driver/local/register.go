package local

import "github.com/gobeaver/vfskit"

func init() {
	vfskit.RegisterDriver("local", func(cfg *vfskit.Config) (vfskit.FileSystem, error) {
		return New(cfg.LocalRoot)
	})
}
