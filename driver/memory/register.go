package memory

import "github.com/gobeaver/vfskit"

func init() {
	vfskit.RegisterDriver("memory", func(cfg *vfskit.Config) (vfskit.FileSystem, error) {
		return New(Config{MaxSize: cfg.MemoryMaxSize}), nil
	})
}
