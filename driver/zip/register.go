package zip

import (
	"fmt"

	"github.com/gobeaver/vfskit"
)

func init() {
	vfskit.RegisterDriver("zip", func(cfg *vfskit.Config) (vfskit.FileSystem, error) {
		if cfg.ZipPath == "" {
			return nil, fmt.Errorf("zip driver requires ZipPath to be set to the archive path")
		}
		return Open(cfg.ZipPath)
	})
}
