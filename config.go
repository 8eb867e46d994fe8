package vfskit

import (
	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Default driver to use (memory, local, zip)
	Driver string `env:"VFSKIT_DRIVER,default:memory"`

	// Local driver configuration
	LocalRoot string `env:"VFSKIT_LOCAL_ROOT,default:./storage"`

	// Zip driver configuration: path to the archive file
	ZipPath string `env:"VFSKIT_ZIP_PATH"`

	// Memory driver configuration: maximum total size in bytes (0 = unlimited)
	MemoryMaxSize int64 `env:"VFSKIT_MEMORY_MAX_SIZE,default:0"`

	// Watcher buffer size; loaded with the rest of the config, but no driver
	// or watcher reads it: watchers start with DefaultBufferSize
	WatchBufferSize int `env:"VFSKIT_WATCH_BUFFER_SIZE,default:16"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
