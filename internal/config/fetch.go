package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads a single config file from src to dst. src is any go-getter
// address: a local path, http(s) URL, git::, s3:: or gcs:: source, with an
// optional //subpath. Relative local paths resolve against the working directory.
func Fetch(ctx context.Context, src, dst string) error {
	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch config %s: %w", src, err)
	}
	return nil
}

// FetchAndLoad downloads src into dir and loads it.
func FetchAndLoad(ctx context.Context, src, dir string) (*Config, error) {
	dst := filepath.Join(dir, "config.yaml")
	if err := Fetch(ctx, src, dst); err != nil {
		return nil, err
	}
	return Load(dst)
}
