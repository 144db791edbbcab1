package converter

import (
	"context"
	"io"
	"os"
)

// CopyFile copies src to dst, creating or truncating dst. The source is only
// opened for reading.
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// EnsureDir creates path and its parents; an existing directory is not an error.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
