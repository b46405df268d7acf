package convert

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ToFile converts value to bytes, writes them to path and returns the number
// of bytes written.
//
// By default the file is created or truncated in place, so a failed write
// can leave a partial file behind. With WithAtomicWrites the data goes to a
// temporary file in the same directory that is renamed over path once
// complete.
func (c *Converter) ToFile(ctx context.Context, value any, path string, kind Kind) (int, error) {
	data, err := c.ToBytes(ctx, value, kind)
	if err != nil {
		return 0, err
	}
	if c.atomic {
		return writeAtomic(path, data)
	}
	return writeInPlace(path, data)
}

func writeInPlace(path string, data []byte) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create file")
	}
	n, err := f.Write(data)
	if err != nil {
		f.Close()
		return n, errors.Wrap(err, "failed to write file")
	}
	if err := f.Close(); err != nil {
		return n, errors.Wrap(err, "failed to close file")
	}
	return n, nil
}

func writeAtomic(path string, data []byte) (int, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	n, err := tmp.Write(data)
	if err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "failed to write temporary file")
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "failed to set file mode")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, errors.Wrap(err, "failed to sync temporary file")
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close temporary file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, errors.Wrap(err, "failed to move file into place")
	}
	tmpName = ""
	return n, nil
}
