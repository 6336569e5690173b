package testutils

import (
	"github.com/mandelsoft/vfs/pkg/layerfs"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/projectionfs"
	"github.com/mandelsoft/vfs/pkg/readonlyfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// TestFileSystem provides the content of a local directory as root
// of a file system. Unless readonly, changes are kept in a memory
// layer and never touch the directory.
func TestFileSystem(dir string, readonly bool) (vfs.FileSystem, error) {
	base, err := projectionfs.New(osfs.OsFs, dir)
	if err != nil {
		return nil, err
	}
	base = readonlyfs.New(base)
	if readonly {
		return base, nil
	}
	return layerfs.New(memoryfs.New(), base), nil
}

// NewMemoryFileSystem provides an empty file system with the given
// directories.
func NewMemoryFileSystem(dirs ...string) (vfs.FileSystem, error) {
	fs := memoryfs.New()
	for _, d := range dirs {
		if err := fs.MkdirAll(d, 0o700); err != nil {
			return nil, err
		}
	}
	return fs, nil
}
