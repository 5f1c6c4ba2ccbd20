// Package fsops performs the installed-tree writes of a sync run. Each copy
// runs as its own synthfs pipeline so a failure stays scoped to one file.
package fsops

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/cogsync/pkg/errors"
	"github.com/arthur-debert/cogsync/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Mode values for CopyFile
const (
	// KeepMode reuses the destination's mode when it exists, else the source's.
	KeepMode fs.FileMode = 0

	// ExecMode is used for runnable payloads.
	ExecMode fs.FileMode = 0755

	// DataMode is used for plain documents.
	DataMode fs.FileMode = 0644
)

// Temp siblings are named .<base>.cogsync-<32 hex>.tmp
var tempPattern = regexp.MustCompile(`^\.(.+)\.cogsync-[0-9a-f]{32}\.tmp$`)

// IsTempFile reports whether name is a temp file left by an interrupted copy.
func IsTempFile(name string) bool {
	return tempPattern.MatchString(filepath.Base(name))
}

func tempName(destination string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return filepath.Join(filepath.Dir(destination), "."+filepath.Base(destination)+".cogsync-"+id+".tmp")
}

// RemoveStaleTemps deletes temp files under root left behind by killed runs.
// Callers must hold the run lock.
func RemoveStaleTemps(root string) ([]string, error) {
	logger := logging.GetLogger("fsops")
	var removed []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsTempFile(path) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Cannot remove stale temp file")
			return nil
		}
		logger.Info().Str("path", path).Msg("Removed stale temp file")
		removed = append(removed, path)
		return nil
	})
	if err != nil && os.IsNotExist(err) {
		return nil, nil
	}
	return removed, err
}

// removeStaleSiblings drops earlier temp files for destination.
func removeStaleSiblings(fsys filesystem.FileSystem, destination string) {
	dir, base := filepath.Dir(destination), filepath.Base(destination)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if m := tempPattern.FindStringSubmatch(e.Name()); m != nil && m[1] == base {
			_ = fsys.Remove(filepath.Join(dir, e.Name()))
		}
	}
}

// Writer copies template bytes into the installed tree.
type Writer interface {
	CopyFile(ctx context.Context, src, dst string, mode fs.FileMode) error
}

// SynthWriter is the Writer used by real runs.
type SynthWriter struct {
	logger     zerolog.Logger
	filesystem filesystem.FullFileSystem
	seq        atomic.Uint64
}

// New creates a SynthWriter over the OS filesystem with absolute paths.
func New() *SynthWriter {
	osfs := filesystem.NewOSFileSystem("/")
	pathAwareFS := synthfs.NewPathAwareFileSystem(osfs, "/").WithAbsolutePaths()

	return &SynthWriter{
		logger:     logging.GetLogger("fsops"),
		filesystem: pathAwareFS,
	}
}

// CopyFile replaces dst with the bytes of src. The write goes to a uniquely
// named sibling temp file that is renamed over dst, so an interrupted copy
// never leaves a truncated destination. Temp files of earlier interrupted
// copies to dst are removed first.
func (w *SynthWriter) CopyFile(ctx context.Context, src, dst string, mode fs.FileMode) error {
	if mode == KeepMode {
		mode = resolveMode(src, dst)
	}

	sfs := synthfs.New()
	id := fmt.Sprintf("copy_%s_%d_%d", filepath.Base(dst), time.Now().UnixNano(), w.seq.Add(1))
	op := sfs.CustomOperationWithID(id, func(ctx context.Context, fsys filesystem.FileSystem) error {
		return copyFile(fsys, src, dst, mode)
	})

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	w.logger.Debug().
		Str("source", src).
		Str("target", dst).
		Str("mode", mode.String()).
		Msg("Copying template file")

	if _, err := synthfs.RunWithOptions(ctx, w.filesystem, options, op); err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "failed to copy %s", filepath.Base(dst)).
			WithDetail("source", src).
			WithDetail("target", dst)
	}
	return nil
}

type renamer interface {
	Rename(oldpath, newpath string) error
}

type chmoder interface {
	Chmod(name string, mode fs.FileMode) error
}

// copyFile copies a file from source to destination using the filesystem interface
func copyFile(fsys filesystem.FileSystem, source, destination string, mode fs.FileMode) error {
	destDir := filepath.Dir(destination)
	if destDir != "." && destDir != "/" {
		if err := fsys.MkdirAll(destDir, 0755); err != nil {
			return fmt.Errorf("failed to create destination directory %s: %w", destDir, err)
		}
	}

	srcFile, err := fsys.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", source, err)
	}
	defer func() { _ = srcFile.Close() }()

	content, err := io.ReadAll(srcFile)
	if err != nil {
		return fmt.Errorf("failed to read source file %s: %w", source, err)
	}

	r, ok := fsys.(renamer)
	if !ok {
		if err := fsys.WriteFile(destination, content, mode); err != nil {
			return fmt.Errorf("failed to write destination file %s: %w", destination, err)
		}
		return applyMode(fsys, destination, mode)
	}

	removeStaleSiblings(fsys, destination)
	tmp := tempName(destination)
	if err := fsys.WriteFile(tmp, content, mode); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", tmp, err)
	}
	if err := applyMode(fsys, tmp, mode); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	if err := r.Rename(tmp, destination); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", destination, err)
	}
	return nil
}

// applyMode sets mode explicitly since WriteFile is subject to the umask and
// leaves existing files' modes alone.
func applyMode(fsys filesystem.FileSystem, name string, mode fs.FileMode) error {
	if c, ok := fsys.(chmoder); ok {
		return c.Chmod(name, mode)
	}
	return os.Chmod(name, mode)
}

func resolveMode(src, dst string) fs.FileMode {
	if info, err := os.Stat(dst); err == nil {
		return info.Mode().Perm()
	}
	if info, err := os.Stat(src); err == nil {
		return info.Mode().Perm()
	}
	return DataMode
}

// SkillMode keeps the template's executable bits for skill files.
func SkillMode(src string) fs.FileMode {
	info, err := os.Stat(src)
	if err != nil {
		return DataMode
	}
	if info.Mode().Perm()&0111 != 0 {
		return ExecMode
	}
	return DataMode
}
