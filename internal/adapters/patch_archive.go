package adapters

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"wrapdb-release/internal/ports"
	"wrapdb-release/internal/types"
)

const patchArchiveSuffix = "-patch.zip"

// archiveEpoch is stamped on every entry so that identical trees hash
// identically regardless of checkout time.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type PatchArchiveAdapter struct {
	Level int
}

func NewPatchArchiveAdapter() PatchArchiveAdapter {
	return PatchArchiveAdapter{Level: flate.BestCompression}
}

// PatchArchiveName is the asset name of the patch archive for root.
func PatchArchiveName(root string) string {
	return root + patchArchiveSuffix
}

// Build copies sourceDir to workDir/root and zips it into
// workDir/<root>-patch.zip with entries in lexical order.
func (a PatchArchiveAdapter) Build(sourceDir string, workDir string, root string) (types.PackagedArchive, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return types.PackagedArchive{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("patch directory not found: %s", sourceDir)).
			WithCause(err)
	}
	if !info.IsDir() {
		return types.PackagedArchive{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("patch directory is not a directory: %s", sourceDir))
	}
	staged := filepath.Join(workDir, root)
	if err := CopyTree(sourceDir, staged); err != nil {
		return types.PackagedArchive{}, err
	}
	filename := PatchArchiveName(root)
	archivePath := filepath.Join(workDir, filename)
	if err := a.writeZip(workDir, root, archivePath); err != nil {
		return types.PackagedArchive{}, err
	}
	sum, err := FileSHA256(archivePath)
	if err != nil {
		return types.PackagedArchive{}, err
	}
	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		absPath = archivePath
	}
	return types.PackagedArchive{Path: absPath, Filename: filename, SHA256: sum}, nil
}

func (a PatchArchiveAdapter) writeZip(baseDir string, root string, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return archiveError("failed to create patch archive", err)
	}
	defer out.Close()

	level := a.Level
	if level == 0 {
		level = flate.BestCompression
	}
	writer := zip.NewWriter(out)
	writer.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	walkErr := filepath.WalkDir(filepath.Join(baseDir, root), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if entry.IsDir() {
			header := &zip.FileHeader{Name: name + "/", Method: zip.Store, Modified: archiveEpoch}
			header.SetMode(fs.ModeDir | 0o755)
			_, err := writer.CreateHeader(header)
			return err
		}
		header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: archiveEpoch}
		header.SetMode(normalizedFileMode(info.Mode()))
		dst, err := writer.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(dst, src)
		return err
	})
	if walkErr != nil {
		_ = writer.Close()
		return archiveError("failed to write patch archive", walkErr)
	}
	if err := writer.Close(); err != nil {
		return archiveError("failed to finalize patch archive", err)
	}
	if err := out.Close(); err != nil {
		return archiveError("failed to close patch archive", err)
	}
	return nil
}

func normalizedFileMode(mode fs.FileMode) fs.FileMode {
	if mode.Perm()&0o111 != 0 {
		return 0o755
	}
	return 0o644
}

// FileSHA256 returns the hex encoded SHA-256 of the file at path.
func FileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", archiveError("failed to open archive for hashing", err)
	}
	defer file.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", archiveError("failed to hash archive", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func archiveError(msg string, cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(msg).
		WithCause(cause)
}

var _ ports.PatchArchivePort = PatchArchiveAdapter{}
