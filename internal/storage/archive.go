package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	archiveExt = ".db"
	sealedExt  = ".db.sealed"
)

// ErrArchiveInvalid is returned when a file is not a scored competition database.
var ErrArchiveInvalid = errors.New("not a competition archive")

// ArchiveInfo describes one archive file.
type ArchiveInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string // xxhash64 of the file contents, hex
	Sealed   bool
}

// Archive snapshots the database into dir. The name defaults to a timestamp.
// With a passphrase the snapshot is sealed and the plain copy removed.
func (s *Service) Archive(ctx context.Context, dir, name, passphrase string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if name == "" {
		name = "competition_" + time.Now().Format("20060102_150405")
	}
	path := filepath.Join(dir, name+archiveExt)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("archive already exists: %s", path)
	}

	// VACUUM INTO writes a consistent copy without blocking readers.
	if _, err := s.db.conn.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to snapshot database: %w", err)
	}
	if err := VerifyArchive(ctx, path); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	if passphrase == "" {
		return path, nil
	}

	sealed := filepath.Join(dir, name+sealedExt)
	if err := sealFile(path, sealed, passphrase); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove unsealed snapshot: %w", err)
	}
	return sealed, nil
}

// VerifyArchive checks that path is a database with the scoring schema.
func VerifyArchive(ctx context.Context, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var sessions int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&sessions); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveInvalid, err)
	}
	return nil
}

// RestoreArchive replaces the database at dbPath with an archive. The
// current database is kept next to it with an .old suffix. The database must
// not be open.
func RestoreArchive(ctx context.Context, archivePath, dbPath, passphrase string) error {
	tempPath := dbPath + ".restore.tmp"

	if strings.HasSuffix(archivePath, sealedExt) {
		if passphrase == "" {
			return errors.New("archive is sealed, a passphrase is required")
		}
		if err := openSealedFile(archivePath, tempPath, passphrase); err != nil {
			return err
		}
	} else if err := copyFile(archivePath, tempPath); err != nil {
		return err
	}

	if err := VerifyArchive(ctx, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if _, err := os.Stat(dbPath); err == nil {
		old := dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(dbPath, old); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
	}
	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to install restored database: %w", err)
	}
	return nil
}

// ListArchives lists the archives in dir, newest first. A missing directory
// has no archives.
func ListArchives(dir string) ([]ArchiveInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []ArchiveInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	archives := []ArchiveInfo{}
	for _, entry := range entries {
		name := entry.Name()
		sealed := strings.HasSuffix(name, sealedExt)
		if entry.IsDir() || (!sealed && filepath.Ext(name) != archiveExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		path := filepath.Join(dir, name)
		checksum, err := fileChecksum(path)
		if err != nil {
			checksum = "unknown"
		}
		archives = append(archives, ArchiveInfo{
			Path:     path,
			Name:     name,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Checksum: checksum,
			Sealed:   sealed,
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].ModTime.After(archives[j].ModTime)
	})
	return archives, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy archive: %w", err)
	}
	return nil
}
