package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/ramonehamilton/bridge-scorer/internal/storage"
)

// envArchivePassphrase seals new archives and opens sealed ones.
const envArchivePassphrase = "BRIDGE_ARCHIVE_PASSPHRASE"

func runArchive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	dir := fs.String("dir", "", "Archive directory (default: archives/ next to the database)")
	name := fs.String("name", "", "Archive name (default: timestamp)")
	list := fs.Bool("list", false, "List archives")
	restore := fs.String("restore", "", "Restore this archive over the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	archiveDir := *dir
	if archiveDir == "" {
		archiveDir = filepath.Join(filepath.Dir(cfg.Storage.Path), "archives")
	}
	passphrase := os.Getenv(envArchivePassphrase)

	switch {
	case *list:
		archives, err := storage.ListArchives(archiveDir)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Name\tSize\tModified\tChecksum\tSealed")
		for _, a := range archives {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%t\n", a.Name, a.Size, a.ModTime.Format("2006-01-02 15:04"), a.Checksum, a.Sealed)
		}
		return tw.Flush()

	case *restore != "":
		if err := storage.RestoreArchive(ctx, *restore, cfg.Storage.Path, passphrase); err != nil {
			return err
		}
		fmt.Printf("Restored %s into %s\n", *restore, cfg.Storage.Path)
		return nil
	}

	return withApp(func(a *app) error {
		path, err := a.store.Archive(ctx, archiveDir, *name, passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	})
}
