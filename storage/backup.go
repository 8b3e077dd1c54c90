package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// BackupScheduler copies the uploads tree once a day at a fixed hour and
// prunes copies older than the retention window.
type BackupScheduler struct {
	srcDir    string
	backupDir string
	retention time.Duration
	hour, min int
	now       func() time.Time
}

func NewBackupScheduler(srcDir, backupDir string, retention time.Duration, hour, min int) *BackupScheduler {
	return &BackupScheduler{
		srcDir:    srcDir,
		backupDir: backupDir,
		retention: retention,
		hour:      hour,
		min:       min,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (b *BackupScheduler) Run(ctx context.Context) {
	for {
		next := b.nextRun(b.now())
		log.Printf("⏳ Next image backup scheduled at: %s", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(b.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if dest, err := b.RunOnce(); err != nil {
			log.Printf("❌ Failed to back up images: %v", err)
		} else {
			log.Printf("✅ Images backed up to %s", dest)
		}
	}
}

func (b *BackupScheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), b.hour, b.min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// RunOnce takes one backup and prunes old ones. It returns the folder the
// backup was written to.
func (b *BackupScheduler) RunOnce() (string, error) {
	timestamp := b.now().Format("2006-01-02_15-04-05")
	destDir := filepath.Join(b.backupDir, timestamp)

	if err := copyDir(b.srcDir, destDir); err != nil {
		return "", err
	}
	b.cleanupOldBackups()
	return destDir, nil
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, destPath); err != nil {
				return err
			}
		} else if entry.Type().IsRegular() {
			if err := copyFile(srcPath, destPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Sync()
}

func (b *BackupScheduler) cleanupOldBackups() {
	entries, err := os.ReadDir(b.backupDir)
	if err != nil {
		log.Printf("❌ Failed to read backup directory: %v", err)
		return
	}

	cutoff := b.now().Add(-b.retention)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folderPath := filepath.Join(b.backupDir, entry.Name())
		info, err := os.Stat(folderPath)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(folderPath); err != nil {
				log.Printf("❌ Failed to remove old backup %s: %v", folderPath, err)
			} else {
				log.Printf("🗑️ Removed old backup: %s", folderPath)
			}
		}
	}
}
