package job

import (
	"context"
	"time"

	"github.com/emrgen/storefront/internal/store"
	"github.com/sirupsen/logrus"
)

const pruneInterval = time.Minute

// BackupPruner thins the auto-save backup rows. Every save appends a backup,
// so without pruning a busy editor grows the table by one row per quiet
// period. Recent backups are kept dense; older windows keep one row each.
type BackupPruner struct {
	store store.Store
	done  chan struct{}
}

// NewBackupPruner creates a new BackupPruner instance.
func NewBackupPruner(store store.Store) *BackupPruner {
	return &BackupPruner{
		store: store,
		done:  make(chan struct{}),
	}
}

func (c *BackupPruner) Name() string {
	return "backup-pruner"
}

func (c *BackupPruner) Stop() {
	close(c.done)
}

func (c *BackupPruner) Run() {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.prune(10 * time.Minute)
		}
	}
}

// prune keeps one backup per page per window, for backups older than one
// window. The newest window is left untouched so recent undo points stay
// dense.
func (c *BackupPruner) prune(window time.Duration) {
	now := time.Now()
	backups, err := c.store.ListPageBackupsByCreatedTime(context.TODO(), now.Add(-24*time.Hour), now.Add(-window))
	if err != nil {
		logrus.Errorf("error listing backups to prune: %v", err)
		return
	}

	// rows arrive oldest first, so each bucket keeps its earliest backup
	kept := map[string]map[time.Time]bool{}
	remove := map[string][]int64{}
	for _, backup := range backups {
		bucket := backup.CreatedAt.Round(window)
		if kept[backup.PageID] == nil {
			kept[backup.PageID] = map[time.Time]bool{}
		}
		if kept[backup.PageID][bucket] {
			remove[backup.PageID] = append(remove[backup.PageID], backup.Seq)
			continue
		}
		kept[backup.PageID][bucket] = true
	}

	if len(remove) == 0 {
		return
	}

	if err := c.store.DeletePageBackups(context.TODO(), remove); err != nil {
		logrus.Errorf("error pruning backups: %v", err)
		return
	}

	logrus.Infof("pruned backups for %d pages", len(remove))
}
