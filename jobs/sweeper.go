package jobs

import (
	"context"
	"log"
	"time"

	"everafter/database"
	"everafter/storage"

	"github.com/robfig/cron/v3"
)

// Sweeper destroys uploaded assets whose owning record never got created.
// Uploads are journaled before the record insert; anything still journaled
// after the grace window is an orphan - a submission that failed partway
// and whose immediate cleanup also failed.
type Sweeper struct {
	store  database.Store
	assets storage.AssetStore
	cron   *cron.Cron
	maxAge time.Duration
}

func NewSweeper(store database.Store, assets storage.AssetStore) *Sweeper {
	return &Sweeper{
		store:  store,
		assets: assets,
		cron:   cron.New(),
		maxAge: time.Hour,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 30m", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("Orphaned-asset sweeper scheduled every 30m")
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep runs one pass. Entries whose destroy fails stay journaled for the
// next pass.
func (s *Sweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.maxAge).Unix()

	stale, err := s.store.ListStalePendingAssets(ctx, cutoff)
	if err != nil {
		log.Printf("Sweeper list error: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	removed := 0
	for _, entry := range stale {
		if err := s.assets.Destroy(ctx, entry.Kind, entry.AssetID); err != nil {
			log.Printf("Sweeper failed to destroy asset %s: %v", entry.AssetID, err)
			continue
		}
		if err := s.store.DeletePendingAsset(ctx, entry.ID); err != nil {
			log.Printf("Sweeper failed to clear journal entry %s: %v", entry.AssetID, err)
			continue
		}
		removed++
	}

	log.Printf("Sweeper removed %d of %d orphaned assets", removed, len(stale))
}
