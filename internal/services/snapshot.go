package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cardpulse/cardpulse/internal/database"
	"github.com/cardpulse/cardpulse/internal/metrics"
	"github.com/cardpulse/cardpulse/internal/models"
)

// SnapshotService records the combined value of all shared collections
// once a day, giving the dashboard a real value-over-time series.
type SnapshotService struct {
	mu            sync.Mutex
	snapshotHour  int // Hour of day to take snapshot (0-23)
	checkInterval time.Duration
}

// NewSnapshotService creates a new snapshot service
func NewSnapshotService() *SnapshotService {
	return &SnapshotService{
		snapshotHour:  23, // Default: 11 PM
		checkInterval: 15 * time.Minute,
	}
}

// Start begins the background snapshot worker
func (s *SnapshotService) Start(ctx context.Context) {
	log.Println("Snapshot service started: will record daily collection value")

	s.checkAndSnapshot()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot service stopping...")
			return
		case <-ticker.C:
			s.checkAndSnapshot()
		}
	}
}

// checkAndSnapshot checks if a snapshot is needed and takes one
func (s *SnapshotService) checkAndSnapshot() {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if s.hasSnapshotForDate(today) {
		return
	}

	// Only take automatic snapshots at or after the configured hour
	if now.Hour() >= s.snapshotHour {
		if err := s.TakeSnapshot(); err != nil {
			log.Printf("Snapshot service: failed to take snapshot: %v", err)
		}
	}
}

// hasSnapshotForDate checks if a snapshot exists for the given date
func (s *SnapshotService) hasSnapshotForDate(date time.Time) bool {
	db := database.GetDB()

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int64
	db.Model(&models.CollectionValueSnapshot{}).
		Where("snapshot_date >= ? AND snapshot_date < ?", startOfDay, endOfDay).
		Count(&count)

	return count > 0
}

// TakeSnapshot records the current combined collection value
func (s *SnapshotService) TakeSnapshot() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := database.GetDB()
	now := time.Now()
	snapshotDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var collections []models.UserCollection
	if err := db.Find(&collections).Error; err != nil {
		return err
	}

	snapshot := models.CollectionValueSnapshot{
		SnapshotDate: snapshotDate,
		Users:        len(collections),
		CreatedAt:    now,
	}
	for _, c := range collections {
		snapshot.TotalCards += c.CardCount
		snapshot.TotalValue += c.TotalValue
	}

	// Use upsert to handle duplicate dates
	result := db.Where("DATE(snapshot_date) = DATE(?)", snapshotDate).
		Assign(models.CollectionValueSnapshot{
			Users:      snapshot.Users,
			TotalCards: snapshot.TotalCards,
			TotalValue: snapshot.TotalValue,
		}).
		FirstOrCreate(&snapshot)
	if result.Error != nil {
		return result.Error
	}

	metrics.SharedCollectionsTotal.Set(float64(snapshot.Users))
	metrics.SharedCollectionsValueUSD.Set(snapshot.TotalValue)

	log.Printf("Snapshot service: recorded %d users, %d cards, $%.2f total value",
		snapshot.Users, snapshot.TotalCards, snapshot.TotalValue)
	return nil
}

// ValueHistory returns snapshots for the last N days, oldest first.
func (s *SnapshotService) ValueHistory(days int) ([]models.CollectionValueSnapshot, error) {
	if days <= 0 {
		days = 30
	}

	db := database.GetDB()
	since := time.Now().AddDate(0, 0, -days)

	var snapshots []models.CollectionValueSnapshot
	err := db.Where("snapshot_date >= ?", since).
		Order("snapshot_date ASC").
		Find(&snapshots).Error
	return snapshots, err
}
