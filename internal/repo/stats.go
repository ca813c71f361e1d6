package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-notes-summarizer/internal/domain"
)

// SummariesStats returns the number of stored summaries and the greatest
// UpdatedAt among them (nil when the table is empty). The HTTP layer derives
// the list ETag from these two values, so any create, update or delete
// changes the tag.
func SummariesStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Summary{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Order+Limit instead of MAX(): SQLite returns MAX() of a datetime as TEXT.
	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.Summary{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).
		Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
