package household

import (
	"context"
	"fmt"

	activitystore "github.com/dalemusser/housekeeper/internal/app/store/activities"
	"github.com/dalemusser/housekeeper/internal/domain/models"
)

// Recorder appends to the household activity feed. Appends are synchronous
// and inline with the mutation that triggered them: if the append fails the
// enclosing operation fails with it, so a committed mutation always has its
// feed entry (inside a transaction) or the caller sees the error.
type Recorder struct {
	activities *activitystore.Store
}

func NewRecorder(activities *activitystore.Store) *Recorder {
	return &Recorder{activities: activities}
}

// Append records one feed entry for the household.
func (r *Recorder) Append(ctx context.Context, householdID, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if _, err := r.activities.Append(ctx, householdID, message); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// Recent returns the household's latest feed entries, newest first.
func (r *Recorder) Recent(ctx context.Context, householdID string) ([]models.HouseholdActivity, error) {
	return r.activities.Recent(ctx, householdID)
}
