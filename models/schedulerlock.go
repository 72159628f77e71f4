package models

import "time"

// SchedulerLock holds the structure for the scheduler_locks collection. A lock
// is held until ExpiresAt, so a crashed holder cannot block the sweep forever.
type SchedulerLock struct {
	ID         string    `json:"id" bson:"_id"`
	Owner      string    `json:"owner" bson:"owner"`
	AcquiredAt time.Time `json:"acquiredAt" bson:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}
