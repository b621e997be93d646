package storage

import "time"

// SetNow overrides the clock used to stamp new scores.
func (r *SQLiteRepo) SetNow(now func() time.Time) {
	r.now = now
}
