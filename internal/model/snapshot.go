package model

// Snapshot is the per-session view of a user's most recent self-report,
// fetched once at greeting time. When the user has no check-in yet, Checkin
// is nil and the snapshot carries identity fields only.
type Snapshot struct {
	UserID    int64
	FirstName string
	AgeGroup  string
	Gender    string
	Period    Period
	Checkin   *Checkin
}

// Synthetic reports whether this snapshot was built from identity fields
// alone because no check-in row exists.
func (s Snapshot) Synthetic() bool {
	return s.Checkin == nil
}
