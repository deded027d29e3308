package recurrence

// Daily repeats every N calendar days.
type Daily struct {
	cursor
}

// NewDaily returns a daily rule positioned on its seed.
func NewDaily(pattern Pattern) *Daily {
	r := &Daily{}
	r.cursor = newCursor(pattern, r.next)
	return r
}

func (r *Daily) next(ts int64) int64 {
	return utc(ts).AddDate(0, 0, r.pattern.Frequency()).Unix()
}
