package style

// Filters maps an activity type to its visibility. Types never seen before
// are visible by default.
type Filters struct {
	hidden map[string]struct{}
}

// NewFilters returns a filter set with everything visible.
func NewFilters() *Filters {
	return &Filters{hidden: make(map[string]struct{})}
}

// Set enables or disables an activity type.
func (f *Filters) Set(activityType string, enabled bool) {
	if enabled {
		delete(f.hidden, activityType)
		return
	}
	f.hidden[activityType] = struct{}{}
}

// Enabled reports whether an activity type is currently visible.
func (f *Filters) Enabled(activityType string) bool {
	_, off := f.hidden[activityType]
	return !off
}

// States returns the visibility of each given type, defaulting to true.
func (f *Filters) States(activityTypes []string) map[string]bool {
	out := make(map[string]bool, len(activityTypes))
	for _, t := range activityTypes {
		out[t] = f.Enabled(t)
	}
	return out
}

// Clone returns an independent copy of the filter set.
func (f *Filters) Clone() *Filters {
	c := NewFilters()
	for t := range f.hidden {
		c.hidden[t] = struct{}{}
	}
	return c
}
