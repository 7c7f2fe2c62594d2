package reconcile

// IsNew reports whether ev should be treated as a new event relative to the
// identity of the last one seen.  lastSeenID == "" means nothing has been
// seen yet (or the operating mode was just flipped), so any event is new.
//
// IsNew is a pure function of its inputs: no clock, no stored state.
func IsNew(ev *Event, lastSeenID string) bool {
	if ev == nil {
		return false
	}
	if lastSeenID == "" {
		return true
	}
	return ev.Identity() != lastSeenID
}
