package state

// Well-known keys.  Kept in one place so the engine and any future tooling
// agree on the names.
const (
	// KeyAutoMode holds "1" when automatic confirmation is on, "0" when the
	// console runs in manual preview mode.
	KeyAutoMode = "auto_mode"

	// KeyLatestMatches holds the JSON-encoded match set last applied by the
	// reconciler, so a restart does not blank the console.
	KeyLatestMatches = "latest_matches"
)

// Mode sentinels stored under KeyAutoMode.
const (
	ModeOn  = "1"
	ModeOff = "0"
)
