package domain

// ProfileFlags are passed through to the overlay build
type ProfileFlags struct {
	NoTFT          bool
	IgnoreConflict bool
}

// OverlayProfile describes one overlay build request. It lives only for the
// duration of an apply and is never persisted.
type OverlayProfile struct {
	ID       string
	Mods     []string // Mod directory names, in selection order
	GamePath string
	ProfileFlags
}
