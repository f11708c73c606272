package domain

// LinkMethod determines how user-supplied files are placed into a mod directory
type LinkMethod int

const (
	LinkCopy     LinkMethod = iota // Default: copy (source file may be moved or deleted later)
	LinkHardlink                   // Hardlink (no extra disk space, same filesystem only)
)

func (m LinkMethod) String() string {
	switch m {
	case LinkCopy:
		return "copy"
	case LinkHardlink:
		return "hardlink"
	default:
		return "unknown"
	}
}

// ParseLinkMethod converts a string to LinkMethod
func ParseLinkMethod(s string) LinkMethod {
	switch s {
	case "hardlink":
		return LinkHardlink
	default:
		return LinkCopy
	}
}
