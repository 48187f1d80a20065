package models

// Profile represents a shared budgeting context. Shared expenses belong to
// exactly one profile, and debt calculations are scoped to it.
type Profile struct {
	// ID is the unique identifier for the profile (UUID format).
	ID string

	// Name is the display name of the profile (e.g., "Flat 4B", "Trip to Oslo").
	Name string

	// Members is the list of participant keys in this profile.
	Members []string

	// CreatedAt is the Unix timestamp when the profile was created.
	CreatedAt int64
}
