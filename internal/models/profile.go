package models

// Profile is the display profile of a user, owned by an external
// collaborator and read here only for enrichment.
type Profile struct {
	ID        int64   `db:"id" json:"id"`
	FullName  string  `db:"full_name" json:"full_name"`
	Title     string  `db:"title" json:"title"`
	Bio       string  `db:"bio" json:"bio"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}
