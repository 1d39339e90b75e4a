// Package dbtypes holds the typed views built from raw store documents.
package dbtypes

// Profile is the read-only "about" card attached to a user.  It lives in
// its own top-level collection and points back at its owner through the
// id_usuario field.
type Profile struct {
	IDUsuario          string   `json:"id_usuario"`
	Skills             []string `json:"skills"`
	Career             string   `json:"career"`
	InterestCategories []string `json:"interest_categories"`
	Keywords           []string `json:"keywords"`
	Semester           int      `json:"semester"`
	AboutMe            string   `json:"about_me"`
}

// Settings holds a user's preference flags, stored in a separate
// collection and resolved through the same owner-reference pattern as
// Profile.
type Settings struct {
	IDUsuario     string `json:"id_usuario"`
	Availability  bool   `json:"availability"`
	Notifications bool   `json:"notifications"`
	Visibility    bool   `json:"visibility"`
}
