package archive

// Archive is a stored file record. Archives are created independently of the
// product lifecycle and linked to products through a many-to-many pivot.
type Archive struct {
	ID        int    `json:"id"`
	Filename  string `json:"filename"`  // original name without extension
	Extension string `json:"extension"`
	Archive   string `json:"archive"` // stored file name
	Path      string `json:"path"`    // public URL
}
