package domain

// DiffFile is one changed file in a pull request diff.
type DiffFile struct {
	// Filename is the repository-relative path.
	Filename string `json:"filename"`
	// Additions and Deletions are line counts reported by GitHub.
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
	// Status is the change type (added, modified, removed, renamed).
	Status string `json:"status,omitempty"`
	// Changes is Additions + Deletions.
	Changes int `json:"changes,omitempty"`
	// Patch is the unified diff text. Absent for binary or very large files.
	Patch string `json:"patch,omitempty"`
}

// DiffSnapshot is an ephemeral view of a pull request and its changed files.
// It is produced fresh per request and never cached.
type DiffSnapshot struct {
	// Title is the pull request title.
	Title string `json:"title"`
	// HTMLURL is the canonical pull request URL.
	HTMLURL string `json:"html_url"`
	// Files is the ordered sequence of changed files.
	Files []DiffFile `json:"files"`
}
