package domain

import "fmt"

// GeneratedDocument is markdown content destined for Google Drive.
// It is ephemeral until uploaded; the only durable artifact is the
// resulting Drive file.
type GeneratedDocument struct {
	// Repo and PRNumber identify the source pull request.
	Repo     string
	PRNumber string

	// Title is the pull request title.
	Title string

	// SourceLink is the canonical pull request URL.
	SourceLink string

	// Content is the generated markdown body.
	Content string
}

// WithHeader returns the document content with a title and source-link
// header prepended, ready for upload.
func (d *GeneratedDocument) WithHeader() string {
	header := fmt.Sprintf("# %s\n\n", d.Title)
	if d.Title == "" {
		header = fmt.Sprintf("# PR #%s - %s\n\n", d.PRNumber, d.Repo)
	}
	if d.SourceLink != "" {
		header += fmt.Sprintf("**Source:** %s\n\n---\n\n", d.SourceLink)
	}
	return header + d.Content
}

// DefaultName returns the Drive file name used when the caller supplies none.
func (d *GeneratedDocument) DefaultName() string {
	return fmt.Sprintf("%s-PR%s", d.Repo, d.PRNumber)
}
