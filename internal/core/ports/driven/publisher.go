package driven

import "context"

// UploadOptions configures a document upload.
type UploadOptions struct {
	// AccessToken is the per-user Google OAuth access token. When empty,
	// implementations supporting a legacy service-account mode may fall
	// back to it; otherwise the upload fails with an auth-required error.
	AccessToken string

	// FolderID is an explicit destination folder. When empty, a
	// date-stamped folder is resolved or created under the Drive root.
	FolderID string

	// DocumentName overrides the derived document name.
	DocumentName string
}

// Publisher uploads generated content to the user's Drive as a native doc.
type Publisher interface {
	// Upload writes content as a new Drive document and returns its edit URL.
	Upload(ctx context.Context, name, content string, opts UploadOptions) (string, error)
}
