// Package drive implements Drive folder resolution and document upload.
package drive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/prdocs/internal/connectors/google"
)

// MIME types used by the publisher.
const (
	MimeTypeFolder    = "application/vnd.google-apps.folder"
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"
	MimeTypeMarkdown  = "text/markdown"
)

// FolderNamePrefix is the prefix of the date-stamped default folder.
const FolderNamePrefix = "PR-Docs-"

// Folder is a Drive folder reference.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DatedFolderName derives the default destination folder name for a day.
func DatedFolderName(now time.Time) string {
	return FolderNamePrefix + now.UTC().Format("2006-01-02")
}

// ListFolders returns the subfolders of a parent, ordered by name.
func ListFolders(ctx context.Context, svc *drive.Service, parentID string) ([]Folder, error) {
	query := fmt.Sprintf(
		"'%s' in parents and mimeType = '%s' and trashed = false",
		escapeQuery(parentID), MimeTypeFolder)

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id, name)").
		OrderBy("name").
		PageSize(100).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", google.WrapError(err))
	}

	folders := make([]Folder, 0, len(list.Files))
	for _, f := range list.Files {
		folders = append(folders, Folder{ID: f.Id, Name: f.Name})
	}
	return folders, nil
}

// GetFolderName returns the display name of a folder, or the id itself
// when the lookup fails. Used for breadcrumb display only.
func GetFolderName(ctx context.Context, svc *drive.Service, folderID string) string {
	f, err := svc.Files.Get(folderID).Fields("name").Context(ctx).Do()
	if err != nil || f.Name == "" {
		return folderID
	}
	return f.Name
}

// CreateFolder creates a folder under the given parent.
func CreateFolder(ctx context.Context, svc *drive.Service, name, parentID string) (*Folder, error) {
	f, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{parentID},
	}).Fields("id, name").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", google.WrapError(err))
	}
	return &Folder{ID: f.Id, Name: f.Name}, nil
}

// GetOrCreateFolder finds a folder by exact name under the parent,
// creating it when absent. Search-then-create is best effort, not
// transactionally exclusive: a concurrent creator can still produce a
// duplicate folder, which is a tolerable degraded outcome.
func GetOrCreateFolder(ctx context.Context, svc *drive.Service, name, parentID string) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), MimeTypeFolder, escapeQuery(parentID))

	list, err := svc.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search folder: %w", google.WrapError(err))
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	folder, err := CreateFolder(ctx, svc, name, parentID)
	if err != nil {
		return "", err
	}
	return folder.ID, nil
}

// escapeQuery escapes single quotes in a Drive query literal.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, `'`, `\'`)
}
