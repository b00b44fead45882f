package drive

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/prdocs/internal/connectors/google"
	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// Ensure Publisher implements the port.
var _ driven.Publisher = (*Publisher)(nil)

// Publisher uploads markdown content as Drive-native documents.
//
// The primary mode authenticates with the per-user OAuth access token and
// publishes under the user's Drive root. When no per-user token is
// supplied and a service-account key file is configured, a legacy mode
// publishes to a shared drive instead. With neither, uploads fail fast
// with an authentication-required error; there is no unauthenticated call.
type Publisher struct {
	keyFile       string
	sharedDriveID string

	// newService is swappable in tests.
	newService func(ctx context.Context, accessToken string) (*drive.Service, error)
	now        func() time.Time
}

// NewPublisher creates a publisher. keyFile and sharedDriveID enable the
// legacy service-account mode; both empty disables it.
func NewPublisher(keyFile, sharedDriveID string) *Publisher {
	return &Publisher{
		keyFile:       keyFile,
		sharedDriveID: sharedDriveID,
		newService:    google.NewDriveService,
		now:           time.Now,
	}
}

// Upload writes content as a new Drive document and returns its edit URL.
func (p *Publisher) Upload(ctx context.Context, name, content string, opts driven.UploadOptions) (string, error) {
	if opts.AccessToken == "" {
		if p.keyFile == "" {
			return "", domain.ErrGoogleAuthRequired
		}
		slog.Warn("no per-user Google token, using legacy service-account mode")
		return p.uploadLegacy(ctx, name, content, opts)
	}

	svc, err := p.newService(ctx, opts.AccessToken)
	if err != nil {
		return "", err
	}

	folderID := opts.FolderID
	if folderID == "" {
		folderID, err = GetOrCreateFolder(ctx, svc, DatedFolderName(p.now()), "root")
		if err != nil {
			return "", fmt.Errorf("resolve destination folder: %w", err)
		}
	}

	if opts.DocumentName != "" {
		name = opts.DocumentName
	}

	return createDoc(ctx, svc, name, content, folderID, false)
}

// uploadLegacy publishes to the configured shared drive using the
// service-account credential file.
func (p *Publisher) uploadLegacy(ctx context.Context, name, content string, opts driven.UploadOptions) (string, error) {
	svc, err := google.NewDriveServiceFromKeyFile(ctx, p.keyFile)
	if err != nil {
		return "", err
	}

	folderID := opts.FolderID
	if folderID == "" {
		folderID, err = getOrCreateSharedFolder(ctx, svc, DatedFolderName(p.now()), p.sharedDriveID)
		if err != nil {
			return "", fmt.Errorf("resolve shared folder: %w", err)
		}
	}

	if opts.DocumentName != "" {
		name = opts.DocumentName
	}

	return createDoc(ctx, svc, name, content, folderID, true)
}

// createDoc uploads markdown as a Drive-native Google Doc and returns the
// document's edit URL.
func createDoc(ctx context.Context, svc *drive.Service, name, content, folderID string, allDrives bool) (string, error) {
	call := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeGoogleDoc,
		Parents:  []string{folderID},
	}).Fields("id").Context(ctx)

	if allDrives {
		call = call.SupportsAllDrives(true)
	}

	doc, err := call.Media(strings.NewReader(content),
		googleapi.ContentType(MimeTypeMarkdown)).Do()
	if err != nil {
		return "", fmt.Errorf("create document: %w", google.WrapError(err))
	}

	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", doc.Id), nil
}

// getOrCreateSharedFolder is the shared-drive variant of folder resolution.
func getOrCreateSharedFolder(ctx context.Context, svc *drive.Service, name, driveID string) (string, error) {
	query := fmt.Sprintf(
		"name = '%s' and mimeType = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), MimeTypeFolder, escapeQuery(driveID))

	list, err := svc.Files.List().
		Q(query).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Corpora("drive").
		DriveId(driveID).
		Fields("files(id)").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search shared folder: %w", google.WrapError(err))
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	f, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: MimeTypeFolder,
		Parents:  []string{driveID},
	}).SupportsAllDrives(true).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create shared folder: %w", google.WrapError(err))
	}
	return f.Id, nil
}
