package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/prdocs/internal/core/domain"
	"github.com/custodia-labs/prdocs/internal/core/ports/driven"
)

// fakeDrive is a minimal in-memory Drive v3 API for publisher tests.
type fakeDrive struct {
	mu            sync.Mutex
	folders       []Folder
	folderCreates int
	docCreates    int
	lastDocParent string
	lastDocName   string
}

func (f *fakeDrive) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/files"):
			query := r.URL.Query().Get("q")
			var matched []map[string]string
			for _, folder := range f.folders {
				if strings.Contains(query, "name = '"+folder.Name+"'") {
					matched = append(matched, map[string]string{"id": folder.ID, "name": folder.Name})
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"files": matched})

		case r.Method == http.MethodPost && strings.Contains(r.URL.Path, "/upload/"):
			f.docCreates++
			f.lastDocName, f.lastDocParent = parseDocMetadata(r)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("doc-%d", f.docCreates)})

		case r.Method == http.MethodPost:
			f.folderCreates++
			var body struct {
				Name string `json:"name"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			folder := Folder{ID: fmt.Sprintf("folder-%d", f.folderCreates), Name: body.Name}
			f.folders = append(f.folders, folder)
			_ = json.NewEncoder(w).Encode(map[string]string{"id": folder.ID, "name": folder.Name})

		default:
			http.NotFound(w, r)
		}
	}
}

// parseDocMetadata pulls name and parent out of the multipart metadata part.
func parseDocMetadata(r *http.Request) (name, parent string) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", ""
	}
	reader := multipart.NewReader(r.Body, params["boundary"])
	part, err := reader.NextPart()
	if err != nil {
		return "", ""
	}
	var meta struct {
		Name    string   `json:"name"`
		Parents []string `json:"parents"`
	}
	if err := json.NewDecoder(part).Decode(&meta); err != nil {
		return "", ""
	}
	if len(meta.Parents) > 0 {
		parent = meta.Parents[0]
	}
	return meta.Name, parent
}

func newFakePublisher(t *testing.T) (*Publisher, *fakeDrive) {
	t.Helper()
	fake := &fakeDrive{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	p := NewPublisher("", "")
	p.newService = func(ctx context.Context, _ string) (*drive.Service, error) {
		return drive.NewService(ctx,
			option.WithEndpoint(srv.URL),
			option.WithHTTPClient(srv.Client()))
	}
	p.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return p, fake
}

func TestUploadWithoutAnyCredentialFailsFast(t *testing.T) {
	p := NewPublisher("", "")

	_, err := p.Upload(context.Background(), "doc", "content", driven.UploadOptions{})
	assert.ErrorIs(t, err, domain.ErrGoogleAuthRequired)
}

func TestUploadCreatesDatedFolderOnce(t *testing.T) {
	p, fake := newFakePublisher(t)
	opts := driven.UploadOptions{AccessToken: "ya29.token"}

	url1, err := p.Upload(context.Background(), "react-PR1", "# one", opts)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/document/d/doc-1/edit", url1)
	assert.Equal(t, 1, fake.folderCreates)
	assert.Equal(t, "PR-Docs-2026-03-14", fake.folders[0].Name)
	assert.Equal(t, "folder-1", fake.lastDocParent)

	// Same day: the existing folder is reused, not duplicated.
	url2, err := p.Upload(context.Background(), "react-PR2", "# two", opts)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.google.com/document/d/doc-2/edit", url2)
	assert.Equal(t, 1, fake.folderCreates)
	assert.Equal(t, "folder-1", fake.lastDocParent)
}

func TestUploadUsesExplicitFolder(t *testing.T) {
	p, fake := newFakePublisher(t)

	_, err := p.Upload(context.Background(), "react-PR1", "# body", driven.UploadOptions{
		AccessToken: "ya29.token",
		FolderID:    "chosen-folder",
	})
	require.NoError(t, err)
	assert.Zero(t, fake.folderCreates, "explicit folder skips get-or-create")
	assert.Equal(t, "chosen-folder", fake.lastDocParent)
}

func TestUploadHonorsDocumentNameOverride(t *testing.T) {
	p, fake := newFakePublisher(t)

	_, err := p.Upload(context.Background(), "react-PR1", "# body", driven.UploadOptions{
		AccessToken:  "ya29.token",
		FolderID:     "f",
		DocumentName: "My Custom Doc",
	})
	require.NoError(t, err)
	assert.Equal(t, "My Custom Doc", fake.lastDocName)
}

func TestDatedFolderName(t *testing.T) {
	name := DatedFolderName(time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, "PR-Docs-2026-01-02", name)
}
