package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/prdocs/internal/connectors/google"
	"github.com/custodia-labs/prdocs/internal/connectors/google/drive"
	"github.com/custodia-labs/prdocs/internal/core/domain"
)

// foldersResponse is the Drive folder listing payload.
type foldersResponse struct {
	ParentID   string         `json:"parentId"`
	ParentName string         `json:"parentName"`
	ParentPath string         `json:"parentPath"`
	Folders    []drive.Folder `json:"folders"`
}

// listDriveFolders lists subfolders of a Drive folder.
// GET /api/drive/folders?parentId=root
func (s *Server) listDriveFolders(c echo.Context) error {
	parentID := c.QueryParam("parentId")
	if parentID == "" {
		parentID = "root"
	}

	ctx := c.Request().Context()
	sess := SessionFromContext(c)
	cred, ok := s.newResolver(c).GoogleToken(ctx, sess)
	if !ok {
		return domain.ErrGoogleAuthRequired
	}

	svc, err := google.NewDriveService(ctx, cred.Value)
	if err != nil {
		return err
	}

	folders, err := drive.ListFolders(ctx, svc, parentID)
	if err != nil {
		if google.IsUnauthorized(err) {
			return domain.ErrGoogleAuthRequired
		}
		slog.Error("list drive folders failed", "parent", parentID, "err", err)
		return err
	}

	parentName := "My Drive"
	parentPath := "My Drive"
	if parentID != "root" {
		if name := drive.GetFolderName(ctx, svc, parentID); name != "" {
			parentName = name
			parentPath = "My Drive / " + name
		}
	}

	return c.JSON(http.StatusOK, foldersResponse{
		ParentID:   parentID,
		ParentName: parentName,
		ParentPath: parentPath,
		Folders:    folders,
	})
}

// createDriveFolder creates a Drive folder under the given parent.
// POST /api/drive/folders {"name": ..., "parentId": ...}
func (s *Server) createDriveFolder(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := c.Bind(&body); err != nil || body.Name == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "A folder name is required."})
	}
	if body.ParentID == "" {
		body.ParentID = "root"
	}

	ctx := c.Request().Context()
	sess := SessionFromContext(c)
	cred, ok := s.newResolver(c).GoogleToken(ctx, sess)
	if !ok {
		return domain.ErrGoogleAuthRequired
	}

	svc, err := google.NewDriveService(ctx, cred.Value)
	if err != nil {
		return err
	}

	folder, err := drive.CreateFolder(ctx, svc, body.Name, body.ParentID)
	if err != nil {
		if google.IsUnauthorized(err) {
			return domain.ErrGoogleAuthRequired
		}
		slog.Error("create drive folder failed", "name", body.Name, "err", err)
		return err
	}

	return c.JSON(http.StatusOK, folder)
}
