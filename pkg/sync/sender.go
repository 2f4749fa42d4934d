package sync

import (
	"context"

	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
	"github.com/bioarchive/dsclient/pkg/local"
)

// Uploader sends one file's content and returns the id of the resulting
// remote file. Implemented by the chunked upload sender.
type Uploader interface {
	Upload(ctx context.Context, file *local.File, projectID, parentKind,
		parentID string) (string, error)
}

// ContentSender walks a local tree and creates whatever doesn't exist
// remotely yet. A node that already has a remote id is left alone, so
// running the same sender twice issues no duplicate creations. No remote
// listing is consulted during the walk; the tree's remote ids and
// need-to-send flags are expected to be resolved beforehand.
type ContentSender struct {
	api         *dataservice.Client
	uploader    Uploader
	projectName string
	watcher     Watcher

	// projectID is the active project context for descendants. It starts
	// as the known project id (possibly empty) and is adopted from the
	// creation response when the project is created during the walk.
	projectID string

	ctx context.Context
}

// NewContentSender creates a sender that fills in the project named
// projectName, creating it if projectID is empty.
func NewContentSender(api *dataservice.Client, uploader Uploader, projectID,
	projectName string, watcher Watcher) *ContentSender {

	if watcher == nil {
		watcher = nullWatcher{}
	}
	return &ContentSender{
		api:         api,
		uploader:    uploader,
		projectID:   projectID,
		projectName: projectName,
		watcher:     watcher,
	}
}

// Send walks the project tree and sends every unsynced node.
func (s *ContentSender) Send(ctx context.Context, project *local.Project) error {
	s.ctx = ctx
	return Walk(project, s)
}

// VisitProject creates the remote project when the local root has no remote
// id yet, and adopts the resulting id as the project context for all
// descendants.
func (s *ContentSender) VisitProject(project *local.Project) error {
	if project.RemoteID() != "" {
		return nil
	}

	s.watcher.SendingItem(dataservice.KindProject, s.projectName)
	created, err := s.api.CreateProject(s.ctx, s.projectName, s.projectName)
	if err != nil {
		return errors.WithContext(err, "create project "+s.projectName)
	}
	if err := project.SetRemoteID(created.ID); err != nil {
		return err
	}
	s.projectID = created.ID
	return nil
}

// VisitFolder creates the folder remotely when it has no remote id yet. The
// parent's remote id is always known here because the walk is pre-order.
func (s *ContentSender) VisitFolder(folder *local.Folder, parent Parent) error {
	if folder.RemoteID() != "" {
		return nil
	}

	s.watcher.SendingItem(dataservice.KindFolder, folder.Name())
	created, err := s.api.CreateFolder(s.ctx, folder.Name(), parent.Kind(), parent.RemoteID())
	if err != nil {
		return errors.WithContext(err, "create folder "+folder.Name())
	}
	return folder.SetRemoteID(created.ID)
}

// VisitFile uploads the file's content when it's flagged as needing a send.
func (s *ContentSender) VisitFile(file *local.File, parent Parent) error {
	if !file.NeedToSend {
		return nil
	}

	s.watcher.SendingItem(dataservice.KindFile, file.Name())
	remoteID, err := s.uploader.Upload(s.ctx, file, s.projectID, parent.Kind(), parent.RemoteID())
	if err != nil {
		return err
	}

	file.NeedToSend = false
	if file.RemoteID() != "" {
		// Content update of an existing remote file; the id is
		// unchanged.
		return nil
	}
	return file.SetRemoteID(remoteID)
}
