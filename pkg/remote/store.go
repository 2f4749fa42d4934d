package remote

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
)

// Store fetches project tree data from the remote store.
type Store struct {
	api *dataservice.Client
}

// NewStore creates a Store backed by the given API client.
func NewStore(api *dataservice.Client) *Store {
	return &Store{api: api}
}

// FetchProject retrieves the project named projectName along with its entire
// tree of folders and files. Returns nil when no project has that name;
// that's a normal outcome the caller handles, not an error.
func (s *Store) FetchProject(ctx context.Context, projectName string) (*Project, error) {
	project, err := s.findProject(ctx, projectName)
	if err != nil || project == nil {
		return nil, err
	}
	if err := s.addProjectChildren(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Store) findProject(ctx context.Context, projectName string) (*Project, error) {
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return nil, errors.WithContext(err, "list projects")
	}
	for _, project := range projects {
		if project.Name == projectName {
			return &Project{
				ProjectID:   project.ID,
				ProjectName: project.Name,
				Description: project.Description,
				IsDeleted:   project.IsDeleted,
			}, nil
		}
	}
	return nil, nil
}

func (s *Store) addProjectChildren(ctx context.Context, project *Project) error {
	children, err := s.api.ListProjectChildren(ctx, project.ProjectID, "")
	if err != nil {
		return errors.WithContext(err, "list project children")
	}
	for _, child := range children {
		if err := s.addChild(ctx, project.AddChild, child); err != nil {
			return err
		}
	}
	return nil
}

type childAdder func(Node)

func (s *Store) addChild(ctx context.Context, addChild childAdder, child dataservice.Child) error {
	switch child.Kind {
	case dataservice.KindFolder:
		folder, err := s.readFolder(ctx, child)
		if err != nil {
			return err
		}
		addChild(folder)
	case dataservice.KindFile:
		file, err := s.readFileMetadata(ctx, child)
		if err != nil {
			return err
		}
		addChild(file)
	default:
		return errors.UnknownKind{Kind: child.Kind}
	}
	return nil
}

// readFolder builds a Folder and recursively resolves its children.
func (s *Store) readFolder(ctx context.Context, folderChild dataservice.Child) (*Folder, error) {
	folder := &Folder{
		FolderID:   folderChild.ID,
		FolderName: folderChild.Name,
		IsDeleted:  folderChild.IsDeleted,
	}

	children, err := s.api.ListFolderChildren(ctx, folder.FolderID, "")
	if err != nil {
		return nil, errors.WithContext(err, "list folder children")
	}
	for _, child := range children {
		if err := s.addChild(ctx, folder.AddChild, child); err != nil {
			return nil, err
		}
	}
	return folder, nil
}

// readFileMetadata builds a File, fetching its detail record for the content
// hash. Children listings don't include hashes.
func (s *Store) readFileMetadata(ctx context.Context, fileChild dataservice.Child) (*File, error) {
	file := &File{
		FileID:    fileChild.ID,
		FileName:  fileChild.Name,
		IsDeleted: fileChild.IsDeleted,
	}
	if fileChild.Upload != nil {
		file.Size = fileChild.Upload.Size
	}

	detail, err := s.api.GetFile(ctx, file.FileID)
	if err != nil {
		return nil, errors.WithContext(err, "get file "+file.FileID)
	}
	file.Size = detail.Upload.Size
	if detail.Upload.Hash != nil {
		file.SetHash(detail.Upload.Hash.Value, detail.Upload.Hash.Algorithm)
	}
	return file, nil
}

// LookupUserByName finds the single user whose full name matches fullName.
// The server-side name filter is only a pre-filter; the authoritative policy
// is a case-insensitive exact comparison of the full name. Zero or multiple
// matches are errors.
func (s *Store) LookupUserByName(ctx context.Context, fullName string) (User, error) {
	users, err := s.api.ListUsers(ctx, fullName)
	if err != nil {
		return User{}, errors.WithContext(err, "list users")
	}

	var matches []dataservice.User
	for _, user := range users {
		if strings.EqualFold(user.FullName, fullName) {
			matches = append(matches, user)
		}
	}

	switch len(matches) {
	case 0:
		return User{}, errors.UserNotFound{FullName: fullName}
	case 1:
		match := matches[0]
		log.WithField("user", match.Username).Debug("Matched user by full name")
		return User{
			ID:       match.ID,
			Username: match.Username,
			FullName: match.FullName,
		}, nil
	default:
		return User{}, errors.MultipleUsers{FullName: fullName}
	}
}

// SetUserProjectPermission grants user the given auth role on project.
func (s *Store) SetUserProjectPermission(ctx context.Context, project *Project,
	user User, authRole string) error {

	_, err := s.api.SetUserProjectPermission(ctx, project.ProjectID, user.ID, authRole)
	return errors.WithContext(err, "set project permission")
}
