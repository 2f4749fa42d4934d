// Package local builds an in-memory model of the directory tree that should
// exist remotely. Nodes remember the remote id they were assigned once
// created, which is what makes re-running a sync idempotent.
package local

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
)

// Node is a typed node of the local tree: a Folder or File. The Project root
// is handled separately since it has no path of its own.
type Node interface {
	Name() string
	fmt.Stringer
}

// Project is the root of a local tree. It corresponds to a remote project,
// identified by RemoteID once that project exists.
type Project struct {
	Children []Node

	remoteID string
}

// NewProject creates an empty local project tree.
func NewProject() *Project {
	return &Project{}
}

// Kind is the parent kind string used when creating children of the project.
func (p *Project) Kind() string {
	return dataservice.KindProject
}

// RemoteID is the server-assigned id of this project, or empty if it hasn't
// been created remotely yet.
func (p *Project) RemoteID() string {
	return p.remoteID
}

// SetRemoteID records the server-assigned id. The id transitions exactly
// once from empty; a second assignment is a bug in the caller.
func (p *Project) SetRemoteID(id string) error {
	if p.remoteID != "" {
		return errors.New("project remote id already set")
	}
	p.remoteID = id
	return nil
}

// AddPath adds the file or directory at path to the project's top level.
// Directories are walked recursively, children in directory read order.
func (p *Project) AddPath(path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		return errors.FileNotFound{Path: path}
	}

	if info.IsDir() {
		folder, err := NewFolder(path)
		if err != nil {
			return err
		}
		p.Children = append(p.Children, folder)
		return nil
	}

	file, err := NewFile(path)
	if err != nil {
		return err
	}
	p.Children = append(p.Children, file)
	return nil
}

func (p *Project) String() string {
	return "project: " + childrenString(p.Children)
}

// Folder is a directory within the project tree.
type Folder struct {
	Path       string
	FolderName string
	Children   []Node

	remoteID string
}

// NewFolder creates a Folder for the directory at path and recursively loads
// its children. The folder's name is the directory's base name, with
// trailing separators stripped and "." or ".." resolved to the real
// directory name.
func NewFolder(path string) (*Folder, error) {
	path = strings.TrimRight(path, string(filepath.Separator))
	name, err := nameFromPath(path)
	if err != nil {
		return nil, err
	}

	folder := &Folder{Path: path, FolderName: name}
	if err := folder.loadChildren(); err != nil {
		return nil, err
	}
	return folder, nil
}

// Kind is the parent kind string used when creating children of the folder.
func (f *Folder) Kind() string {
	return dataservice.KindFolder
}

// Name returns the folder's name within its parent.
func (f *Folder) Name() string {
	return f.FolderName
}

// RemoteID is the server-assigned id of this folder, or empty if it hasn't
// been created remotely yet.
func (f *Folder) RemoteID() string {
	return f.remoteID
}

// SetRemoteID records the server-assigned id, exactly once.
func (f *Folder) SetRemoteID(id string) error {
	if f.remoteID != "" {
		return errors.New("folder remote id already set")
	}
	f.remoteID = id
	return nil
}

// AddChild appends a child in discovery order.
func (f *Folder) AddChild(child Node) {
	f.Children = append(f.Children, child)
}

func (f *Folder) loadChildren() error {
	entries, err := afero.ReadDir(fs, f.Path)
	if err != nil {
		return errors.WithContext(err, "read directory "+f.Path)
	}

	for _, entry := range entries {
		childPath := filepath.Join(f.Path, entry.Name())
		if entry.IsDir() {
			child, err := NewFolder(childPath)
			if err != nil {
				return err
			}
			f.AddChild(child)
		} else {
			child, err := NewFile(childPath)
			if err != nil {
				return err
			}
			f.AddChild(child)
		}
	}
	return nil
}

func (f *Folder) String() string {
	return fmt.Sprintf("folder:%s %s", f.FolderName, childrenString(f.Children))
}

// File is a regular file within the project tree.
type File struct {
	Path     string
	FileName string
	Size     int64
	Mimetype string

	// NeedToSend marks files whose content must be uploaded, either
	// because no remote counterpart exists or because the content hash
	// differs. New files default to needing a send.
	NeedToSend bool

	remoteID string
	hash     *HashPair
}

// NewFile creates a File for the regular file at path.
func NewFile(path string) (*File, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, errors.FileNotFound{Path: path}
	}

	mimetype := mime.TypeByExtension(filepath.Ext(path))
	if mimetype == "" {
		mimetype = "application/octet-stream"
	}

	return &File{
		Path:       path,
		FileName:   filepath.Base(path),
		Size:       info.Size(),
		Mimetype:   mimetype,
		NeedToSend: true,
	}, nil
}

// Name returns the file's name within its parent.
func (f *File) Name() string {
	return f.FileName
}

// RemoteID is the server-assigned id of this file, or empty if it hasn't
// been created remotely yet.
func (f *File) RemoteID() string {
	return f.remoteID
}

// SetRemoteID records the server-assigned id, exactly once.
func (f *File) SetRemoteID(id string) error {
	if f.remoteID != "" {
		return errors.New("file remote id already set")
	}
	f.remoteID = id
	return nil
}

func (f *File) String() string {
	return "file:" + f.FileName
}

// nameFromPath derives a node name from a path's base name, resolving
// relative paths like "." and ".." to the real directory name first.
func nameFromPath(path string) (string, error) {
	base := filepath.Base(path)
	if base == "." || base == ".." {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", errors.WithContext(err, "resolve "+path)
		}
		base = filepath.Base(abs)
	}
	return base, nil
}

func childrenString(children []Node) string {
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = child.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
