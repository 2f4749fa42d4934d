// Package remote reads project trees and users out of the Data Service.
package remote

import (
	"fmt"
	"strings"

	"github.com/bioarchive/dsclient/pkg/dataservice"
)

// Node is a typed node of a remote project tree: a Project, Folder, or File.
type Node interface {
	// Kind is the server's kind discriminator for this node.
	Kind() string
	// ID is the server-assigned UUID.
	ID() string
	// Name is the node's name within its parent.
	Name() string
	fmt.Stringer
}

// Project is the root of a remote tree.
type Project struct {
	ProjectID   string
	ProjectName string
	Description string
	IsDeleted   bool
	Children    []Node
}

func (p *Project) Kind() string { return dataservice.KindProject }
func (p *Project) ID() string   { return p.ProjectID }
func (p *Project) Name() string { return p.ProjectName }

// AddChild appends a child, preserving the server's reported order.
func (p *Project) AddChild(child Node) {
	p.Children = append(p.Children, child)
}

func (p *Project) String() string {
	return fmt.Sprintf("project: %s id:%s %s",
		p.ProjectName, p.ProjectID, childrenString(p.Children))
}

// Folder is a branch of a remote tree. Only projects and folders hold
// children; files never do.
type Folder struct {
	FolderID   string
	FolderName string
	IsDeleted  bool
	Children   []Node
}

func (f *Folder) Kind() string { return dataservice.KindFolder }
func (f *Folder) ID() string   { return f.FolderID }
func (f *Folder) Name() string { return f.FolderName }

// AddChild appends a child, preserving the server's reported order.
func (f *Folder) AddChild(child Node) {
	f.Children = append(f.Children, child)
}

func (f *Folder) String() string {
	return fmt.Sprintf("folder: %s id:%s %s",
		f.FolderName, f.FolderID, childrenString(f.Children))
}

// File is a leaf of a remote tree. Hash is nil until the file's detail
// endpoint has been consulted, and stays nil when the server has no hash for
// the content.
type File struct {
	FileID    string
	FileName  string
	IsDeleted bool
	Size      int64
	Hash      *dataservice.Hash
}

func (f *File) Kind() string { return dataservice.KindFile }
func (f *File) ID() string   { return f.FileID }
func (f *File) Name() string { return f.FileName }

// SetHash records the content hash fetched from the file detail endpoint.
func (f *File) SetHash(value, algorithm string) {
	f.Hash = &dataservice.Hash{Value: value, Algorithm: algorithm}
}

func (f *File) String() string {
	return fmt.Sprintf("file: %s id:%s size:%d", f.FileName, f.FileID, f.Size)
}

// User is an account on the remote store.
type User struct {
	ID       string
	Username string
	FullName string
}

func (u User) String() string {
	return fmt.Sprintf("id:%s username:%s full_name:%s", u.ID, u.Username, u.FullName)
}

func childrenString(children []Node) string {
	parts := make([]string, len(children))
	for i, child := range children {
		parts[i] = child.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
