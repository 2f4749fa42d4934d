// Package sync decides which parts of a local project tree must be created
// remotely and sends them in an order that never references a parent before
// it exists.
package sync

import (
	"github.com/bioarchive/dsclient/pkg/local"
)

// Parent is a typed reference to the node a child is created under. Creation
// calls need the parent's kind because projects and folders are distinct
// resource types on the server.
type Parent interface {
	Kind() string
	RemoteID() string
}

// Visitor is called for every node of a local tree during a walk.
type Visitor interface {
	VisitProject(project *local.Project) error
	VisitFolder(folder *local.Folder, parent Parent) error
	VisitFile(file *local.File, parent Parent) error
}

// Walk visits every node of the project tree exactly once in pre-order:
// the project first, then each child depth-first. Pre-order is what
// guarantees a parent's remote id is known before any of its children are
// created.
func Walk(project *local.Project, visitor Visitor) error {
	if err := visitor.VisitProject(project); err != nil {
		return err
	}
	return walkChildren(project, project.Children, visitor)
}

func walkChildren(parent Parent, children []local.Node, visitor Visitor) error {
	for _, child := range children {
		switch node := child.(type) {
		case *local.Folder:
			if err := visitor.VisitFolder(node, parent); err != nil {
				return err
			}
			if err := walkChildren(node, node.Children, visitor); err != nil {
				return err
			}
		case *local.File:
			if err := visitor.VisitFile(node, parent); err != nil {
				return err
			}
		}
	}
	return nil
}
