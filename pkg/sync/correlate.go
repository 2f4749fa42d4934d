package sync

import (
	"github.com/bioarchive/dsclient/pkg/local"
	"github.com/bioarchive/dsclient/pkg/remote"
)

// UpdateRemoteIDs marks which parts of the local tree already exist
// remotely by matching nodes against the fetched remote tree by name.
// Matched folders get their remote id filled in so the walk skips them.
// Matched files additionally compare content hashes: an identical hash means
// nothing to send, a differing or missing hash means the content must be
// re-uploaded to the existing file. remoteProject may be nil, meaning the
// whole tree is new.
func UpdateRemoteIDs(project *local.Project, remoteProject *remote.Project) error {
	if remoteProject == nil {
		return nil
	}
	if err := project.SetRemoteID(remoteProject.ProjectID); err != nil {
		return err
	}
	return correlateChildren(project.Children, remoteProject.Children)
}

func correlateChildren(localChildren []local.Node, remoteChildren []remote.Node) error {
	for _, localChild := range localChildren {
		match := findByName(remoteChildren, localChild.Name())
		if match == nil {
			continue
		}

		switch node := localChild.(type) {
		case *local.Folder:
			remoteFolder, ok := match.(*remote.Folder)
			if !ok {
				continue
			}
			if err := node.SetRemoteID(remoteFolder.FolderID); err != nil {
				return err
			}
			if err := correlateChildren(node.Children, remoteFolder.Children); err != nil {
				return err
			}
		case *local.File:
			remoteFile, ok := match.(*remote.File)
			if !ok {
				continue
			}
			if err := correlateFile(node, remoteFile); err != nil {
				return err
			}
		}
	}
	return nil
}

func correlateFile(file *local.File, remoteFile *remote.File) error {
	if err := file.SetRemoteID(remoteFile.FileID); err != nil {
		return err
	}

	if remoteFile.Hash == nil {
		// The server has no hash for the content, so we can't prove
		// the file is in sync. Re-send it.
		file.NeedToSend = true
		return nil
	}

	hash, err := file.HashPair()
	if err != nil {
		return err
	}
	file.NeedToSend = hash.Algorithm != remoteFile.Hash.Algorithm ||
		hash.Value != remoteFile.Hash.Value
	return nil
}

func findByName(nodes []remote.Node, name string) remote.Node {
	for _, node := range nodes {
		if node.Name() == name {
			return node
		}
	}
	return nil
}
