package sync

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bioarchive/dsclient/pkg/dataservice"
)

// Watcher is notified just before each item is sent to the remote store.
type Watcher interface {
	SendingItem(kind, name string)
}

// PrintingWatcher reports progress on stdout.
type PrintingWatcher struct{}

// SendingItem prints the item about to be sent.
func (PrintingWatcher) SendingItem(kind, name string) {
	switch kind {
	case dataservice.KindProject:
		fmt.Printf("Creating project %s\n", name)
	case dataservice.KindFolder:
		fmt.Printf("Creating folder %s\n", name)
	default:
		fmt.Printf("Uploading %s\n", name)
	}
	log.WithFields(log.Fields{"kind": kind, "name": name}).Debug("Sending item")
}

type nullWatcher struct{}

func (nullWatcher) SendingItem(kind, name string) {}
