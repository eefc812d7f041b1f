package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/Technova-K02/eth-monitor/types"
)

// logNotifier writes notifications to the process log. Used when no webhook is
// configured, typically in local development.
type logNotifier struct{}

func (l *logNotifier) Notify(n *types.Notification) error {
	fields := log.Fields{}
	for _, field := range n.Fields {
		fields[field.Name] = field.Value
	}

	log.WithFields(fields).Info(n.Title)

	return nil
}
