package notify

import (
	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
	"github.com/Technova-K02/eth-monitor/types"
)

// Notifier delivers one notification to the configured sink. Delivery is best
// effort; the caller logs a failed send and moves on.
type Notifier interface {
	Notify(n *types.Notification) error
}

// NewNotifier picks the sink from config. Without a webhook url notifications
// go to the process log only.
func NewNotifier(cfg config.Notifier, networkHttp network.Http) Notifier {
	if cfg.WebhookUrl == "" {
		return &logNotifier{}
	}

	return &discordNotifier{
		cfg:         cfg,
		networkHttp: networkHttp,
	}
}
