package notify

import "github.com/Technova-K02/eth-monitor/types"

type MockNotifier struct {
	NotifyFunc func(n *types.Notification) error
}

func (m *MockNotifier) Notify(n *types.Notification) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(n)
	}

	return nil
}
