package eth

import "fmt"

type NoActiveClientErr struct {
	chain string
}

func NewNoActiveClientErr(chain string) error {
	return &NoActiveClientErr{chain: chain}
}

func (e *NoActiveClientErr) Error() string {
	return fmt.Sprintf("no active RPC client for chain %s", e.chain)
}
