package domain

import "github.com/segmentio/ksuid"

// NewId generates a prefixed identifier, e.g. "order_2aBcD...". The prefix
// keeps ids self-describing in logs and exported data.
func NewId(prefix string) string {
	return prefix + "_" + ksuid.New().String()
}
