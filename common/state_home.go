package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetOrderdeskStateHome returns a directory path for storing user-specific
// orderdesk state data (logs etc). If needed, it also creates the necessary
// directories according to the XDG spec. Can be overridden by setting the
// ORDERDESK_STATE_HOME environment variable.
func GetOrderdeskStateHome() (string, error) {
	stateDir := os.Getenv("ORDERDESK_STATE_HOME")
	if stateDir != "" {
		err := os.MkdirAll(stateDir, 0755)
		if err != nil {
			return "", fmt.Errorf("failed to create orderdesk state directory from ORDERDESK_STATE_HOME: %w", err)
		}
		return stateDir, nil
	}

	stateDir = filepath.Join(xdg.StateHome, "orderdesk")
	err := os.MkdirAll(stateDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create orderdesk state directory: %w", err)
	}
	return stateDir, nil
}
