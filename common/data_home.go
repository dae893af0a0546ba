package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// GetOrderdeskDataHome returns a directory path for storing user-specific
// orderdesk data (the database, backups). If needed, it also creates the
// necessary directories according to the XDG spec. Can be overridden by
// setting the ORDERDESK_DATA_HOME environment variable.
func GetOrderdeskDataHome() (string, error) {
	dataDir := os.Getenv("ORDERDESK_DATA_HOME")
	if dataDir != "" {
		return dataDir, nil
	}

	dataDir = filepath.Join(xdg.DataHome, "orderdesk")
	err := os.MkdirAll(dataDir, 0755)
	if err != nil {
		return "", fmt.Errorf("failed to create orderdesk data directory: %w", err)
	}
	return dataDir, nil
}
