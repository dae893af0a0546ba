// Package backup dumps the whole data set to a single JSON archive and
// restores it, running each restored record through the migration layer so
// archives written by older versions load cleanly.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"orderdesk/domain"
	"orderdesk/migration"
)

// Snapshot holds every collection the archive covers.
type Snapshot struct {
	Workflows    []domain.Workflow    `json:"workflows"`
	Orders       []domain.Order       `json:"orders"`
	Products     []domain.Product     `json:"products"`
	Proformas    []domain.Proforma    `json:"proformas"`
	Users        []domain.User        `json:"users"`
	ActivityLogs []domain.ActivityLog `json:"activityLogs"`
}

type archive struct {
	Snapshot
	BackupDate string `json:"backupDate"`
}

// Dump serializes the snapshot with a backup timestamp. Nil collections are
// written as empty arrays so every archive has the same shape.
func Dump(s Snapshot) ([]byte, error) {
	if s.Workflows == nil {
		s.Workflows = []domain.Workflow{}
	}
	if s.Orders == nil {
		s.Orders = []domain.Order{}
	}
	if s.Products == nil {
		s.Products = []domain.Product{}
	}
	if s.Proformas == nil {
		s.Proformas = []domain.Proforma{}
	}
	if s.Users == nil {
		s.Users = []domain.User{}
	}
	if s.ActivityLogs == nil {
		s.ActivityLogs = []domain.ActivityLog{}
	}
	return json.MarshalIndent(archive{Snapshot: s, BackupDate: domain.NowISO()}, "", "  ")
}

// Filename builds the download name for an archive taken now.
func Filename(now time.Time) string {
	return "dashboard-backup-" + now.UTC().Format("2006-01-02") + ".json"
}

// Restore parses an archive and migrates every record to the current shape.
// The archive must at least carry workflows, orders and products; proformas,
// users and activity logs are optional and default to empty. Malformed JSON
// aborts the restore with nothing applied.
func Restore(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("invalid backup file: %w", err)
	}
	for _, required := range []string{"workflows", "orders", "products"} {
		if _, ok := raw[required]; !ok {
			return Snapshot{}, fmt.Errorf("invalid backup file: missing %s", required)
		}
	}

	return Snapshot{
		Workflows:    restoreEach(raw["workflows"], migration.Workflow),
		Orders:       restoreEach(raw["orders"], migration.Order),
		Products:     restoreEach(raw["products"], migration.Product),
		Proformas:    restoreEach(raw["proformas"], migration.Proforma),
		Users:        restoreEach(raw["users"], migration.User),
		ActivityLogs: restoreEach(raw["activityLogs"], migration.ActivityLog),
	}, nil
}

func restoreEach[T any](data json.RawMessage, migrate func(map[string]any) T) []T {
	var items []map[string]any
	if len(data) == 0 || json.Unmarshal(data, &items) != nil {
		return []T{}
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			item = map[string]any{}
		}
		out = append(out, migrate(item))
	}
	return out
}
