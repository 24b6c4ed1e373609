package cli

import (
	"context"
	"fmt"

	"github.com/SyntheticAutonomicMind/SAM-sub003/storage"
)

// ListSessions prints the persisted sessions in a database.
func ListSessions(ctx context.Context, dbPath string) error {
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}
	for _, id := range sessions {
		messages, err := store.LoadSession(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s  (%d messages)\n", id, len(messages))
	}
	return nil
}
