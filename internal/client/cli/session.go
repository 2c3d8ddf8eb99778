package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kevinbuckley/tripwit/internal/client/remote"
)

const sessionFileName = "session.json"

// loadSession reads the saved JWT pair. A missing or unreadable file
// simply yields an empty session; the user is just not logged in.
func loadSession(dir string) (remote.Session, error) {
	var s remote.Session
	data, err := os.ReadFile(filepath.Join(dir, sessionFileName))
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return remote.Session{}, err
	}
	return s, nil
}

func saveSession(dir string, s remote.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, sessionFileName), data, 0o600)
}
