// filepath: internal/preview/marker.go
package preview

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"shapehub/internal/logging"
	"shapehub/internal/models"
)

// StateVersion is the current format version of the repair marker file.
const StateVersion = 1

// LoadState reads the repair marker file. It returns (nil, nil) when no
// marker exists. Earlier releases wrote a bare timestamp string instead of
// a JSON document; both formats are accepted.
func LoadState(path string) (*models.RepairState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read repair marker %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "{") {
		var st models.RepairState
		if err := json.Unmarshal([]byte(content), &st); err != nil {
			logging.Log.Warnf("Repair marker %s holds unparseable JSON: %v. Treating as legacy marker.", path, err)
			return &models.RepairState{}, nil
		}
		return &st, nil
	}

	// Legacy format: a single timestamp line.
	st := &models.RepairState{}
	if ts, err := time.Parse(time.RFC3339, content); err == nil {
		st.CompletedAt = ts
	} else {
		logging.Log.Warnf("Repair marker %s holds an unrecognized timestamp %q. Keeping marker, dropping timestamp.", path, content)
	}
	return st, nil
}

// SaveState overwrites the repair marker with the given state.
func SaveState(path string, st models.RepairState) error {
	st.Version = StateVersion
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode repair marker: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("could not write repair marker %s: %w", path, err)
	}
	return nil
}
