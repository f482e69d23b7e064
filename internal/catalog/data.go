package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/draelsaid/dcmdb/internal/filelock"
	"github.com/draelsaid/dcmdb/internal/index"
)

// DataFile holds the scan results of a case. Despite its name the content
// is JSON.
const DataFile = "data.yaml"

// Data maps host -> experiment -> index.
type Data map[string]map[string]index.Index

// loadData reads a data file. A missing file yields empty data.
func loadData(path string) (Data, error) {
	raw, err := filelock.LockAndRead(path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(Data), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data := make(Data)
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return data, nil
}

// saveData writes data under the file lock of path.
func saveData(ctx context.Context, path string, data Data) error {
	raw, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := filelock.LockAndWrite(ctx, path, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
