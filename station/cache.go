package station

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// SerializeIndex encodes an Index to bytes using gob encoding. Used for
// disk-based caching to avoid re-downloading the dataset on every start.
func SerializeIndex(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(idx); err != nil {
		return nil, fmt.Errorf("failed to encode station index: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeIndex decodes an Index previously written by SerializeIndex.
func DeserializeIndex(data []byte) (*Index, error) {
	var idx Index
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&idx); err != nil {
		return nil, fmt.Errorf("failed to decode station index: %w", err)
	}
	return &idx, nil
}

// SerializeIndexToFile writes an Index to a file using gob encoding.
func SerializeIndexToFile(idx *Index, path string) error {
	data, err := SerializeIndex(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DeserializeIndexFromFile reads an Index from a file. A missing or
// corrupted file is an error; the caller falls back to a fresh fetch.
func DeserializeIndexFromFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return DeserializeIndex(data)
}
