package station

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/drfccv/mcp-server-12306/config"
)

// LoadIndexFromConfig builds a station index from the configured dataset
// source: a local file when set, the official station_name.js URL otherwise.
func LoadIndexFromConfig(cfg config.StationsConfig) (*Index, error) {
	var raw []byte
	var err error
	if cfg.LocalPath != "" {
		raw, err = os.ReadFile(cfg.LocalPath)
	} else {
		raw, err = fetchDataset(cfg.DataURL)
	}
	if err != nil {
		return nil, err
	}
	stations, err := ParseDataset(string(raw))
	if err != nil {
		return nil, err
	}
	return NewIndex(stations), nil
}

func fetchDataset(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// ParseDataset parses the station_name.js snapshot. Records are separated by
// '@' with '|'-separated fields: mnemonic, name, telecode, full pinyin, short
// pinyin, ordinal. Records with fewer than five fields are skipped; newer
// snapshots append extra fields, which are ignored.
func ParseDataset(raw string) ([]Station, error) {
	if i := strings.Index(raw, "'"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.LastIndex(raw, "'"); i >= 0 {
		raw = raw[:i]
	}
	records := strings.Split(raw, "@")
	stations := make([]Station, 0, len(records))
	for _, rec := range records {
		if rec == "" {
			continue
		}
		fields := strings.Split(rec, "|")
		if len(fields) < 5 {
			continue
		}
		s := Station{
			Name:    fields[1],
			Code:    strings.ToUpper(fields[2]),
			Pinyin:  strings.ToLower(fields[3]),
			PyShort: strings.ToLower(fields[4]),
		}
		if len(fields) > 5 {
			s.Num = fields[5]
		}
		if s.Name == "" || len(s.Code) != 3 {
			continue
		}
		stations = append(stations, s)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("station dataset contained no records")
	}
	return stations, nil
}
