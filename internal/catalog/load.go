package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/zeroshade/sgvdesk/types"
)

// Record is one raw entry of the catalog file.
type Record struct {
	Brand    string
	Name     string
	Filename string
	URL      string
	Price    *float64
}

func (r *Record) UnmarshalJSON(data []byte) error {
	aux := struct {
		Brand    string          `json:"brand"`
		Name     string          `json:"name"`
		Filename string          `json:"filename"`
		URL      string          `json:"url"`
		Price    json.RawMessage `json:"price"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Brand, r.Name, r.Filename, r.URL = aux.Brand, aux.Name, aux.Filename, aux.URL
	r.Price = nil
	// only bare JSON numbers count as a supplied price
	raw := bytes.TrimSpace(aux.Price)
	if len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
			r.Price = &f
		}
	}
	return nil
}

// Decode reads a JSON array of catalog records. Entries that fail to decode
// are skipped; only a broken top-level document is an error.
func Decode(rd io.Reader) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(rd).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for _, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Load reads and prices the catalog at path. Callers treat an error as the
// "no catalog" state.
func Load(path string) ([]*types.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return Price(records), nil
}
