// Package knowledge turns the DeFi yield dataset into a searchable
// embedding index and answers questions over it.
package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/AlexZinkM/yield-agent/internal/model"
)

// Document is one searchable record of the knowledge base
type Document struct {
	PageContent string            `json:"page_content"`
	Metadata    map[string]string `json:"metadata"`
}

// LoadRecords reads the JSON array of yield records stored at path
func LoadRecords(path string) ([]model.YieldRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var records []model.YieldRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file %s: %w", path, err)
	}
	return records, nil
}

// Documents builds one document per record, in record order
func Documents(records []model.YieldRecord) []Document {
	docs := make([]Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, Document{
			PageContent: fmt.Sprintf(
				"Project: %s, Chain: %s, Symbol: %s, TVL: %s, APY: %s, Stablecoin: %s",
				r.Project, r.Chain, r.Symbol,
				formatNumber(float64(r.TVLUsd)),
				formatNumber(float64(r.APYBase)),
				formatBool(bool(r.Stablecoin)),
			),
			Metadata: map[string]string{
				"symbol":  r.Symbol,
				"project": r.Project,
			},
		})
	}
	return docs
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// FilterRecords keeps records with at least minTVL, largest TVL first,
// capped at limit entries when limit is positive.
func FilterRecords(records []model.YieldRecord, minTVL float64, limit int) []model.YieldRecord {
	out := make([]model.YieldRecord, 0, len(records))
	for _, r := range records {
		if float64(r.TVLUsd) >= minTVL {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TVLUsd > out[j].TVLUsd
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WriteRecords replaces the dataset at path with records
func WriteRecords(path string, records []model.YieldRecord) error {
	if records == nil {
		records = []model.YieldRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
