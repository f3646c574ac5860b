package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/AlexZinkM/yield-agent/internal/model"
)

// Store persists wallet records keyed by user address.
type Store interface {
	// Get returns the record for userAddress or ErrRecordNotFound.
	Get(ctx context.Context, userAddress string) (*model.WalletRecord, error)
	// Add durably stores a new record or returns ErrRecordExists.
	Add(ctx context.Context, record model.WalletRecord) error
	// All returns every stored record.
	All(ctx context.Context) ([]model.WalletRecord, error)
	Close() error
}

// compactCredential returns the canonical (compact) encoding of a credential
// blob. Key order and number literals are left untouched.
func compactCredential(raw json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("credential is empty")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("credential is not valid JSON: %w", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}
