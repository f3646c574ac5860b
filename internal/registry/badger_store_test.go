package registry

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "0xABC")
	require.ErrorIs(t, err, ErrRecordNotFound)

	rec := model.WalletRecord{UserAddress: "0xABC", Data: json.RawMessage(`{ "wallet_id": "w-1" }`)}
	require.NoError(t, store.Add(ctx, rec))
	require.ErrorIs(t, store.Add(ctx, rec), ErrRecordExists)

	got, err := store.Get(ctx, "0xABC")
	require.NoError(t, err)
	require.Equal(t, "0xABC", got.UserAddress)
	require.Equal(t, `{"wallet_id":"w-1"}`, string(got.Data))

	require.NoError(t, store.Add(ctx, model.WalletRecord{UserAddress: "0xDEF", Data: json.RawMessage(`{"wallet_id":"w-2"}`)}))
	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, model.WalletRecord{UserAddress: "0xABC", Data: json.RawMessage(`{"wallet_id":"w-1"}`)}))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "0xABC")
	require.NoError(t, err)
	require.Equal(t, `{"wallet_id":"w-1"}`, string(got.Data))
}

func TestRegistryOverBadgerStore(t *testing.T) {
	store, err := NewBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	provider := &fakeProvider{}
	reg := New(store, provider, testNetwork)

	const n = 16
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := reg.Create(ctx, fmt.Sprintf("0x%d", i%4))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := reg.Records(ctx)
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, int32(4), provider.created.Load())
}
