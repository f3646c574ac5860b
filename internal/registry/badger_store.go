package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

// badgerRecord is the stored form of a WalletRecord
type badgerRecord struct {
	UserAddress string
	Data        []byte
}

// BadgerStore keeps records in a badger database keyed by user address.
type BadgerStore struct {
	store *badgerhold.Store
	stop  chan struct{}
	once  sync.Once
}

// NewBadgerStore opens (or creates if not exists) the badger store in dbDir.
// An empty dbDir opens an in-memory store.
func NewBadgerStore(dbDir string, logger badger.Logger) (*BadgerStore, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "open", Path: dbDir, Err: err}
	}

	s := &BadgerStore{store: db, stop: make(chan struct{})}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil &&
						!errors.Is(err, badger.ErrNoRewrite) {
						log.WithError(err).Warn("registry value log gc failed")
					}
				case <-s.stop:
					return
				}
			}
		}()
	}

	return s, nil
}

func (s *BadgerStore) Get(ctx context.Context, userAddress string) (*model.WalletRecord, error) {
	var rec badgerRecord
	if err := s.store.Get(userAddress, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	return &model.WalletRecord{UserAddress: rec.UserAddress, Data: rec.Data}, nil
}

func (s *BadgerStore) Add(ctx context.Context, record model.WalletRecord) error {
	data, err := compactCredential(record.Data)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}

	rec := badgerRecord{UserAddress: record.UserAddress, Data: data}
	if err := s.store.Insert(record.UserAddress, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return ErrRecordExists
		}
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

func (s *BadgerStore) All(ctx context.Context) ([]model.WalletRecord, error) {
	var recs []badgerRecord
	if err := s.store.Find(&recs, nil); err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}

	records := make([]model.WalletRecord, 0, len(recs))
	for _, rec := range recs {
		records = append(records, model.WalletRecord{UserAddress: rec.UserAddress, Data: rec.Data})
	}
	return records, nil
}

func (s *BadgerStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return s.store.Close()
}
