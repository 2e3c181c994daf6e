package kvstore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"go.uber.org/zap"

	"github.com/intrntsrfr/slxshybot/logging"
)

var ErrNotFound = errors.New("key not found")

type Store struct {
	db  *badger.DB
	log *zap.Logger
}

// PanelRecord remembers which message currently shows the grass panel in a channel.
type PanelRecord struct {
	ChannelID string
	MessageID string
	UpdatedAt time.Time
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{
		log: log,
	}

	opts := badger.DefaultOptions(dir)
	opts.Truncate = true
	opts.ValueLogLoadingMode = options.FileIO
	opts.NumVersionsToKeep = 1
	opts.Logger = logging.NewBadgerLogger(log.Named("badger"))

	db, err := badger.Open(opts)
	if err != nil {
		s.log.Error("failed to open badger", zap.String("dir", dir), zap.Error(err))
		return nil, err
	}
	s.db = db

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(v)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	buffer := bytes.NewReader(data)
	return gob.NewDecoder(buffer).Decode(v)
}

func spamPrefix(gid, uid string) string {
	return fmt.Sprintf("spam:%v:%v:", gid, uid)
}

// RecordMessage stores a marker for the message that expires after window.
func (s *Store) RecordMessage(gid, uid, mid string, window time.Duration) error {
	key := spamPrefix(gid, uid) + mid
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), nil).WithTTL(window)
		return txn.SetEntry(entry)
	})
}

// CountMessages returns how many unexpired message markers the user has.
func (s *Store) CountMessages(gid, uid string) (int, error) {
	prefix := []byte(spamPrefix(gid, uid))
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// ClearMessages drops every marker for the user.
func (s *Store) ClearMessages(gid, uid string) error {
	prefix := []byte(spamPrefix(gid, uid))
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SetPanel(rec *PanelRecord) error {
	enc, err := encodeGob(rec)
	if err != nil {
		s.log.Error("failed to encode panel record", zap.Error(err))
		return err
	}

	key := fmt.Sprintf("panel:%v", rec.ChannelID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), enc)
	})
}

func (s *Store) GetPanel(channelID string) (*PanelRecord, error) {
	var rec PanelRecord
	key := fmt.Sprintf("panel:%v", channelID)
	if err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return decodeGob(value, &rec)
	}); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to read panel record", zap.Error(err))
		return nil, err
	}

	return &rec, nil
}

// RunGC compacts the value log every interval until ctx is done.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	gcTicker := time.NewTicker(interval)
	defer gcTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-gcTicker.C:
			for {
				err := s.db.RunValueLogGC(0.7)
				if err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.log.Debug("value log gc", zap.Error(err))
					}
					break
				}
			}
		}
	}
}
