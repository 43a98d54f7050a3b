package storage

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	PAYOUTS_BUCKET = "payouts"
	METADATA       = "metadata"
)

// Storage is the payout ledger; one nested bucket per confirmed payout run
type Storage struct {
	*bolt.DB
}

// InitStorage opens (or creates) the ledger database. Fails after one second
// if another process holds the file lock.
func InitStorage(dbFile string) (*Storage, error) {

	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to init db")
	}

	// Ensure some buckets exist
	err = db.Update(func(tx *bolt.Tx) error {

		if _, err := tx.CreateBucketIfNotExists([]byte(PAYOUTS_BUCKET)); err != nil {
			return errors.Wrap(err, "Cannot create payouts bucket")
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{db}, nil
}

func (s *Storage) Close() {
	if err := s.DB.Close(); err != nil {
		log.WithError(err).Error("Unable to close database")
		return
	}
	log.Info("Database closed")
}

// Itob returns an 8-byte big endian representation of v.
func Itob(v int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// Btoi returns an int from 8-byte big endian representation.
func Btoi(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
