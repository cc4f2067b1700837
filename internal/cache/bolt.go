package cache

import (
	"bytes"
	"encoding/gob"

	"go.etcd.io/bbolt"
)

// definitionsBucket is the single bbolt bucket the on-disk cache uses.
var definitionsBucket = []byte("definitions")

// boltStore is the on_disk cache store: an embedded bbolt key-value file,
// one bucket, gob-encoded entries keyed by canonical MAC string. bbolt's
// single-writer/many-readers transaction model gives the concurrency
// semantics spec.md §4.4 asks for without any extra locking here.
type boltStore struct {
	db *bbolt.DB
}

var _ store = (*boltStore)(nil)

func newBoltStore(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0o640, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(definitionsBucket)

		return err
	})
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	return &boltStore{db: db}, nil
}

func (b *boltStore) get(mac string) (e entry, ok bool, err error) {
	err = b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(definitionsBucket).Get([]byte(mac))
		if v == nil {
			return nil
		}

		ok = true

		return gob.NewDecoder(bytes.NewReader(v)).Decode(&e)
	})

	return e, ok, err
}

func (b *boltStore) set(mac string, e entry) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(definitionsBucket).Put([]byte(mac), buf.Bytes())
	})
}

func (b *boltStore) flush() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(definitionsBucket); err != nil {
			return err
		}

		_, err := tx.CreateBucket(definitionsBucket)

		return err
	})
}

func (b *boltStore) rangeEntries(f func(mac string, e entry) bool) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(definitionsBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e entry
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&e); err != nil {
				return err
			}

			if !f(string(k), e) {
				break
			}
		}

		return nil
	})
}

func (b *boltStore) close() error {
	return b.db.Close()
}
