package wash

import (
	"encoding/json"
	"time"

	"github.com/schemawash/schemawash/core"

	bolt "go.etcd.io/bbolt"
)

var filesBucket = []byte("files")

// A Mark records that a file has been fully processed.
type Mark struct {
	Lines     int    `json:"lines"`
	Timestamp string `json:"timestamp"`
}

// A BoltStore remembers which input files a run has finished, so an
// interrupted wash can resume without redoing them.
type BoltStore struct {
	filename string
	db       *bolt.DB
}

// NewBoltStore makes a BoltStore backed by the given file.  Call Open
// before use.
func NewBoltStore(filename string) *BoltStore {
	return &BoltStore{
		filename: filename,
	}
}

func (s *BoltStore) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(filesBucket)
		return err
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Done reports whether the given file has been marked finished.
func (s *BoltStore) Done(name string) (bool, error) {
	var done bool
	err := s.db.View(func(tx *bolt.Tx) error {
		done = tx.Bucket(filesBucket).Get([]byte(name)) != nil
		return nil
	})
	return done, err
}

// MarkDone records that the given file has been fully processed.
func (s *BoltStore) MarkDone(name string, lines int) error {
	mark := Mark{
		Lines:     lines,
		Timestamp: core.Timestamp(),
	}
	js, err := json.Marshal(&mark)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(filesBucket).Put([]byte(name), js)
	})
}

// Marks returns all finished files and their marks.
func (s *BoltStore) Marks() (map[string]*Mark, error) {
	acc := make(map[string]*Mark, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(filesBucket).Cursor()
		for name, bs := c.First(); name != nil; name, bs = c.Next() {
			var mark Mark
			if err := json.Unmarshal(bs, &mark); err != nil {
				return err
			}
			acc[string(name)] = &mark
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
