package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

var (
	deliveriesBucket = []byte("deliveries")
	repliesBucket    = []byte("replies")
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery records the outcome of one send request.
type Delivery struct {
	ID          string          `json:"id"`
	Action      string          `json:"action"`
	To          string          `json:"to"`
	WAMessageID string          `json:"wa_message_id,omitempty"`
	Status      string          `json:"status"`
	Response    json.RawMessage `json:"response,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Store interface {
	SaveDelivery(d Delivery) error
	GetDelivery(id string) (*Delivery, error)
	SaveReply(r whatsapp.Reply) error
	RepliesFor(waMessageID string) ([]whatsapp.Reply, error)
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(deliveriesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(repliesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) SaveDelivery(d Delivery) error {
	if d.ID == "" {
		return fmt.Errorf("saving delivery: empty id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return tx.Bucket(deliveriesBucket).Put([]byte(d.ID), data)
	})
}

// GetDelivery returns nil, nil when id is unknown.
func (s *BoltStore) GetDelivery(id string) (*Delivery, error) {
	var d *Delivery
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(deliveriesBucket).Get([]byte(id))
		if v == nil {
			return nil
		}
		d = &Delivery{}
		return json.Unmarshal(v, d)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// SaveReply keys replies as <context id>/<message id> so all answers to one
// sent message sit next to each other.
func (s *BoltStore) SaveReply(r whatsapp.Reply) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return tx.Bucket(repliesBucket).Put(replyKey(r.ContextID, r.MessageID), data)
	})
}

func (s *BoltStore) RepliesFor(waMessageID string) ([]whatsapp.Reply, error) {
	var replies []whatsapp.Reply
	prefix := replyKey(waMessageID, "")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(repliesBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var r whatsapp.Reply
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding reply %s: %w", k, err)
			}
			replies = append(replies, r)
		}
		return nil
	})
	return replies, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func replyKey(contextID, messageID string) []byte {
	return []byte(contextID + "/" + messageID)
}
