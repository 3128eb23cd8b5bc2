package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"foodifusion/internal/cart"
	"foodifusion/internal/storage"
)

const (
	keyPrefix      = "session/"
	metaSuffix     = "/meta"
	cartSuffix     = "/cart"
	verifiedSuffix = "/verified"

	maxTxnRetries = 8
)

// BadgerStore persists sessions in an embedded badger database. Conflicting
// transactions on the same session are retried; a retry observes the winner's
// commit, which is what makes ConsumeVerification single-winner.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the store under dir. An empty dir gives an
// in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func key(id, suffix string) []byte {
	return []byte(keyPrefix + id + suffix)
}

// ---- Transaction helpers ----

func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for i := 0; i < maxTxnRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
	return ErrBusy
}

func getJSON(txn *badger.Txn, k []byte, v any) (bool, error) {
	item, err := txn.Get(k)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, k []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(k, b)
}

func requireSession(txn *badger.Txn, id string) error {
	_, err := txn.Get(key(id, metaSuffix))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// ---- Session lifecycle ----

func (s *BadgerStore) Create(ctx context.Context, sess *Session) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, key(sess.ID, metaSuffix), sess)
	})
}

func (s *BadgerStore) Get(_ context.Context, id string) (*Session, error) {
	var sess Session
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := getJSON(txn, key(id, metaSuffix), &sess)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *BadgerStore) Delete(ctx context.Context, id string) (*storage.Artifact, error) {
	var pending *storage.Artifact
	err := s.update(ctx, func(txn *badger.Txn) error {
		pending = nil
		if err := requireSession(txn, id); err != nil {
			return err
		}
		var a storage.Artifact
		found, err := getJSON(txn, key(id, verifiedSuffix), &a)
		if err != nil {
			return err
		}
		if found {
			pending = &a
		}
		for _, suffix := range []string{metaSuffix, cartSuffix, verifiedSuffix} {
			if err := txn.Delete(key(id, suffix)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

func (s *BadgerStore) ListExpired(_ context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			k := string(item.Key())
			if !strings.HasSuffix(k, metaSuffix) {
				continue
			}
			var sess Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &sess)
			}); err != nil {
				return err
			}
			if sess.Expired(now) {
				ids = append(ids, sess.ID)
			}
		}
		return nil
	})
	return ids, err
}

// ---- Cart ----

func (s *BadgerStore) Cart(_ context.Context, id string) (*cart.Cart, error) {
	c := &cart.Cart{}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := requireSession(txn, id); err != nil {
			return err
		}
		_, err := getJSON(txn, key(id, cartSuffix), c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *BadgerStore) UpdateCart(ctx context.Context, id string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	var out *cart.Cart
	err := s.update(ctx, func(txn *badger.Txn) error {
		if err := requireSession(txn, id); err != nil {
			return err
		}
		c := &cart.Cart{}
		if _, err := getJSON(txn, key(id, cartSuffix), c); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		out = c
		return setJSON(txn, key(id, cartSuffix), c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---- Verified payment slot ----

func (s *BadgerStore) SwapVerification(ctx context.Context, id string, a *storage.Artifact) (*storage.Artifact, error) {
	var prev *storage.Artifact
	err := s.update(ctx, func(txn *badger.Txn) error {
		prev = nil
		if err := requireSession(txn, id); err != nil {
			return err
		}
		var old storage.Artifact
		found, err := getJSON(txn, key(id, verifiedSuffix), &old)
		if err != nil {
			return err
		}
		if found {
			prev = &old
		}
		return setJSON(txn, key(id, verifiedSuffix), a)
	})
	if err != nil {
		return nil, err
	}
	return prev, nil
}

func (s *BadgerStore) PeekVerification(_ context.Context, id string) (*storage.Artifact, error) {
	var out *storage.Artifact
	err := s.db.View(func(txn *badger.Txn) error {
		if err := requireSession(txn, id); err != nil {
			return err
		}
		var a storage.Artifact
		found, err := getJSON(txn, key(id, verifiedSuffix), &a)
		if err != nil {
			return err
		}
		if found {
			out = &a
		}
		return nil
	})
	return out, err
}

func (s *BadgerStore) ConsumeVerification(ctx context.Context, id string) (*storage.Artifact, error) {
	var out *storage.Artifact
	err := s.update(ctx, func(txn *badger.Txn) error {
		out = nil
		var a storage.Artifact
		found, err := getJSON(txn, key(id, verifiedSuffix), &a)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotVerified
		}
		out = &a
		return txn.Delete(key(id, verifiedSuffix))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) RestoreVerification(ctx context.Context, id string, a *storage.Artifact) (bool, error) {
	restored := false
	err := s.update(ctx, func(txn *badger.Txn) error {
		restored = false
		if err := requireSession(txn, id); err != nil {
			return err
		}
		_, err := txn.Get(key(id, verifiedSuffix))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		restored = true
		return setJSON(txn, key(id, verifiedSuffix), a)
	})
	return restored, err
}
