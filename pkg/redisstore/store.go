package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/formkit/pkg/form"
)

// Store is a form.Store keeping one form state as a JSON document under a
// single key. Updates run as optimistic WATCH/MULTI transactions, so several
// processes may drive the same form.
//
// Numbers round-trip as json.Number. Validators that work on the string form
// of a value are unaffected, but a numeric initial value no longer deep
// equals its stored copy, so such fields never report as pristine.
type Store struct {
	client  redis.UniversalClient
	key     string
	ttl     time.Duration
	retries int
}

var _ form.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTTL expires the state d after its last update. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.ttl = d
		}
	}
}

// WithTxRetries bounds the optimistic retries of one update.
func WithTxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retries = n
		}
	}
}

// New returns a store for the state under key.
func New(client redis.UniversalClient, key string, opts ...Option) (*Store, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	s := &Store{client: client, key: key, retries: 20}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Key returns the Redis key holding the state.
func (s *Store) Key() string {
	return s.key
}

// Get returns the stored state, or an empty state when none exists.
func (s *Store) Get(ctx context.Context) (form.State, error) {
	return load(ctx, s.client, s.key)
}

// Update applies fn inside a WATCH/MULTI transaction, retrying when the key
// changed between read and write. fn may therefore run several times.
func (s *Store) Update(ctx context.Context, fn func(*form.State) error) (form.State, error) {
	var committed form.State

	txf := func(tx *redis.Tx) error {
		state, err := load(ctx, tx, s.key)
		if err != nil {
			return err
		}
		if err := fn(&state); err != nil {
			return err
		}

		data, err := json.Marshal(state)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, s.ttl)
			return nil
		})
		if err == nil {
			committed = state
		}
		return err
	}

	for range s.retries {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return form.State{}, err
		}
		return committed, nil
	}
	return form.State{}, ErrTxConflict
}

// Delete removes the stored state.
func (s *Store) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func load(ctx context.Context, cmd redis.Cmdable, key string) (form.State, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return form.NewState(), nil
	}
	if err != nil {
		return form.State{}, err
	}
	return decode(data)
}

func decode(data []byte) (form.State, error) {
	state := form.NewState()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&state); err != nil {
		return form.State{}, errors.Join(ErrCorruptState, err)
	}
	if state.Fields == nil {
		state.Fields = map[string]form.Record{}
	}
	if state.Arrays == nil {
		state.Arrays = map[string][]form.Record{}
	}
	return state, nil
}

// Factory creates stores under a common key prefix.
type Factory struct {
	client redis.UniversalClient
	prefix string
	opts   []Option
}

// NewFactory returns a Factory configured from cfg.
func NewFactory(client redis.UniversalClient, cfg Config) *Factory {
	return &Factory{
		client: client,
		prefix: cfg.KeyPrefix,
		opts:   []Option{WithTTL(cfg.StateTTL), WithTxRetries(cfg.TxRetries)},
	}
}

// Store returns the store of one form instance, identified by form name and
// session.
func (f *Factory) Store(formName, session string) (*Store, error) {
	return New(f.client, f.StateKey(formName, session), f.opts...)
}

// StateKey returns the key holding the state of one form instance.
func (f *Factory) StateKey(formName, session string) string {
	return joinKey(f.prefix, "state", formName, session)
}

func joinKey(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ":")
}
