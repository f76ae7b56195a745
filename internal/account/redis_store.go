package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 3

// RedisStore keeps one hash per account under prefix+email. Unset
// provider fields are absent from the hash.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed account store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "account:",
	}
}

func (r *RedisStore) key(email string) string {
	return r.prefix + NormalizeEmail(email)
}

func (r *RedisStore) Get(ctx context.Context, email string) (*Account, error) {
	fields, err := r.client.HGetAll(ctx, r.key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrPersistence, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return fromHash(fields)
}

// Create relies on WATCH so a concurrent create of the same key aborts
// the transaction instead of overwriting.
func (r *RedisStore) Create(ctx context.Context, a *Account) error {
	key := r.key(a.Email)
	now := time.Now().UTC()

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateEmail
		}

		a.Email = NormalizeEmail(a.Email)
		a.CreatedAt = now
		a.UpdatedAt = now

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, toHash(a))
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, redis.TxFailedErr):
		return ErrDuplicateEmail
	default:
		return fmt.Errorf("%w: create: %v", ErrPersistence, err)
	}
}

// Update writes the patch and reads back the hash inside one MULTI.
func (r *RedisStore) Update(ctx context.Context, email string, p Patch) (*Account, error) {
	key := r.key(email)

	var result map[string]string
	update := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		set, del := patchFields(p)
		var read *redis.MapStringStringCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(set) > 0 || len(del) > 0 {
				set["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
				pipe.HSet(ctx, key, set)
			}
			if len(del) > 0 {
				pipe.HDel(ctx, key, del...)
			}
			read = pipe.HGetAll(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		result = read.Val()
		return nil
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: update: %v", ErrPersistence, err)
	}
	return fromHash(result)
}

func patchFields(p Patch) (set map[string]any, del []string) {
	set = map[string]any{}
	apply := func(field string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			del = append(del, field)
			return
		}
		set[field] = *v
	}

	apply("provider_account_id", p.ProviderAccountID)
	apply("provider_display_name", p.ProviderDisplayName)
	apply("provider_access_token", p.ProviderAccessToken)
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	return set, del
}

func toHash(a *Account) map[string]any {
	h := map[string]any{
		"id":              a.ID,
		"email":           a.Email,
		"display_name":    a.DisplayName,
		"password_digest": a.PasswordDigest,
		"status":          string(a.Status),
		"created_at":      a.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":      a.UpdatedAt.Format(time.RFC3339Nano),
	}
	if a.ProviderAccountID != "" {
		h["provider_account_id"] = a.ProviderAccountID
	}
	if a.ProviderDisplayName != "" {
		h["provider_display_name"] = a.ProviderDisplayName
	}
	if a.ProviderAccessToken != "" {
		h["provider_access_token"] = a.ProviderAccessToken
	}
	return h
}

func fromHash(h map[string]string) (*Account, error) {
	a := &Account{
		ID:                  h["id"],
		Email:               h["email"],
		DisplayName:         h["display_name"],
		PasswordDigest:      h["password_digest"],
		ProviderAccountID:   h["provider_account_id"],
		ProviderDisplayName: h["provider_display_name"],
		ProviderAccessToken: h["provider_access_token"],
		Status:              Status(h["status"]),
	}

	var err error
	if a.CreatedAt, err = parseTime(h["created_at"]); err != nil {
		return nil, fmt.Errorf("%w: decode created_at: %v", ErrPersistence, err)
	}
	if a.UpdatedAt, err = parseTime(h["updated_at"]); err != nil {
		return nil, fmt.Errorf("%w: decode updated_at: %v", ErrPersistence, err)
	}
	return a, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
