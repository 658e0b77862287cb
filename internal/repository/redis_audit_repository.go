package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

// appendAuditScript pushes an entry and trims the list in one step.
// KEYS[1] = audit list, ARGV[1] = entry JSON, ARGV[2] = retention (0 keeps everything)
var appendAuditScript = redis.NewScript(`
	redis.call('LPUSH', KEYS[1], ARGV[1])
	local keep = tonumber(ARGV[2])
	if keep > 0 then
		redis.call('LTRIM', KEYS[1], 0, keep - 1)
	end
	return redis.call('LLEN', KEYS[1])
`)

// RedisAuditRepository keeps the audit trail as a Redis list, newest first.
type RedisAuditRepository struct {
	client *redis.Client
	key    string
}

// NewRedisAuditRepository creates an audit repository on the given key prefix.
func NewRedisAuditRepository(client *redis.Client, prefix string) *RedisAuditRepository {
	return &RedisAuditRepository{client: client, key: prefix + KeyAuditLogs}
}

// Append stores entry and keeps only the newest retain entries.
func (r *RedisAuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry, retain int) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit log: %w", err)
	}
	if retain < 0 {
		retain = 0
	}
	if err := appendAuditScript.Run(ctx, r.client, []string{r.key}, string(data), retain).Err(); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first.
func (r *RedisAuditRepository) List(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	entries := make([]models.AuditLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.AuditLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode audit log: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
