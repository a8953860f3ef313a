package vclients

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisStore keeps one hash per client plus an index set, for deployments
// where the flat file's whole-file scans and uncoordinated appends are not
// acceptable. Same contract as the file store; the resolver cannot tell
// them apart.
type redisStore struct {
	rdb     *redis.Client
	deriver SecretDeriver
	log     *zap.SugaredLogger
}

const (
	redisIndexKey  = "vclients"
	redisKeyPrefix = "vclient:"
)

func NewRedisStore(rdb *redis.Client, deriver SecretDeriver, log *zap.SugaredLogger) Store {
	return &redisStore{rdb: rdb, deriver: deriver, log: log}
}

func (s *redisStore) Initialize(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *redisStore) Register(ctx context.Context, tenantID, clientName string, redirectURIs []string) (VirtualClient, string, error) {
	vc := VirtualClient{
		ClientID:     uuid.NewString(),
		TenantID:     tenantID,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		ClientName:   clientName,
		RedirectURIs: redirectURIs,
	}
	fields := map[string]any{
		"tenant_id":  vc.TenantID,
		"created_at": vc.CreatedAt.Format(time.RFC3339),
	}
	if vc.ClientName != "" {
		fields["client_name"] = vc.ClientName
	}
	if len(vc.RedirectURIs) > 0 {
		fields["redirect_uris"] = strings.Join(vc.RedirectURIs, ",")
	}
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, redisKeyPrefix+vc.ClientID, fields)
	pipe.SAdd(ctx, redisIndexKey, vc.ClientID)
	if _, err := pipe.Exec(ctx); err != nil {
		return VirtualClient{}, "", err
	}
	s.log.Infow("virtual client registered", "client_id", vc.ClientID, "tenant", tenantID)
	return vc, s.deriver.Derive(vc.ClientID), nil
}

func (s *redisStore) Lookup(ctx context.Context, clientID string) (*VirtualClient, error) {
	m, err := s.rdb.HGetAll(ctx, redisKeyPrefix+clientID).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	vc := fromHash(clientID, m)
	return &vc, nil
}

func (s *redisStore) ListAll(ctx context.Context) ([]VirtualClient, error) {
	ids, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	var out []VirtualClient
	for _, id := range ids {
		m, err := s.rdb.HGetAll(ctx, redisKeyPrefix+id).Result()
		if err != nil {
			return nil, err
		}
		if len(m) == 0 {
			continue
		}
		out = append(out, fromHash(id, m))
	}
	return out, nil
}

func fromHash(clientID string, m map[string]string) VirtualClient {
	vc := VirtualClient{ClientID: clientID, TenantID: m["tenant_id"], ClientName: m["client_name"]}
	if t, err := time.Parse(time.RFC3339, m["created_at"]); err == nil {
		vc.CreatedAt = t
	}
	if uris := m["redirect_uris"]; uris != "" {
		vc.RedirectURIs = strings.Split(uris, ",")
	}
	return vc
}
