package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const ticketKeyPrefix = "stream_ticket:"

// TicketStore issues single-use, short-lived stream tickets. The WebSocket
// transport cannot carry an Authorization header, so a client first trades
// its bearer token for a ticket over plain HTTP, then presents the ticket in
// the stream URL. Redemption is GETDEL: a ticket authenticates exactly one
// connection attempt.
type TicketStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewTicketStore(rdb *goredis.Client, ttl time.Duration) *TicketStore {
	return &TicketStore{rdb: rdb, ttl: ttl}
}

type ticketPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// Issue stores the identity under a fresh random ticket and returns it.
func (s *TicketStore) Issue(ctx context.Context, identity domain.Identity) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket: %w", err)
	}
	ticket := hex.EncodeToString(buf)

	payload, err := json.Marshal(ticketPayload{UserID: identity.UserID, Role: string(identity.Role)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ticket payload: %w", err)
	}

	if err := s.rdb.Set(ctx, ticketKeyPrefix+ticket, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store ticket: %w", err)
	}
	return ticket, nil
}

// Redeem consumes a ticket and returns the identity it was issued for.
// Unknown, expired, and already-redeemed tickets all fail the same way.
func (s *TicketStore) Redeem(ctx context.Context, ticket string) (domain.Identity, error) {
	raw, err := s.rdb.GetDel(ctx, ticketKeyPrefix+ticket).Result()
	if errors.Is(err, goredis.Nil) {
		return domain.Identity{}, domain.ErrTicketInvalid
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to redeem ticket: %w", err)
	}

	var payload ticketPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Identity{}, domain.ErrTicketInvalid
	}

	role := domain.Role(payload.Role)
	if !role.Valid() {
		return domain.Identity{}, domain.ErrTicketInvalid
	}

	return domain.Identity{UserID: payload.UserID, Role: role}, nil
}
