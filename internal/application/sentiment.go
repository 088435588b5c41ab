package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nexshop/marketplace/internal/domain/entity"
	"github.com/nexshop/marketplace/internal/gateway"
	"github.com/nexshop/marketplace/internal/store"
)

// SentimentInput is one scored chat exchange.
type SentimentInput struct {
	UserID      string                `json:"user_id"`
	UserName    string                `json:"user_name"`
	Score       entity.SentimentScore `json:"score"`
	Summary     string                `json:"summary"`
	RawMessages []string              `json:"raw_messages"`
}

// RecordSentiment appends a chat sentiment record. Used by the support
// agent after each exchange so the admin console can trend customer
// mood over time.
func (s *Service) RecordSentiment(ctx context.Context, in SentimentInput) (*entity.ChatSentiment, error) {
	if s.Remote == nil {
		return s.recordSentimentLocal(ctx, in)
	}
	out, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.ChatSentiment, error) {
			var rec entity.ChatSentiment
			if err := s.Remote.PostJSON(ctx, "/api/sentiments", in, &rec); err != nil {
				return nil, err
			}
			return &rec, nil
		},
		func(ctx context.Context) (*entity.ChatSentiment, error) {
			return s.recordSentimentLocal(ctx, in)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrNotFound)
	}
	return out, nil
}

func (s *Service) recordSentimentLocal(ctx context.Context, in SentimentInput) (*entity.ChatSentiment, error) {
	score := in.Score
	if score != entity.SentimentPositive && score != entity.SentimentNegative {
		score = entity.SentimentNeutral
	}
	rec := entity.ChatSentiment{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		UserName:    in.UserName,
		Timestamp:   time.Now().UTC(),
		Score:       score,
		Summary:     in.Summary,
		RawMessages: len(in.RawMessages),
	}
	records := store.GetTable[entity.ChatSentiment](ctx, s.Store, store.TableSentiments)
	if err := store.SetTable(ctx, s.Store, store.TableSentiments, append(records, rec)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetSentiments returns all recorded chat sentiments, newest first.
func (s *Service) GetSentiments(ctx context.Context) ([]entity.ChatSentiment, error) {
	if s.Remote == nil {
		return s.sentimentsLocal(ctx), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.ChatSentiment, error) {
			var out []entity.ChatSentiment
			if err := s.Remote.GetJSON(ctx, "/api/sentiments", &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.ChatSentiment, error) {
			return s.sentimentsLocal(ctx), nil
		},
	)
}

func (s *Service) sentimentsLocal(ctx context.Context) []entity.ChatSentiment {
	records := store.GetTable[entity.ChatSentiment](ctx, s.Store, store.TableSentiments)
	out := make([]entity.ChatSentiment, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}
