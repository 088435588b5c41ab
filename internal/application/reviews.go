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

// ReviewInput is a new product review.
type ReviewInput struct {
	ProductID string `json:"product_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// SubmitReview appends a review. Ratings outside 1..5 are rejected;
// reviews are append-only, so a second review for the same product is
// a new row, never an edit of the first.
func (s *Service) SubmitReview(ctx context.Context, in ReviewInput) (*entity.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if s.Remote == nil {
		return s.submitReviewLocal(ctx, in)
	}
	r, err := gateway.Fallback(ctx,
		func(ctx context.Context) (*entity.Review, error) {
			var out entity.Review
			if err := s.Remote.PostJSON(ctx, "/api/reviews", in, &out); err != nil {
				return nil, err
			}
			s.mirrorReview(ctx, out)
			return &out, nil
		},
		func(ctx context.Context) (*entity.Review, error) {
			return s.submitReviewLocal(ctx, in)
		},
	)
	if err != nil {
		return nil, rejected(err, ErrNotFound)
	}
	return r, nil
}

func (s *Service) submitReviewLocal(ctx context.Context, in ReviewInput) (*entity.Review, error) {
	if _, ok := s.FindProduct(ctx, in.ProductID); !ok {
		return nil, ErrNotFound
	}
	review := entity.Review{
		ID:        uuid.NewString(),
		ProductID: in.ProductID,
		UserID:    in.UserID,
		UserName:  in.UserName,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Date:      time.Now().UTC(),
	}
	reviews := store.GetTable[entity.Review](ctx, s.Store, store.TableReviews)
	if err := store.SetTable(ctx, s.Store, store.TableReviews, append(reviews, review)); err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviews returns the reviews for one product, newest first.
func (s *Service) GetReviews(ctx context.Context, productID string) ([]entity.Review, error) {
	if s.Remote == nil {
		return s.reviewsLocal(ctx, productID), nil
	}
	return gateway.Fallback(ctx,
		func(ctx context.Context) ([]entity.Review, error) {
			var out []entity.Review
			if err := s.Remote.GetJSON(ctx, "/api/reviews/"+productID, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		func(ctx context.Context) ([]entity.Review, error) {
			return s.reviewsLocal(ctx, productID), nil
		},
	)
}

func (s *Service) reviewsLocal(ctx context.Context, productID string) []entity.Review {
	reviews := store.GetTable[entity.Review](ctx, s.Store, store.TableReviews)
	out := make([]entity.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *Service) mirrorReview(ctx context.Context, r entity.Review) {
	reviews := store.GetTable[entity.Review](ctx, s.Store, store.TableReviews)
	for i := range reviews {
		if reviews[i].ID == r.ID {
			reviews[i] = r
			if err := store.SetTable(ctx, s.Store, store.TableReviews, reviews); err != nil {
				s.warn(err, "mirror review failed", nil)
			}
			return
		}
	}
	if err := store.SetTable(ctx, s.Store, store.TableReviews, append(reviews, r)); err != nil {
		s.warn(err, "mirror review failed", nil)
	}
}
