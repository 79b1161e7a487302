package sources

import (
	"context"

	"github.com/avolkov/offerhub/internal/domain/models"
)

// JobParams is the typed query every job adapter translates into its
// provider-specific request.
type JobParams struct {
	Query    string   `validate:"required"`
	Location string   `validate:"max=128"`
	Country  string   `validate:"omitempty,len=2"`
	Page     int      `validate:"gte=1"`
	Limit    int      `validate:"gte=1,lte=100"`
	Sources  []string `validate:"-"`
}

type OfferParams struct {
	Query    string   `validate:"max=256"`
	Category string   `validate:"max=128"`
	Page     int      `validate:"gte=1"`
	Limit    int      `validate:"gte=1,lte=100"`
	Sources  []string `validate:"-"`
}

// JobSource is one provider of external job listings. FetchJobs returns the
// normalized items, whether the call was served from cache, and an error
// only for systemic failures (non-2xx after retries, unparseable body).
// Malformed single items are skipped inside the adapter.
type JobSource interface {
	Name() string
	FetchJobs(ctx context.Context, params JobParams) ([]models.ExternalJob, bool, error)
}

type OfferSource interface {
	Name() string
	FetchOffers(ctx context.Context, params OfferParams) ([]models.ExternalOffer, bool, error)
}
