package sources

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const awinName = "awin"
const awinBaseURL = "https://api.awin.com"

// Awin fetches publisher promotions from the AWIN affiliate network.
type Awin struct {
	cfg  config.AwinConfig
	deps *Deps
}

func NewAwin(cfg config.AwinConfig, deps *Deps) *Awin {
	return &Awin{cfg: cfg, deps: deps}
}

func (a *Awin) Name() string {
	return awinName
}

type awinResponse struct {
	Data []awinPromotion `json:"data"`
}

type awinPromotion struct {
	PromotionID int    `json:"promotionId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	URLTracking string `json:"urlTracking"`
	StartDate   string `json:"startDate"`
	Advertiser  struct {
		Name string `json:"name"`
	} `json:"advertiser"`
	Voucher struct {
		Code string `json:"code"`
	} `json:"voucher"`
	Discount struct {
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	} `json:"discount"`
}

func (a *Awin) FetchOffers(ctx context.Context, params OfferParams) ([]models.ExternalOffer, bool, error) {

	if a.cfg.APIToken == "" || a.cfg.PublisherID == "" {
		log.Warn("AWIN_API_TOKEN / AWIN_PUBLISHER_ID not set, skipping awin")
		return nil, false, nil
	}

	requestURL := awinBaseURL + "/publishers/" + a.cfg.PublisherID + "/promotions"
	key := cache.Key(awinName, map[string]string{
		"url":   requestURL,
		"page":  strconv.Itoa(params.Page),
		"limit": strconv.Itoa(params.Limit),
	})

	offers, fromCache, err := cache.Wrap(ctx, a.deps.Cache, key, offersCacheTTL, []string{"products", awinName},
		func(ctx context.Context) ([]models.ExternalOffer, error) {
			var resp awinResponse
			err := a.deps.getJSON(ctx, awinName, "promotions", func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("Authorization", "Bearer "+a.cfg.APIToken)
				req.Header.Set("Accept", "application/json")
				return req, nil
			}, &resp)
			if err != nil {
				return nil, err
			}
			return a.normalize(resp.Data), nil
		})

	if err != nil {
		return []models.ExternalOffer{}, false, err
	}
	return offers, fromCache, nil
}

func (a *Awin) normalize(promotions []awinPromotion) []models.ExternalOffer {
	offers := make([]models.ExternalOffer, 0, len(promotions))
	for _, p := range promotions {
		if p.PromotionID == 0 || p.Title == "" || p.Advertiser.Name == "" {
			continue
		}

		offer := models.NewExternalOffer(awinName, strconv.Itoa(p.PromotionID))
		offer.Title = p.Title
		offer.Merchant = p.Advertiser.Name
		offer.Category = p.Type
		offer.ShortDescription = truncate(p.Description, 500)
		offer.TrackingURL = p.URLTracking
		offer.PublishedAt = parseTime(time.RFC3339, p.StartDate)
		if p.Discount.Percentage > 0 {
			offer.DiscountPercentage = &p.Discount.Percentage
		}
		if p.Discount.Amount > 0 {
			offer.Price = p.Discount.Amount
		}

		offers = append(offers, offer)
	}
	return offers
}
