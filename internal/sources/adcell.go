package sources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const adcellName = "adcell"
const adcellBaseURL = "https://www.adcell.de/api/v2"

// Adcell fetches coupon promotions from the Adcell affiliate network.
type Adcell struct {
	cfg  config.AdcellConfig
	deps *Deps
}

func NewAdcell(cfg config.AdcellConfig, deps *Deps) *Adcell {
	return &Adcell{cfg: cfg, deps: deps}
}

func (a *Adcell) Name() string {
	return adcellName
}

type adcellResponse struct {
	Data struct {
		Items []adcellCoupon `json:"items"`
	} `json:"data"`
}

type adcellCoupon struct {
	CouponID     int    `json:"couponId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Discount     string `json:"discount"`
	ProgramName  string `json:"programName"`
	ProgramImage string `json:"programImageUrl"`
	TrackingLink string `json:"trackingLink"`
	ValidFrom    string `json:"validFrom"`
}

func (a *Adcell) FetchOffers(ctx context.Context, params OfferParams) ([]models.ExternalOffer, bool, error) {

	if a.cfg.Token == "" || a.cfg.AffiliateID == "" {
		log.Warn("ADCELL_TOKEN / ADCELL_AFFILIATE_ID not set, skipping adcell")
		return nil, false, nil
	}

	values := url.Values{}
	values.Set("token", a.cfg.Token)
	values.Set("affiliateId", a.cfg.AffiliateID)
	values.Set("rows", strconv.Itoa(params.Limit))
	values.Set("page", strconv.Itoa(params.Page))
	if params.Query != "" {
		values.Set("search", params.Query)
	}
	requestURL := adcellBaseURL + "/promotion/coupons?" + values.Encode()

	key := cache.Key(adcellName, map[string]string{"url": requestURL})

	offers, fromCache, err := cache.Wrap(ctx, a.deps.Cache, key, offersCacheTTL, []string{"products", adcellName},
		func(ctx context.Context) ([]models.ExternalOffer, error) {
			var resp adcellResponse
			err := a.deps.getJSON(ctx, adcellName, "coupons", func(ctx context.Context) (*http.Request, error) {
				return http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
			}, &resp)
			if err != nil {
				return nil, err
			}
			return a.normalize(resp.Data.Items), nil
		})

	if err != nil {
		return []models.ExternalOffer{}, false, err
	}
	return offers, fromCache, nil
}

func (a *Adcell) normalize(coupons []adcellCoupon) []models.ExternalOffer {
	offers := make([]models.ExternalOffer, 0, len(coupons))
	for _, c := range coupons {
		if c.CouponID == 0 || c.Title == "" || c.ProgramName == "" {
			continue
		}

		offer := models.NewExternalOffer(adcellName, strconv.Itoa(c.CouponID))
		offer.Title = c.Title
		offer.Merchant = c.ProgramName
		offer.Category = "coupon"
		offer.ShortDescription = truncate(c.Description, 500)
		offer.ImageURL = c.ProgramImage
		offer.TrackingURL = c.TrackingLink
		offer.PublishedAt = parseTime("2006-01-02 15:04:05", c.ValidFrom)
		if pct := parsePercentage(c.Discount); pct != nil {
			offer.DiscountPercentage = pct
		}

		offers = append(offers, offer)
	}
	return offers
}

// parsePercentage extracts a number out of discount strings like "20%" or
// "20 Prozent". Returns nil when the string has no leading number.
func parsePercentage(s string) *float64 {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == ',') {
		end++
	}
	if end == 0 {
		return nil
	}

	normalized := make([]byte, end)
	for i := 0; i < end; i++ {
		if s[i] == ',' {
			normalized[i] = '.'
		} else {
			normalized[i] = s[i]
		}
	}

	value, err := strconv.ParseFloat(string(normalized), 64)
	if err != nil || value <= 0 || value > 100 {
		return nil
	}
	return &value
}
