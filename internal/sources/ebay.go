package sources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avolkov/offerhub/internal/cache"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/domain/models"
	log "github.com/sirupsen/logrus"
)

const ebayName = "ebay"
const (
	ebayTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	ebayDealsURL = "https://api.ebay.com/buy/deal/v1/deal_item"
	ebayScope    = "https://api.ebay.com/oauth/api_scope/buy.deal"
)

// Ebay fetches deal items from the eBay Deal API. Requests carry an OAuth
// bearer token obtained via client-credentials exchange; the token is cached
// at 90% of its reported lifetime so it is always refreshed before expiry.
type Ebay struct {
	cfg  config.EbayConfig
	deps *Deps
}

func NewEbay(cfg config.EbayConfig, deps *Deps) *Ebay {
	if cfg.Marketplace == "" {
		cfg.Marketplace = "EBAY_DE"
	}
	return &Ebay{cfg: cfg, deps: deps}
}

func (e *Ebay) Name() string {
	return ebayName
}

type ebayTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type ebayDealsResponse struct {
	DealItems []ebayDealItem `json:"dealItems"`
}

type ebayDealItem struct {
	ItemID             string `json:"itemId"`
	Title              string `json:"title"`
	ItemWebURL         string `json:"itemAffiliateWebUrl"`
	DealStartDate      string `json:"dealStartDate"`
	CategoryName       string `json:"categoryName"`
	DiscountPercentage string `json:"discountPercentage"`
	Price              struct {
		Value string `json:"value"`
	} `json:"price"`
	OriginalPrice struct {
		Value string `json:"value"`
	} `json:"originalPrice"`
	Image struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
}

func (e *Ebay) FetchOffers(ctx context.Context, params OfferParams) ([]models.ExternalOffer, bool, error) {

	if e.cfg.ClientID == "" || e.cfg.ClientSecret == "" {
		log.Warn("EBAY_CLIENT_ID / EBAY_CLIENT_SECRET not set, skipping ebay")
		return nil, false, nil
	}

	values := url.Values{}
	values.Set("limit", strconv.Itoa(params.Limit))
	values.Set("offset", strconv.Itoa((params.Page-1)*params.Limit))
	if params.Category != "" {
		values.Set("category_ids", params.Category)
	}
	requestURL := ebayDealsURL + "?" + values.Encode()

	key := cache.Key(ebayName, map[string]string{"url": requestURL, "marketplace": e.cfg.Marketplace})

	offers, fromCache, err := cache.Wrap(ctx, e.deps.Cache, key, offersCacheTTL, []string{"products", ebayName},
		func(ctx context.Context) ([]models.ExternalOffer, error) {
			token, err := e.accessToken(ctx)
			if err != nil {
				return nil, err
			}

			var resp ebayDealsResponse
			err = e.deps.getJSON(ctx, ebayName, "deals", func(ctx context.Context) (*http.Request, error) {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
				if err != nil {
					return nil, err
				}
				req.Header.Set("Authorization", "Bearer "+token)
				req.Header.Set("X-EBAY-C-MARKETPLACE-ID", e.cfg.Marketplace)
				return req, nil
			}, &resp)
			if err != nil {
				return nil, err
			}
			return e.normalize(resp.DealItems), nil
		})

	if err != nil {
		return []models.ExternalOffer{}, false, err
	}
	return offers, fromCache, nil
}

// accessToken exchanges client credentials for a bearer token, cached with
// its own TTL of 90% of the reported lifetime.
func (e *Ebay) accessToken(ctx context.Context) (string, error) {
	key := cache.Key(ebayName, map[string]string{"oauth": e.cfg.ClientID})

	if entry, err := e.deps.Cache.Get(ctx, key); err == nil && entry != nil {
		var token string
		if err = json.Unmarshal(entry.Data, &token); err == nil {
			return token, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", ebayScope)
	basic := base64.StdEncoding.EncodeToString([]byte(e.cfg.ClientID + ":" + e.cfg.ClientSecret))

	var resp ebayTokenResponse
	err := e.deps.getJSON(ctx, ebayName, "token", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ebayTokenURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Basic "+basic)
		return req, nil
	}, &resp)
	if err != nil {
		return "", err
	}

	ttl := time.Duration(float64(resp.ExpiresIn)*0.9) * time.Second
	data, _ := json.Marshal(resp.AccessToken)
	if err = e.deps.Cache.Set(ctx, key, data, ttl, ebayName); err != nil {
		log.Errorf("failed to cache ebay token: %v", err)
	}

	return resp.AccessToken, nil
}

func (e *Ebay) normalize(items []ebayDealItem) []models.ExternalOffer {
	offers := make([]models.ExternalOffer, 0, len(items))
	for _, item := range items {
		if item.ItemID == "" || item.Title == "" {
			continue
		}

		offer := models.NewExternalOffer(ebayName, item.ItemID)
		offer.Title = item.Title
		offer.Merchant = "eBay"
		offer.Category = item.CategoryName
		offer.ImageURL = item.Image.ImageURL
		offer.TrackingURL = item.ItemWebURL
		offer.PublishedAt = parseTime(time.RFC3339, item.DealStartDate)

		if price, err := strconv.ParseFloat(item.Price.Value, 64); err == nil {
			offer.Price = price
		}
		if original, err := strconv.ParseFloat(item.OriginalPrice.Value, 64); err == nil && original > 0 {
			offer.OriginalPrice = &original
		}
		if pct, err := strconv.ParseFloat(item.DiscountPercentage, 64); err == nil && pct > 0 {
			offer.DiscountPercentage = &pct
		}

		offers = append(offers, offer)
	}
	return offers
}
