package translation

import (
	"context"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/avolkov/offerhub/internal/config"
	"github.com/avolkov/offerhub/internal/entities"
	"github.com/avolkov/offerhub/internal/events"
	"github.com/avolkov/offerhub/internal/logger"
	"github.com/avolkov/offerhub/internal/repositories"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const sourceLanguage = "en"
const translateTimeout = 5 * time.Minute

type translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (Result, error)
}

// Service translates newly imported titles into the configured target
// languages. After maxConsecutiveErrors failures in a row the breaker opens
// and further work is skipped until a translation succeeds again.
type Service struct {
	client       translator
	translations *repositories.Translations
	languages    []string

	maxConsecutiveErrors int
	mu                   sync.Mutex
	consecutiveErrors    int
}

func NewService(client translator, translations *repositories.Translations, cfg config.TranslationConfig) *Service {
	return &Service{
		client:               client,
		translations:         translations,
		languages:            cfg.TargetLanguages,
		maxConsecutiveErrors: cfg.MaxConsecutiveErrors,
	}
}

func (s *Service) SubscribeToEvents(bus EventBus.Bus) error {
	return bus.SubscribeAsync(events.ImportCompletedTopic, s.onImportCompleted, false)
}

func (s *Service) onImportCompleted(event events.ImportCompleted) {
	ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
	defer cancel()

	if err := s.TranslateItems(ctx, event.Items); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTranslationApi).
			Errorf("translation after import run %s stopped: %v", event.RunID, err)
	}
}

// TranslateItems translates every item into every configured language,
// skipping pairs that are already stored. Returns early when the breaker
// opens or the daily quota runs out.
func (s *Service) TranslateItems(ctx context.Context, items []events.ImportedItem) error {

	for _, item := range items {
		for _, language := range s.languages {

			if s.breakerOpen() {
				return errors.Errorf("circuit breaker open after %d consecutive errors", s.maxConsecutiveErrors)
			}

			done, err := s.translateOne(ctx, item, language)
			if err != nil {
				s.recordFailure()
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeTranslationApi).
					Errorf("failed to translate %s %s to %s: %v", item.ContentType, item.ContentID, language, err)
				continue
			}
			if !done {
				log.Warn("daily translation quota exceeded, deferring remaining items")
				return nil
			}
			s.recordSuccess()
		}
	}
	return nil
}

func (s *Service) translateOne(ctx context.Context, item events.ImportedItem, language string) (bool, error) {

	existing, err := s.translations.Find(ctx, item.ContentID, language, item.ContentType)
	if err != nil {
		return false, errors.Wrap(err, "failed to check existing translation")
	}
	if existing != nil {
		return true, nil
	}

	result, err := s.client.Translate(ctx, item.Title, sourceLanguage, language)
	if err != nil {
		return false, err
	}
	if result.RateLimited {
		return false, nil
	}

	err = s.translations.Save(ctx, &entities.Translation{
		ContentID:   item.ContentID,
		ContentType: item.ContentType,
		Language:    language,
		Text:        result.Translation,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to save translation")
	}
	return true, nil
}

func (s *Service) breakerOpen() bool {
	if s.maxConsecutiveErrors <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consecutiveErrors >= s.maxConsecutiveErrors
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors++
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveErrors = 0
}
