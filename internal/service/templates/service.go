package templates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/butchershop/internal/domain/models"
	"github.com/mamadbah2/butchershop/internal/repository/store"
)

var (
	ErrNotFound      = errors.New("template not found")
	ErrInvalidFields = errors.New("template name, subject and body are required")
)

// Variables fill {{placeholder}} tokens in a template.
type Variables map[string]string

// Placeholders lists the tokens staff may use in templates.
var Placeholders = []string{
	"customerName", "firstName", "orderId", "collectionDate",
	"collectionTime", "items", "shopName", "notes",
}

// Service owns the email template collection.
type Service struct {
	mu        sync.RWMutex
	kv        store.KV
	templates []models.EmailTemplate
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewService(kv store.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		kv:     kv,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load reads stored templates, seeding the defaults when none exist yet.
func (s *Service) Load(ctx context.Context) error {
	var loaded []models.EmailTemplate
	found, err := store.LoadJSON(ctx, s.kv, store.KeyEmailTemplates, &loaded)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if found {
		s.templates = loaded
		return nil
	}

	s.templates = Defaults(s.now())
	s.logger.Info("seeding default email templates", zap.Int("count", len(s.templates)))
	if err := store.SaveJSON(ctx, s.kv, store.KeyEmailTemplates, s.templates); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	return nil
}

func (s *Service) List() []models.EmailTemplate {
	s.mu.RLock()
	out := append([]models.EmailTemplate{}, s.templates...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Service) Get(id string) (models.EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return models.EmailTemplate{}, ErrNotFound
}

// Save creates the template when its id is empty or unknown, otherwise replaces it.
func (s *Service) Save(ctx context.Context, t models.EmailTemplate) (models.EmailTemplate, error) {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Body) == "" {
		return models.EmailTemplate{}, ErrInvalidFields
	}
	if t.Type == "" {
		t.Type = "custom"
	}
	t.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	if t.ID != "" {
		for i := range s.templates {
			if s.templates[i].ID == t.ID {
				s.templates[i] = t
				replaced = true
				break
			}
		}
	}
	if !replaced {
		if t.ID == "" {
			t.ID = s.newID()
		}
		s.templates = append(s.templates, t)
	}

	if err := store.SaveJSON(ctx, s.kv, store.KeyEmailTemplates, s.templates); err != nil {
		return models.EmailTemplate{}, fmt.Errorf("save template: %w", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID != id {
			continue
		}
		s.templates = append(s.templates[:i:i], s.templates[i+1:]...)
		if err := store.SaveJSON(ctx, s.kv, store.KeyEmailTemplates, s.templates); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		return nil
	}
	return ErrNotFound
}

// Render fills the template's subject and body. Unknown placeholders are left as written.
func Render(t models.EmailTemplate, vars Variables) (subject, body string) {
	pairs := make([]string, 0, len(vars)*2)
	for _, key := range sortedKeys(vars) {
		pairs = append(pairs, "{{"+key+"}}", vars[key])
	}
	r := strings.NewReplacer(pairs...)
	return r.Replace(t.Subject), r.Replace(t.Body)
}

func sortedKeys(vars Variables) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
