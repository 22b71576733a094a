package layout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
	pkgredis "github.com/trolleyhq/trolley-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	LayoutKey() string
}

// ServiceParams groups dependencies for the layout service.
type ServiceParams struct {
	KV kvStore
}

// Service resolves and maintains the active store layout.
type Service interface {
	Active(ctx context.Context) (Layout, error)
	Save(ctx context.Context, layout Layout) error
}

type service struct {
	kv kvStore
}

// NewService builds a layout service backed by the key-value store.
func NewService(params ServiceParams) (Service, error) {
	if params.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kv store is required")
	}
	return &service{kv: params.KV}, nil
}

// Active returns the stored override, or the built-in default when no
// override has been saved.
func (s *service) Active(ctx context.Context) (Layout, error) {
	raw, err := s.kv.Get(ctx, s.kv.LayoutKey())
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return Default(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load layout")
	}

	var stored Layout
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		// A corrupt override must not take the whole read path down.
		return Default(), nil
	}
	if len(stored) == 0 {
		return Default(), nil
	}
	return stored, nil
}

// Save replaces the active layout override.
func (s *service) Save(ctx context.Context, override Layout) error {
	if len(override) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "layout must contain at least one category")
	}
	for category, position := range override {
		if category == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "layout category names must not be empty")
		}
		if position <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "layout positions must be positive").
				WithDetails(map[string]any{"category": category, "position": position})
		}
	}

	encoded, err := json.Marshal(override)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode layout")
	}
	if err := s.kv.Set(ctx, s.kv.LayoutKey(), string(encoded), 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store layout")
	}
	return nil
}
