package listing

import (
	"context"
	"sort"
	"strings"

	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/layout"
	pkgerrors "github.com/trolleyhq/trolley-backend/pkg/errors"
)

// ItemStore is the read surface the ordering service needs.
type ItemStore interface {
	ListByOwner(ctx context.Context, owner string) ([]item.Item, error)
}

// LayoutResolver supplies the active store layout.
type LayoutResolver interface {
	Active(ctx context.Context) (layout.Layout, error)
}

// Filter narrows the ordered view. The zero value returns everything.
type Filter struct {
	// Purchased, when set, keeps only items with a matching purchased flag.
	Purchased *bool
}

// ServiceParams groups dependencies for the ordering service.
type ServiceParams struct {
	Items  ItemStore
	Layout LayoutResolver
}

// Service produces the walking-order view of the active list.
type Service interface {
	GetOrderedList(ctx context.Context, owner string, filter Filter) ([]item.Item, error)
}

type service struct {
	items  ItemStore
	layout LayoutResolver
}

// NewService builds the ordering service.
func NewService(params ServiceParams) (Service, error) {
	if params.Items == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item store is required")
	}
	if params.Layout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "layout resolver is required")
	}
	return &service{items: params.Items, layout: params.Layout}, nil
}

// GetOrderedList returns the owner's active items in store walking
// order. An empty owner is the explicit household-wide view. Deferred
// items always land after every regular item, in the order they were
// added. No items is success with an empty slice.
func (s *service) GetOrderedList(ctx context.Context, owner string, filter Filter) ([]item.Item, error) {
	items, err := s.items.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []item.Item{}, nil
	}

	active, err := s.layout.Active(ctx)
	if err != nil {
		return nil, err
	}

	regular := make([]item.Item, 0, len(items))
	held := make([]item.Item, 0)
	for _, it := range items {
		if filter.Purchased != nil && it.Purchased != *filter.Purchased {
			continue
		}
		if it.Deferred {
			held = append(held, it)
		} else {
			regular = append(regular, it)
		}
	}

	sort.SliceStable(regular, func(i, j int) bool {
		pi, pj := active.Position(regular[i].Category), active.Position(regular[j].Category)
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(regular[i].Name) < strings.ToLower(regular[j].Name)
	})
	sort.SliceStable(held, func(i, j int) bool {
		if !held[i].CreatedAt.Equal(held[j].CreatedAt) {
			return held[i].CreatedAt.Before(held[j].CreatedAt)
		}
		return held[i].ID.String() < held[j].ID.String()
	})

	return append(regular, held...), nil
}
