package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/grocer-kart/internal/domain/validation"
)

const maxEarningsRange = 366 * 24 * time.Hour

// ListOrders returns the orders matching f with their items, newest first.
// A mobile that does not normalize to ten digits is rejected so it can
// never widen into an unfiltered listing.
func (s *Service) ListOrders(ctx context.Context, f Filter) ([]View, error) {
	if f.Mobile != "" {
		m, ok := validation.Mobile(f.Mobile)
		if !ok {
			return nil, validation.New("mobile", "must contain 10 digits")
		}
		f.Mobile = m
	}
	headers, err := s.orders.Headers(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list order headers")
	}
	if len(headers) == 0 {
		return []View{}, nil
	}

	ids := make([]string, len(headers))
	for i := range headers {
		ids[i] = headers[i].ID
	}
	items, err := s.orders.Items(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	return Assemble(headers, items), nil
}

// Order returns a single order view.
func (s *Service) Order(ctx context.Context, id string) (*View, error) {
	h, err := s.orders.Header(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	items, err := s.orders.Items(ctx, []string{id})
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}
	v := Assemble([]View{*h}, items)[0]
	return &v, nil
}

// Tabs groups every order by status for the admin console.
func (s *Service) Tabs(ctx context.Context) (*Tabs, error) {
	views, err := s.ListOrders(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return GroupByStatus(views), nil
}

// UpdateStatus overwrites the status of an order.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return validation.New("orderStatus", "must be Pending, Delivered or Cancelled")
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return errors.Wrapf(err, "update order %s status", id)
	}
	return nil
}

// Earnings returns per-day delivered revenue for the inclusive date range.
func (s *Service) Earnings(ctx context.Context, from, to time.Time) ([]DailyEarning, error) {
	switch {
	case from.IsZero():
		return nil, validation.Missing("from")
	case to.IsZero():
		return nil, validation.Missing("to")
	case to.Before(from):
		return nil, validation.New("to", "must not be before from")
	case to.Sub(from) > maxEarningsRange:
		return nil, validation.New("to", "range must not exceed one year")
	}
	out, err := s.orders.Earnings(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate earnings")
	}
	return out, nil
}

// Assemble attaches items to their order headers, keeping header order and
// the item order within each order. Every view gets a non-nil Items slice.
func Assemble(headers []View, items []ItemView) []View {
	byOrder := make(map[string][]ItemView, len(headers))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]View, len(headers))
	for i, h := range headers {
		h.Items = byOrder[h.ID]
		if h.Items == nil {
			h.Items = []ItemView{}
		}
		out[i] = h
	}
	return out
}

// GroupByStatus splits views into triage tabs, preserving their order.
func GroupByStatus(views []View) *Tabs {
	t := &Tabs{
		Pending:   []View{},
		Delivered: []View{},
		Cancelled: []View{},
	}
	for _, v := range views {
		switch v.Status {
		case StatusPending:
			t.Pending = append(t.Pending, v)
		case StatusDelivered:
			t.Delivered = append(t.Delivered, v)
		case StatusCancelled:
			t.Cancelled = append(t.Cancelled, v)
		}
	}
	return t
}
