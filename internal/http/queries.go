package http

import (
	"context"

	"golang.org/x/sync/errgroup"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
)

// Cached reads. The returned slices are shared with the cache and must not
// be modified.

func (s *Server) categories(ctx context.Context) ([]core.Category, error) {
	return cache.Fetch(ctx, s.queries, cache.KeyCategories, s.api.ListCategories)
}

func (s *Server) transactions(ctx context.Context) ([]core.Transaction, error) {
	return cache.Fetch(ctx, s.queries, cache.KeyTransactions, s.api.ListTransactions)
}

func (s *Server) dashboard(ctx context.Context) (core.Dashboard, error) {
	return cache.Fetch(ctx, s.queries, cache.KeyDashboard, s.api.GetDashboard)
}

// transactionsWithCategories loads both lists in parallel. The transactions
// table needs the categories to label rows the API sent without a nested
// category, but a category failure alone does not fail the table.
func (s *Server) transactionsWithCategories(ctx context.Context) ([]core.Transaction, []core.Category, error) {
	var (
		g      errgroup.Group
		txs    []core.Transaction
		cats   []core.Category
		txErr  error
		catErr error
	)
	g.Go(func() error {
		txs, txErr = s.transactions(ctx)
		return txErr
	})
	g.Go(func() error {
		cats, catErr = s.categories(ctx)
		return catErr
	})
	_ = g.Wait()

	if catErr != nil {
		log.FromContext(ctx).WarnContext(ctx, "Categories unavailable for transactions table",
			log.FieldError, catErr.Error(),
			log.FieldErrorType, log.ErrorTypeUpstream)
	}
	return txs, cats, txErr
}

// findCategory looks id up in the cached category list.
func (s *Server) findCategory(ctx context.Context, id int64) (*core.Category, error) {
	cats, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].ID != nil && *cats[i].ID == id {
			c := cats[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Server) findTransaction(ctx context.Context, id int64) (*core.Transaction, error) {
	txs, err := s.transactions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].ID != nil && *txs[i].ID == id {
			t := txs[i]
			return &t, nil
		}
	}
	return nil, nil
}
