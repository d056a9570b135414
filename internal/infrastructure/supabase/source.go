// internal/infrastructure/supabase/source.go
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"github.com/your-org/retail-analytics/internal/config"
	"github.com/your-org/retail-analytics/internal/domain/dashboard"
)

const (
	transactionColumns = "id,timestamp,transaction_date,total_amount,store_id,customer_id,store:stores(region,city,barangay)"
	// !inner turns the embed into a join so the store filters drop rows.
	transactionColumnsInner = "id,timestamp,transaction_date,total_amount,store_id,customer_id,store:stores!inner(region,city,barangay)"
	itemColumns             = "transaction_id,product_id,quantity,total_price," +
		"product:products(id,name,category:product_categories(name),brand:brands(name))," +
		"transaction:transactions!inner(timestamp,store_id,store:stores!inner(region))"
)

// Source reads dashboard rows from the Supabase REST API
type Source struct {
	client *supabase.Client
}

// NewSource creates a Supabase client from configuration
func NewSource(cfg config.SupabaseConfig) (*Source, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("failed to create supabase client: url and api key are required")
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	log.Println("✅ Supabase client initialized")
	return &Source{client: client}, nil
}

func (s *Source) Name() string { return "supabase" }

// Transactions returns every transaction in the filter with its store embedded
func (s *Source) Transactions(ctx context.Context, f dashboard.Filter) ([]dashboard.TransactionRow, error) {
	var rows []dashboard.TransactionRow
	q := s.transactionsQuery(f).Order("timestamp", &postgrest.OrderOpts{Ascending: true})
	if err := execute(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	return rows, nil
}

// RecentTransactions returns the newest transactions in the filter
func (s *Source) RecentTransactions(ctx context.Context, f dashboard.Filter, limit int) ([]dashboard.TransactionRow, error) {
	var rows []dashboard.TransactionRow
	q := s.transactionsQuery(f).Order("timestamp", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}
	if err := execute(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	return rows, nil
}

// Items returns every transaction line in the filter with its product embedded
func (s *Source) Items(ctx context.Context, f dashboard.Filter) ([]dashboard.ItemRow, error) {
	q := s.client.From("transaction_items").Select(itemColumns, "", false).
		Or(timeRange(f), "transaction")
	if f.Region != "" {
		q = q.Eq("transaction.store.region", f.Region)
	}
	if f.StoreID != "" {
		q = q.Eq("transaction.store_id", f.StoreID)
	}

	var rows []dashboard.ItemRow
	if err := execute(ctx, q, &rows); err != nil {
		return nil, fmt.Errorf("failed to query transaction items: %w", err)
	}
	return rows, nil
}

func (s *Source) transactionsQuery(f dashboard.Filter) *postgrest.FilterBuilder {
	columns := transactionColumns
	if f.Region != "" {
		columns = transactionColumnsInner
	}

	q := s.client.From("transactions").Select(columns, "", false).
		Or(timeRange(f), "")
	if f.Region != "" {
		q = q.Eq("store.region", f.Region)
	}
	if f.StoreID != "" {
		q = q.Eq("store_id", f.StoreID)
	}
	return q
}

type result struct {
	data []byte
	err  error
}

// execute runs the request and decodes the JSON body into dest. The REST
// client has no context support, so a cancelled ctx abandons the request.
func execute(ctx context.Context, q *postgrest.FilterBuilder, dest interface{}) error {
	done := make(chan result, 1)
	go func() {
		data, _, err := q.Execute()
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		if err := json.Unmarshal(res.data, dest); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

// timeRange expresses [From, To) as a single and() group. Filters are keyed
// by column, so a separate gte and lt on timestamp would collide.
func timeRange(f dashboard.Filter) string {
	return fmt.Sprintf("and(timestamp.gte.%s,timestamp.lt.%s)", formatTime(f.From), formatTime(f.To))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
