package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/shopsphere-api/internal/model"
)

type StatsRepository interface {
	Dashboard(ctx context.Context, recent, top int, since time.Time) (*model.DashboardStats, error)
}

type pgStatsRepo struct{ pool *pgxpool.Pool }

func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &pgStatsRepo{pool: pool}
}

func (r *pgStatsRepo) Dashboard(ctx context.Context, recent, top int, since time.Time) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{}

	batch := &pgx.Batch{}
	batch.Queue(`SELECT COUNT(*) FROM users`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&stats.TotalUsers)
	})
	batch.Queue(`SELECT COUNT(*) FROM products`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&stats.TotalProducts)
	})
	batch.Queue(`SELECT COUNT(*) FROM orders`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&stats.TotalOrders)
	})
	batch.Queue(`SELECT COALESCE(SUM(total), 0) FROM orders WHERE is_paid`).QueryRow(func(row pgx.Row) error {
		return row.Scan(&stats.TotalRevenue)
	})
	batch.Queue(`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, recent).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			stats.RecentOrders = append(stats.RecentOrders, *o)
		}
		return rows.Err()
	})
	batch.Queue("SELECT "+strings.Join(productColumns, ", ")+" "+productFrom+` ORDER BY p.sales DESC, p.id LIMIT $1`, top).Query(func(rows pgx.Rows) error {
		products, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Product])
		stats.TopProducts = products
		return err
	})
	batch.Queue(`SELECT order_status, COUNT(*) FROM orders GROUP BY order_status ORDER BY order_status`).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			var sc model.StatusCount
			if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
				return err
			}
			stats.OrdersByStatus = append(stats.OrdersByStatus, sc)
		}
		return rows.Err()
	})
	batch.Queue(
		`SELECT EXTRACT(YEAR FROM created_at)::int AS y, EXTRACT(MONTH FROM created_at)::int AS m, SUM(total), COUNT(*)
		 FROM orders WHERE is_paid AND created_at >= $1 GROUP BY y, m ORDER BY y, m`, since,
	).Query(func(rows pgx.Rows) error {
		for rows.Next() {
			var mr model.MonthlyRevenue
			if err := rows.Scan(&mr.Year, &mr.Month, &mr.Revenue, &mr.Orders); err != nil {
				return err
			}
			stats.RevenueByMonth = append(stats.RevenueByMonth, mr)
		}
		return rows.Err()
	})

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}
