package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.ProductsStorage = (*ProductsRepository)(nil)
	_ port.ProductsSource  = (*ProductsRepository)(nil)
)

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// StoreProducts upserts products. A product keeps the featured position it
// got when it was first stored.
func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) (storeErr error) {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO products (
			product_id, name, name_localized, category,
			price, original_price, is_new, on_sale, in_stock,
			description, description_localized, color_images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (product_id) DO UPDATE SET
			name = EXCLUDED.name,
			name_localized = EXCLUDED.name_localized,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			is_new = EXCLUDED.is_new,
			on_sale = EXCLUDED.on_sale,
			in_stock = EXCLUDED.in_stock,
			description = EXCLUDED.description,
			description_localized = EXCLUDED.description_localized,
			color_images = EXCLUDED.color_images;
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		colorImages, err := json.Marshal(v.ColorImages)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal color images: %w", op, err)
		}
		_, err = stmt.ExecContext(ctx,
			v.ID, v.Name, v.NameLocalized, v.Category,
			v.Price, v.OriginalPrice, v.IsNew, v.OnSale, v.InStock,
			v.Description, v.DescriptionLocalized, string(colorImages),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	log.Debug("products stored", "nProducts", len(vs))
	return nil
}

// ReadProducts returns the whole catalog in featured order.
func (r ProductsRepository) ReadProducts(
	ctx context.Context,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ReadProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT
			product_id, name, name_localized, category,
			price, original_price, is_new, on_sale, in_stock,
			description, description_localized, color_images
		FROM products
		ORDER BY position ASC;`

	rows, err := r.sqldb.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	var vs []domain.Product
	for rows.Next() {
		v, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return vs, nil
}

func (r ProductsRepository) scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		v             domain.Product
		originalPrice sql.NullFloat64
		inStock       sql.NullBool
		colorImages   []byte
	)

	err := rows.Scan(
		&v.ID, &v.Name, &v.NameLocalized, &v.Category,
		&v.Price, &originalPrice, &v.IsNew, &v.OnSale, &inStock,
		&v.Description, &v.DescriptionLocalized, &colorImages,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if originalPrice.Valid {
		v.OriginalPrice = &originalPrice.Float64
	}
	if inStock.Valid {
		v.InStock = &inStock.Bool
	}
	if len(colorImages) != 0 {
		if err := json.Unmarshal(colorImages, &v.ColorImages); err != nil {
			return domain.Product{}, err
		}
	}
	return v, nil
}
