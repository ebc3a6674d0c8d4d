package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/media"
)

const (
	listCategoriesSQL = `SELECT id, name, image, image_mime FROM categories ORDER BY name`

	createCategorySQL = `INSERT INTO categories (name, image, image_mime)
		VALUES ($1, $2, $3) RETURNING id`

	updateCategorySQL = `UPDATE categories
		SET name = $2,
		    image = COALESCE($3::bytea, image),
		    image_mime = CASE WHEN $3::bytea IS NULL THEN image_mime ELSE $4 END
		WHERE id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`

	productColumns = `p.id, p.name, p.description, p.category_id, c.name, p.status,
		i.data, COALESCE(i.mime, '')`

	productFromSQL = ` FROM products p
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN product_images i ON i.product_id = p.id`

	listProductsSQL = `SELECT ` + productColumns + productFromSQL + `
		WHERE ($1::bigint = 0 OR p.category_id = $1)
		  AND ($2::text = '' OR p.name ILIKE '%' || $2 || '%')
		  AND ($3::boolean OR p.status = 'enabled')
		ORDER BY p.name, p.id`

	getProductSQL = `SELECT ` + productColumns + productFromSQL + ` WHERE p.id = $1`

	listVariantsSQL = `SELECT id, product_id, quantity_value, price, mrp
		FROM variants WHERE product_id = ANY($1)
		ORDER BY product_id, price, id`

	getVariantSQL = `SELECT v.id, v.product_id, v.quantity_value, v.price, v.mrp
		FROM variants v JOIN products p ON p.id = v.product_id
		WHERE v.id = $1 AND v.product_id = $2 AND p.status = 'enabled'`

	createProductSQL = `INSERT INTO products (name, description, category_id, status)
		VALUES ($1, $2, $3, $4) RETURNING id`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, category_id = $4, status = $5
		WHERE id = $1`

	createVariantSQL = `INSERT INTO variants (product_id, quantity_value, price, mrp)
		VALUES ($1, $2, $3, $4) RETURNING id`

	updateVariantSQL = `UPDATE variants SET quantity_value = $3, price = $4, mrp = $5
		WHERE id = $1 AND product_id = $2`

	deleteStaleVariantsSQL = `DELETE FROM variants WHERE product_id = $1 AND NOT (id = ANY($2))`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	setProductStatusSQL = `UPDATE products SET status = $2 WHERE id = $1`

	upsertImageSQL = `INSERT INTO product_images (product_id, data, mime) VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET data = EXCLUDED.data, mime = EXCLUDED.mime`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListCategories returns every category ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var (
			c    catalog.Category
			data []byte
			mime string
		)
		err := row.Scan(&c.ID, &c.Name, &data, &mime)
		c.Image = imageOf(data, mime)
		return c, err
	})
}

// CreateCategory inserts c and fills its ID.
func (r *CatalogRepository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	data, mime := imageColumns(c.Image)
	if err := r.pool.QueryRow(ctx, createCategorySQL, c.Name, data, mime).Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("creating category %q: %w", c.Name, err)
	}
	return nil
}

// UpdateCategory renames c and replaces its image when one is given.
func (r *CatalogRepository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	data, mime := imageColumns(c.Image)
	tag, err := r.pool.Exec(ctx, updateCategorySQL, c.ID, c.Name, data, mime)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrDuplicateName
		}
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// DeleteCategory removes a category no product references.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return catalog.ErrInUse
		}
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

// ListProducts returns the products matching f with their variants.
func (r *CatalogRepository) ListProducts(ctx context.Context, f catalog.Filter) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL,
		f.CategoryID, likeEscaper.Replace(f.Search), f.IncludeDisabled,
	)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product with its variants.
func (r *CatalogRepository) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	products := []catalog.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetVariant returns a variant of an enabled product.
func (r *CatalogRepository) GetVariant(ctx context.Context, productID, variantID int64) (*catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantSQL, variantID, productID)
	if err != nil {
		return nil, fmt.Errorf("getting variant %d: %w", variantID, err)
	}
	v, err := pgx.CollectExactlyOneRow(rows, scanVariant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting variant %d: %w", variantID, err)
	}
	return &v, nil
}

func (r *CatalogRepository) attachVariants(ctx context.Context, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	rows, err := r.pool.Query(ctx, listVariantsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing variants: %w", err)
	}
	variants, err := pgx.CollectRows(rows, scanVariant)
	if err != nil {
		return fmt.Errorf("listing variants: %w", err)
	}

	byProduct := make(map[int64][]catalog.Variant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
	}
	return nil
}

// CreateProduct inserts p and its variants in one transaction.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, createProductSQL,
			p.Name, p.Description, p.CategoryID, string(p.Status),
		).Scan(&p.ID)
		if err != nil {
			return productWriteError(err, p)
		}
		for i := range p.Variants {
			if err := insertVariant(ctx, tx, p.ID, &p.Variants[i]); err != nil {
				return err
			}
		}
		return upsertImage(ctx, tx, p)
	})
}

// UpdateProduct updates p, updates variants that carry an id, inserts the
// rest and deletes the variants p no longer lists, in one transaction.
func (r *CatalogRepository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateProductSQL,
			p.ID, p.Name, p.Description, p.CategoryID, string(p.Status),
		)
		if err != nil {
			return productWriteError(err, p)
		}
		if tag.RowsAffected() == 0 {
			return catalog.ErrProductNotFound
		}

		keep := make([]int64, 0, len(p.Variants))
		for i := range p.Variants {
			v := &p.Variants[i]
			if v.ID == 0 {
				continue
			}
			tag, err := tx.Exec(ctx, updateVariantSQL, v.ID, p.ID, v.QuantityValue, v.Price, v.MRP)
			if err != nil {
				return fmt.Errorf("updating variant %d: %w", v.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return catalog.ErrVariantNotFound
			}
			v.ProductID = p.ID
			keep = append(keep, v.ID)
		}

		if _, err := tx.Exec(ctx, deleteStaleVariantsSQL, p.ID, keep); err != nil {
			if isForeignKeyViolation(err) {
				return catalog.ErrInUse
			}
			return fmt.Errorf("deleting variants of product %d: %w", p.ID, err)
		}

		for i := range p.Variants {
			if p.Variants[i].ID != 0 {
				continue
			}
			if err := insertVariant(ctx, tx, p.ID, &p.Variants[i]); err != nil {
				return err
			}
		}
		return upsertImage(ctx, tx, p)
	})
}

// upsertImage stores the image carried by p. A product without one keeps
// its current image.
func upsertImage(ctx context.Context, tx pgx.Tx, p *catalog.Product) error {
	if p.Image == nil {
		return nil
	}
	if _, err := tx.Exec(ctx, upsertImageSQL, p.ID, p.Image.Data, p.Image.MIME); err != nil {
		return fmt.Errorf("storing image of product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product. Products referenced by orders stay.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return catalog.ErrInUse
		}
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// SetProductStatus enables or disables a product.
func (r *CatalogRepository) SetProductStatus(ctx context.Context, id int64, s catalog.Status) error {
	tag, err := r.pool.Exec(ctx, setProductStatusSQL, id, string(s))
	if err != nil {
		return fmt.Errorf("setting product %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

// UpsertImage stores img as the only image of the product.
func (r *CatalogRepository) UpsertImage(ctx context.Context, productID int64, img media.Image) error {
	if _, err := r.pool.Exec(ctx, upsertImageSQL, productID, img.Data, img.MIME); err != nil {
		if isForeignKeyViolation(err) {
			return catalog.ErrProductNotFound
		}
		return fmt.Errorf("upserting image of product %d: %w", productID, err)
	}
	return nil
}

func insertVariant(ctx context.Context, tx pgx.Tx, productID int64, v *catalog.Variant) error {
	err := tx.QueryRow(ctx, createVariantSQL, productID, v.QuantityValue, v.Price, v.MRP).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("creating variant %q: %w", v.QuantityValue, err)
	}
	v.ProductID = productID
	return nil
}

func productWriteError(err error, p *catalog.Product) error {
	switch {
	case isUniqueViolation(err):
		return catalog.ErrDuplicateName
	case isForeignKeyViolation(err):
		return catalog.ErrCategoryNotFound
	default:
		return fmt.Errorf("writing product %q: %w", p.Name, err)
	}
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p      catalog.Product
		status string
		data   []byte
		mime   string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.CategoryName, &status, &data, &mime)
	p.Status = catalog.Status(status)
	p.Image = imageOf(data, mime)
	return p, err
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var v catalog.Variant
	err := row.Scan(&v.ID, &v.ProductID, &v.QuantityValue, &v.Price, &v.MRP)
	return v, err
}

func imageOf(data []byte, mime string) *media.Image {
	if len(data) == 0 {
		return nil
	}
	return &media.Image{Data: data, MIME: mime}
}

func imageColumns(img *media.Image) ([]byte, string) {
	if img == nil {
		return nil, ""
	}
	return img.Data, img.MIME
}
