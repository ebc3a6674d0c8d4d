package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xenking/grocer-kart/internal/domain/catalog"
	"github.com/xenking/grocer-kart/internal/domain/media"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type variantJSON struct {
	ID            int64               `json:"id,omitempty"`
	QuantityValue string              `json:"quantity_value"`
	Price         decimal.Decimal     `json:"price"`
	MRP           decimal.NullDecimal `json:"mrp"`
}

type productRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CategoryID  int64         `json:"category_id"`
	Status      string        `json:"status"`
	Variants    []variantJSON `json:"variants"`
	Image       string        `json:"image"`
}

type variantResponse struct {
	ID            int64  `json:"id"`
	QuantityValue string `json:"quantity_value"`
	Price         money  `json:"price"`
	MRP           *money `json:"mrp"`
}

type productResponse struct {
	ID           int64             `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	CategoryID   int64             `json:"category_id"`
	CategoryName string            `json:"category_name"`
	Status       string            `json:"status"`
	Variants     []variantResponse `json:"variants"`
	Image        string            `json:"image,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type imageRequest struct {
	ProductID int64  `json:"product_id"`
	Image     string `json:"image"`
}

// optionalImage decodes s, treating the empty string as no image.
func optionalImage(s string) (*media.Image, error) {
	if s == "" {
		return nil, nil
	}
	return media.Decode(s)
}

func toCategoryResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Image: c.Image.DataURI()}
}

func toProductResponse(p *catalog.Product) productResponse {
	variants := make([]variantResponse, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = variantResponse{
			ID:            v.ID,
			QuantityValue: v.QuantityValue,
			Price:         money(v.Price),
			MRP:           nullMoney(v.MRP),
		}
	}
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Status:       string(p.Status),
		Variants:     variants,
		Image:        p.Image.DataURI(),
	}
}

func (req productRequest) product() (*catalog.Product, error) {
	img, err := optionalImage(req.Image)
	if err != nil {
		return nil, err
	}
	p := &catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Status:      catalog.Status(req.Status),
		Image:       img,
	}
	if p.Status == "" {
		p.Status = catalog.StatusEnabled
	}
	for _, v := range req.Variants {
		p.Variants = append(p.Variants, catalog.Variant{
			ID:            v.ID,
			QuantityValue: v.QuantityValue,
			Price:         v.Price,
			MRP:           v.MRP,
		})
	}
	return p, nil
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) error {
	list, err := h.svc.Catalog.Categories(r.Context())
	if err != nil {
		return err
	}
	out := make([]categoryResponse, len(list))
	for i := range list {
		out[i] = toCategoryResponse(&list[i])
	}
	return writeJSON(w, http.StatusOK, out)
}

func (h *Handler) decodeCategory(w http.ResponseWriter, r *http.Request) (*catalog.Category, error) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	img, err := optionalImage(req.Image)
	if err != nil {
		return nil, err
	}
	return &catalog.Category{Name: req.Name, Image: img}, nil
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) error {
	c, err := h.decodeCategory(w, r)
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.CreateCategory(r.Context(), c); err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	c, err := h.decodeCategory(w, r)
	if err != nil {
		return err
	}
	c.ID = id
	if err := h.svc.Catalog.UpdateCategory(r.Context(), c); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.DeleteCategory(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		return err
	}
	f := catalog.Filter{
		CategoryID:      categoryID,
		Search:          r.URL.Query().Get("search"),
		IncludeDisabled: queryBool(r, "include_disabled"),
	}
	if f.IncludeDisabled {
		if err := h.requireAdmin(r); err != nil {
			return err
		}
	}
	list, err := h.svc.Catalog.Products(r.Context(), f)
	if err != nil {
		return err
	}
	out := make([]productResponse, len(list))
	for i := range list {
		out[i] = toProductResponse(&list[i])
	}
	return writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.Catalog.Product(r.Context(), id)
	if err != nil {
		return err
	}
	if p.Status != catalog.StatusEnabled {
		if err := h.requireAdmin(r); err != nil {
			return catalog.ErrProductNotFound
		}
	}
	return writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) error {
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	p, err := req.product()
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.CreateProduct(r.Context(), p); err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req productRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	p, err := req.product()
	if err != nil {
		return err
	}
	p.ID = id
	if err := h.svc.Catalog.UpdateProduct(r.Context(), p); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.DeleteProduct(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) setProductStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := h.svc.Catalog.SetStatus(r.Context(), id, catalog.Status(req.Status)); err != nil {
		return err
	}
	return writeMessage(w, http.StatusOK, "status updated")
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) error {
	var req imageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	img, err := media.Decode(req.Image)
	if err != nil {
		return err
	}
	if err := h.svc.Catalog.SetImage(r.Context(), req.ProductID, img); err != nil {
		return err
	}
	return writeMessage(w, http.StatusOK, "image uploaded")
}
