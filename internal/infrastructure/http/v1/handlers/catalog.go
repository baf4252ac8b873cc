package handlers

import (
	"github.com/gin-gonic/gin"

	"slice/internal/domain/catalog"
	"slice/internal/domain/recipe"
	"slice/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves branches, items, products and recipes.
type CatalogHandler struct {
	*BaseHandler
	catalog *catalog.Service
	recipes *recipe.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, cat *catalog.Service, recipes *recipe.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, catalog: cat, recipes: recipes}
}

// CreateBranch handles POST /branches.
func (h *CatalogHandler) CreateBranch(c *gin.Context) {
	var req dto.CreateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	branch := req.ToEntity()
	if err := h.catalog.CreateBranch(c.Request.Context(), branch); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, branch)
}

// ListBranches handles GET /branches.
func (h *CatalogHandler) ListBranches(c *gin.Context) {
	branches, err := h.catalog.ListBranches(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, branches)
}

// AddItem handles POST /items.
func (h *CatalogHandler) AddItem(c *gin.Context) {
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item := req.ToEntity()
	if err := h.catalog.AddItem(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem handles PUT /items/:id.
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item := req.ToEntity()
	item.ID = itemID
	if err := h.catalog.UpdateItem(c.Request.Context(), item); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// GetItem handles GET /items/:id.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	itemID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	item, err := h.catalog.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// ListItems handles GET /items?category=.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, items)
}

// AddProduct handles POST /products.
func (h *CatalogHandler) AddProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product := req.ToEntity()
	if err := h.catalog.AddProduct(c.Request.Context(), product); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, product)
}

// ListProducts handles GET /products?available=true.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("available") == "true")
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, products)
}

// UpdatePrice handles PUT /products/:id/price.
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.PriceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.catalog.UpdatePrice(c.Request.Context(), productID, req.Price); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SetAvailability handles PUT /products/:id/availability.
func (h *CatalogHandler) SetAvailability(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.AvailabilityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.catalog.SetAvailability(c.Request.Context(), productID, *req.Available); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SetRecipe handles PUT /products/:id/recipe.
func (h *CatalogHandler) SetRecipe(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	var req dto.RecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	lines, err := h.recipes.SetRecipe(c.Request.Context(), productID, req.Lines)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, lines)
}

// GetRecipe handles GET /products/:id/recipe.
func (h *CatalogHandler) GetRecipe(c *gin.Context) {
	productID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	lines, err := h.recipes.GetRecipe(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, lines)
}

// Menu handles GET /branches/:branchId/menu.
func (h *CatalogHandler) Menu(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	menu, err := h.recipes.Menu(c.Request.Context(), branchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	List(c, menu)
}

// MaxCookable handles GET /branches/:branchId/products/:productId/max-cookable.
func (h *CatalogHandler) MaxCookable(c *gin.Context) {
	branchID, ok := h.PathID(c, "branchId")
	if !ok {
		return
	}
	productID, ok := h.PathID(c, "productId")
	if !ok {
		return
	}
	n, err := h.recipes.ComputeMaxCookable(c.Request.Context(), branchID, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.MaxCookableResponse{
		BranchID:    branchID.String(),
		ProductID:   productID.String(),
		MaxCookable: n,
	})
}
