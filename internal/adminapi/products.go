package adminapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/talkincode/storefront/internal/catalog"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/webserver"
)

// productForm mirrors the multipart fields sent by the admin dashboard.
// Values stay strings here, the catalog service parses them.
type productForm struct {
	Name        string `json:"name" form:"name"`
	Price       string `json:"price" form:"price"`
	Description string `json:"description" form:"description"`
	Stock       string `json:"stock" form:"stock"`
	Category    string `json:"category" form:"category"`
	Status      string `json:"status" form:"status"`
	Brand       string `json:"brand" form:"brand"`
	Sku         string `json:"sku" form:"sku"`
	Discount    string `json:"discount" form:"discount"`
	Rating      string `json:"rating" form:"rating"`
}

// registerProductRoutes registers the catalog endpoints used by the storefront and dashboard
func (a *AdminAPI) registerProductRoutes(s *webserver.AdminServer) {
	s.GET("/product/getAllProduct", a.listProducts)
	s.AuthPOST("/product/create-product", a.createProduct)
	s.AuthDELETE("/product/deleteProduct/:id", a.deleteProduct)
}

func (a *AdminAPI) listProducts(c echo.Context) error {
	products, err := a.catalog.ListAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err)
	}
	return ok(c, map[string]interface{}{
		"data":    products,
		"message": "Products fetched successfully",
	})
}

func (a *AdminAPI) createProduct(c echo.Context) error {
	var form productForm
	if err := c.Bind(&form); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err)
	}

	input := catalog.CreateInput{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Stock:       form.Stock,
		Category:    form.Category,
		Status:      form.Status,
		Brand:       form.Brand,
		Sku:         form.Sku,
		Discount:    form.Discount,
		Rating:      form.Rating,
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err)
		}
		defer f.Close()
		input.Image = &catalog.Upload{Filename: fh.Filename, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no image
	default:
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err)
	}

	product, err := a.catalog.Create(c.Request().Context(), input)
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", domain.MessageOf(err, "Invalid product"), err)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err)
	}
	return ok(c, map[string]interface{}{"saveData": product})
}

func (a *AdminAPI) deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}

	result, err := a.catalog.DeleteByID(c.Request().Context(), id)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err)
	}
	if result == catalog.NotFound {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	return ok(c, map[string]interface{}{"message": "Product deleted successfully"})
}
