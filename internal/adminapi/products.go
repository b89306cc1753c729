package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/stylehub/stylehub/internal/catalog"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/webserver"
	"github.com/stylehub/stylehub/pkg/common"
)

// productPayload accepts the loose typing of the admin form: price may be a
// number or a numeric string and featured may be a bool, 0/1 or "true".
type productPayload struct {
	ID          interface{} `json:"id"`
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Price       interface{} `json:"price"`
	Category    *string     `json:"category"`
	Image       *string     `json:"image"`
	Featured    interface{} `json:"featured"`
}

func (p productPayload) toInput() (catalog.ProductInput, error) {
	in := catalog.ProductInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
	}
	if p.Price != nil {
		s, err := cast.ToStringE(p.Price)
		if err != nil {
			return in, &catalog.FieldError{Field: "price"}
		}
		if s = strings.TrimSpace(s); s != "" {
			d, err := decimal.NewFromString(s)
			if err != nil {
				return in, &catalog.FieldError{Field: "price"}
			}
			in.Price = &d
		}
	}
	if p.Featured != nil {
		var featured bool
		switch v := p.Featured.(type) {
		case float64:
			featured = v != 0
		default:
			b, err := cast.ToBoolE(v)
			if err != nil {
				return in, &catalog.FieldError{Field: "featured"}
			}
			featured = b
		}
		in.Featured = &featured
	}
	return in, nil
}

// productExportRow is one line of the admin CSV export
type productExportRow struct {
	ID          int64  `csv:"id"`
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Price       string `csv:"price"`
	Featured    bool   `csv:"featured"`
	Status      string `csv:"status"`
	Image       string `csv:"image"`
	Description string `csv:"description"`
	CreatedAt   string `csv:"created_at"`
}

// registerProductRoutes registers the public catalog and admin product routes
func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/featured", listFeaturedProducts)
	webserver.ApiGET("/products/:id", getProduct)

	webserver.ApiPOST("/products", createProduct, webserver.RequireAdmin)
	webserver.ApiPUT("/products", updateProduct, webserver.RequireAdmin)
	webserver.ApiPUT("/products/:id", updateProduct, webserver.RequireAdmin)
	webserver.ApiDELETE("/products", deleteProduct, webserver.RequireAdmin)
	webserver.ApiDELETE("/products/:id", deleteProduct, webserver.RequireAdmin)

	webserver.ApiGET("/admin/products", adminListProducts, webserver.RequireAdmin)
	webserver.ApiGET("/admin/products/export", exportProducts, webserver.RequireAdmin)
	webserver.ApiGET("/admin/products/:id", adminGetProduct, webserver.RequireAdmin)
	webserver.ApiPOST("/admin/products/:id/restore", restoreProduct, webserver.RequireAdmin)
}

func catalogService(c echo.Context) *catalog.Service {
	return catalog.NewService(catalog.NewGormProductRepository(GetDB(c)))
}

func actorOf(c echo.Context) catalog.Actor {
	p := webserver.CurrentPrincipal(c)
	return catalog.Actor{UserID: p.UserID, Role: p.Role}
}

func catalogFail(c echo.Context, err error, action string) error {
	var fe *catalog.FieldError
	switch {
	case errors.As(err, &fe):
		code := "INVALID_" + strings.ToUpper(fe.Field)
		if fe.Missing {
			code = "MISSING_" + strings.ToUpper(fe.Field)
		}
		return fail(c, http.StatusBadRequest, code, common.Ucfirst(fe.Error()), nil)
	case errors.Is(err, catalog.ErrNotFound):
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	case errors.Is(err, catalog.ErrForbidden):
		return fail(c, http.StatusForbidden, "FORBIDDEN", "Admin role required", nil)
	default:
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to "+action, storageDetail(c, err))
	}
}

// listProducts serves the whole active catalog. ?id= and ?featured are
// accepted for clients of the single endpoint contract.
func listProducts(c echo.Context) error {
	if idStr := strings.TrimSpace(c.QueryParam("id")); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
		}
		return writeActiveProduct(c, id)
	}
	if c.QueryParams().Has("featured") {
		return listFeaturedProducts(c)
	}

	rows, err := catalogService(c).ListActive(c.Request().Context())
	if err != nil {
		return catalogFail(c, err, "query products")
	}
	return ok(c, nonNil(rows))
}

func listFeaturedProducts(c echo.Context) error {
	rows, err := catalogService(c).ListFeatured(c.Request().Context())
	if err != nil {
		return catalogFail(c, err, "query products")
	}
	return ok(c, nonNil(rows))
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	return writeActiveProduct(c, id)
}

func writeActiveProduct(c echo.Context, id int64) error {
	p, err := catalogService(c).GetActive(c.Request().Context(), id)
	if err != nil {
		return catalogFail(c, err, "query product")
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	in, err := payload.toInput()
	if err != nil {
		return catalogFail(c, err, "create product")
	}
	id, err := catalogService(c).Create(c.Request().Context(), actorOf(c), in)
	if err != nil {
		return catalogFail(c, err, "create product")
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": "Product created successfully",
	})
}

func updateProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	id, err := productID(c, payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_ID", "Product ID is required", nil)
	}
	in, err := payload.toInput()
	if err != nil {
		return catalogFail(c, err, "update product")
	}
	if err := catalogService(c).Update(c.Request().Context(), actorOf(c), id, in); err != nil {
		return catalogFail(c, err, "update product")
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": "Product updated successfully",
	})
}

func deleteProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	id, err := productID(c, payload)
	if err != nil {
		return fail(c, http.StatusBadRequest, "MISSING_ID", "Product ID is required", nil)
	}
	if err := catalogService(c).SoftDelete(c.Request().Context(), actorOf(c), id); err != nil {
		return catalogFail(c, err, "delete product")
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": "Product deleted successfully",
	})
}

func restoreProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := catalogService(c).Restore(c.Request().Context(), actorOf(c), id); err != nil {
		return catalogFail(c, err, "restore product")
	}
	return ok(c, map[string]interface{}{
		"success": true,
		"id":      id,
		"message": "Product restored successfully",
	})
}

func adminListProducts(c echo.Context) error {
	rows, err := catalogService(c).ListAll(c.Request().Context(), actorOf(c))
	if err != nil {
		return catalogFail(c, err, "query products")
	}
	return ok(c, nonNil(rows))
}

func adminGetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := catalogService(c).Get(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return catalogFail(c, err, "query product")
	}
	return ok(c, p)
}

func exportProducts(c echo.Context) error {
	rows, err := catalogService(c).ListAll(c.Request().Context(), actorOf(c))
	if err != nil {
		return catalogFail(c, err, "export products")
	}
	out := make([]productExportRow, 0, len(rows))
	for _, p := range rows {
		out = append(out, productExportRow{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.Price.StringFixed(2),
			Featured:    p.Featured,
			Status:      p.Status,
			Image:       p.Image,
			Description: p.Description,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	data, err := gocsv.MarshalBytes(&out)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to export products", storageDetail(c, err))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// productID prefers the path id and falls back to the body id
func productID(c echo.Context, payload productPayload) (int64, error) {
	if c.Param("id") != "" {
		return parseIDParam(c, "id")
	}
	if payload.ID == nil {
		return 0, errors.New("missing id")
	}
	id, err := cast.ToInt64E(payload.ID)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func nonNil(rows []domain.Product) []domain.Product {
	if rows == nil {
		return []domain.Product{}
	}
	return rows
}
