package adminapi

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/internal/webserver"
	"golang.org/x/sync/errgroup"
)

// PriceSummary describes the prices of the active catalog
type PriceSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// DashboardStats feeds the admin dashboard header cards
type DashboardStats struct {
	ActiveProducts int64        `json:"active_products"`
	Users          int64        `json:"users"`
	NewMessages    int64        `json:"new_messages"`
	TotalMessages  int64        `json:"total_messages"`
	Prices         PriceSummary `json:"prices"`
}

func registerDashboardRoutes() {
	webserver.ApiGET("/admin/stats", dashboardStats, webserver.RequireAdmin)
	webserver.ApiGET("/admin/users", listUsers, webserver.RequireAdmin)

	webserver.PageGET("/admin", dashboardPage, webserver.AdminPageGate)
	webserver.PageGET("/admin/dashboard", dashboardPage, webserver.AdminPageGate)
}

func dashboardStats(c echo.Context) error {
	var result DashboardStats
	var prices []float64
	g, ctx := errgroup.WithContext(c.Request().Context())
	db := webserver.GetAppContext(c).DB().WithContext(ctx)

	g.Go(func() error {
		return db.Model(&domain.Product{}).Where("status = ?", domain.ProductStatusActive).Count(&result.ActiveProducts).Error
	})
	g.Go(func() error {
		return db.Model(&domain.SysUser{}).Count(&result.Users).Error
	})
	g.Go(func() error {
		return db.Model(&domain.ContactMessage{}).Where("status = ?", domain.MessageStatusNew).Count(&result.NewMessages).Error
	})
	g.Go(func() error {
		return db.Model(&domain.ContactMessage{}).Count(&result.TotalMessages).Error
	})
	g.Go(func() error {
		var rows []domain.Product
		if err := db.Select("price").Where("status = ?", domain.ProductStatusActive).Find(&rows).Error; err != nil {
			return err
		}
		prices = make([]float64, 0, len(rows))
		for _, p := range rows {
			prices = append(prices, p.Price.InexactFloat64())
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stats", storageDetail(c, err))
	}

	result.Prices = summarizePrices(prices)
	return ok(c, result)
}

// summarizePrices returns zeros for an empty catalog
func summarizePrices(prices []float64) PriceSummary {
	if len(prices) == 0 {
		return PriceSummary{}
	}
	data := stats.Float64Data(prices)
	var s PriceSummary
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	for _, v := range []*float64{&s.Mean, &s.Median, &s.Min, &s.Max} {
		*v, _ = stats.Round(*v, 2)
	}
	return s
}

func listUsers(c echo.Context) error {
	var rows []domain.SysUser
	if err := GetDB(c).Order("created_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query users", storageDetail(c, err))
	}
	if rows == nil {
		rows = []domain.SysUser{}
	}
	return ok(c, rows)
}

func dashboardPage(c echo.Context) error {
	cfg := webserver.GetAppContext(c).Config()
	return c.File(filepath.Join(cfg.Web.AdminDir, "dashboard.html"))
}
