package app

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stylehub/stylehub/internal/domain"
	"github.com/stylehub/stylehub/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkSuper makes sure the configured administrator exists, is active and
// holds the admin role.
func (a *Application) checkSuper() {
	email := strings.ToLower(strings.TrimSpace(a.appConfig.System.AdminEmail))
	if email == "" {
		return
	}

	var user domain.SysUser
	err := a.gormDB.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashedPassword, herr := common.HashPassword(a.appConfig.System.AdminPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			FirstName: "Store",
			LastName:  "Administrator",
			Email:     email,
			Password:  hashedPassword,
			Role:      domain.RoleAdmin,
			Status:    domain.UserStatusActive,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", email))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(user.Password) == ""
	resetRole := user.Role != domain.RoleAdmin
	resetStatus := user.Status != domain.UserStatusActive

	if !resetPassword && !resetRole && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		hashedPassword, herr := common.HashPassword(a.appConfig.System.AdminPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		updates["password"] = hashedPassword
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}
	if resetStatus {
		updates["status"] = domain.UserStatusActive
	}

	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", email),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole),
		zap.Bool("statusActivated", resetStatus))
}

// checkProducts seeds a demo catalog into an empty products table
func (a *Application) checkProducts() {
	var count int64
	a.gormDB.Model(&domain.Product{}).Count(&count)
	if count > 0 {
		return
	}

	defaultProducts := []domain.Product{
		{Name: "Classic Oxford Shirt", Description: "Crisp cotton oxford for every day", Price: decimal.RequireFromString("49.99"), Category: domain.CategoryMen, Featured: true},
		{Name: "Slim Chino Trousers", Description: "Stretch twill chinos", Price: decimal.RequireFromString("59.00"), Category: domain.CategoryMen},
		{Name: "Wrap Midi Dress", Description: "Floral wrap dress in soft viscose", Price: decimal.RequireFromString("89.50"), Category: domain.CategoryWomen, Featured: true},
		{Name: "Cashmere Blend Sweater", Description: "Lightweight knit for cooler days", Price: decimal.RequireFromString("129.00"), Category: domain.CategoryWomen, Featured: true},
		{Name: "Leather Belt", Description: "Full grain leather with brass buckle", Price: decimal.RequireFromString("35.00"), Category: domain.CategoryAccessories},
		{Name: "Canvas Tote", Description: "Heavy canvas tote bag", Price: decimal.RequireFromString("50.00"), Category: domain.CategoryAccessories, Featured: true},
	}

	for _, p := range defaultProducts {
		p.Image = domain.DefaultProductImage
		p.Status = domain.ProductStatusActive
		p.CreatedAt = time.Now()
		p.UpdatedAt = time.Now()
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
		} else {
			zap.L().Info("initialized default product", zap.String("name", p.Name))
		}
	}
}
