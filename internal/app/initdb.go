package app

import (
	"errors"
	"strings"

	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// checkSuper creates the configured bootstrap admin when it does not exist
// and restores its password when the stored hash is empty.
func (a *Application) checkSuper() error {
	adminCfg := a.appConfig.Admin
	if common.IsEmptyOrNA(adminCfg.Username) || adminCfg.Password == "" {
		zap.L().Info("bootstrap admin disabled")
		return nil
	}

	var admin domain.SysAdmin
	err := a.gormDB.Where("username = ?", adminCfg.Username).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := common.HashPassword(adminCfg.Password, adminCfg.BcryptCost)
		if err != nil {
			return err
		}
		if err := a.gormDB.Create(&domain.SysAdmin{
			Username: adminCfg.Username,
			Email:    adminCfg.Email,
			Password: hashed,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
			return err
		}
		zap.L().Info("initialized default admin account", zap.String("username", adminCfg.Username))
		return nil
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return err
	}

	if strings.TrimSpace(admin.Password) != "" {
		return nil
	}
	hashed, err := common.HashPassword(adminCfg.Password, adminCfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := a.gormDB.Model(&domain.SysAdmin{}).Where("id = ?", admin.ID).
		Update("password", hashed).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return err
	}
	zap.L().Warn("repaired default admin account", zap.String("username", adminCfg.Username))
	return nil
}
