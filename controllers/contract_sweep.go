package controllers

import (
	"time"

	"github.com/abenezer-t/CampusEats/models"
	"github.com/abenezer-t/CampusEats/services"
	"github.com/abenezer-t/CampusEats/utils"
	"gorm.io/gorm"
)

// expiryWarningWindow is how far ahead of expiry users get a reminder.
const expiryWarningWindow = 3 * 24 * time.Hour

// StartContractExpirySweep periodically marks lapsed contracts expired and
// notifies users whose contracts are about to lapse. Runs until the process
// exits.
func StartContractExpirySweep(db *gorm.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := SweepExpiredContracts(db); err != nil {
				utils.LogError("Contract expiry sweep failed: %v", err)
			}
		}
	}()
	utils.LogInfo("Contract expiry sweep started with interval %s", interval)
}

// SweepExpiredContracts flips is_expired on every active contract whose
// expiry date has passed, then sends near-expiry reminders. Debits already
// check expiry inline, so the sweep only keeps stored flags and reports
// honest; a missed run never allows spending on a lapsed contract.
func SweepExpiredContracts(db *gorm.DB) error {
	now := time.Now()

	res := db.Model(&models.Contract{}).
		Where("is_expired = ? AND expires_at <= ?", false, now).
		Updates(map[string]interface{}{"is_expired": true, "is_active": false})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		utils.LogInfo("Marked %d contracts as expired", res.RowsAffected)
	}

	var expiring []models.Contract
	if err := db.Preload("User").
		Where("is_active = ? AND is_expired = ? AND expires_at > ? AND expires_at <= ?",
			true, false, now, now.Add(expiryWarningWindow)).
		Find(&expiring).Error; err != nil {
		return err
	}
	for _, ct := range expiring {
		days := int(time.Until(ct.ExpiresAt).Hours()/24) + 1
		services.NotifyContractExpiry(&ct.User, ct.ID, days)
	}
	return nil
}
