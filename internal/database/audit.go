package database

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/models"
)

const (
	kindMutation = "mutation"
	kindWarning  = "warning"
)

// AuditLog persists catalog mutations and storage warnings. It implements
// catalog.Notifier; Warn is a catalog.WarningFunc.
type AuditLog struct {
	DB      *gorm.DB
	Backend string
}

func (a *AuditLog) CatalogChanged(ev catalog.ChangeEvent) {
	if a == nil {
		return
	}
	a.insert(models.CatalogEvent{
		Kind:      kindMutation,
		Op:        ev.Op,
		AppID:     ev.ID,
		Backend:   a.Backend,
		CreatedAt: ev.At,
	})
}

func (a *AuditLog) Warn(w catalog.Warning) {
	if a == nil {
		return
	}
	details, _ := json.Marshal(map[string]string{"path": w.Path})
	msg := ""
	if w.Err != nil {
		msg = w.Err.Error()
	}
	a.insert(models.CatalogEvent{
		Kind:      kindWarning,
		Op:        w.Op,
		AppID:     w.AppID,
		Backend:   a.Backend,
		Message:   msg,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	})
}

// Recent returns the newest events first.
func (a *AuditLog) Recent(limit int) ([]models.CatalogEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var events []models.CatalogEvent
	err := a.DB.Order("created_at DESC").Limit(limit).Find(&events).Error
	return events, err
}

func (a *AuditLog) insert(ev models.CatalogEvent) {
	if a == nil || a.DB == nil {
		return
	}
	if err := a.DB.Create(&ev).Error; err != nil {
		log.WithError(err).WithField("op", ev.Op).Warn("audit: failed to record event")
	}
}
