// Package devicestore persists fast-path credential bindings in an embedded
// sqlite database local to the device. Nothing here is ever synchronized to
// the shared stores.
package devicestore

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stairstreak/leaderboard-system/internal/core/domain"
	"github.com/stairstreak/leaderboard-system/internal/core/ports"
)

type bindingRow struct {
	Token        string    `gorm:"primaryKey"`
	IdentityID   string    `gorm:"index"`
	IdentityName string
	SetupAt      time.Time `gorm:"index"`
}

func (bindingRow) TableName() string { return "credential_bindings" }

// Vault is the device-local binding store.
type Vault struct {
	db *gorm.DB
}

var _ ports.DeviceVault = (*Vault)(nil)

// Open opens (creating if needed) the vault database at path.
func Open(path string) (*Vault, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open device vault: %w", err)
	}
	if err := db.AutoMigrate(&bindingRow{}); err != nil {
		return nil, fmt.Errorf("migrate device vault: %w", err)
	}
	return &Vault{db: db}, nil
}

func (v *Vault) Put(binding domain.LocalCredentialBinding) error {
	row := bindingRow{
		Token:        binding.Token,
		IdentityID:   binding.IdentityID,
		IdentityName: binding.IdentityName,
		SetupAt:      binding.SetupAt,
	}
	if err := v.db.Save(&row).Error; err != nil {
		return fmt.Errorf("store binding: %w", err)
	}
	return nil
}

func (v *Vault) All() ([]domain.LocalCredentialBinding, error) {
	var rows []bindingRow
	if err := v.db.Order("setup_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}

	bindings := make([]domain.LocalCredentialBinding, 0, len(rows))
	for _, row := range rows {
		bindings = append(bindings, toBinding(row))
	}
	return bindings, nil
}

// MostRecent returns the newest binding, the fast-path default, or nil when
// no identity has ever logged in on this device.
func (v *Vault) MostRecent() (*domain.LocalCredentialBinding, error) {
	var row bindingRow
	err := v.db.Order("setup_at desc").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read binding: %w", err)
	}

	binding := toBinding(row)
	return &binding, nil
}

func toBinding(row bindingRow) domain.LocalCredentialBinding {
	return domain.LocalCredentialBinding{
		Token:        row.Token,
		IdentityID:   row.IdentityID,
		IdentityName: row.IdentityName,
		SetupAt:      row.SetupAt,
	}
}
