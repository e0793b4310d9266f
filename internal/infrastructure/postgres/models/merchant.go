package models

import "time"

type MerchantModel struct {
	ID                 string `gorm:"primaryKey;type:uuid"`
	ShopDomain         string `gorm:"uniqueIndex;not null"`
	Name               string
	AccessToken        string
	ProviderAPIKey     string
	WebhookSecret      string
	ProviderMerchantID string `gorm:"index"`
	ProviderOutletID   string
	CancelTimeLimit    int `gorm:"not null;default:10"`
	SuccessURL         string
	FailURL            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (MerchantModel) TableName() string { return "merchants" }
