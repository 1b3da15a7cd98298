package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Content     string         `gorm:"type:text"`
	ContentType string         `gorm:"type:varchar(32);not null;default:'lexical'"`
	Headline    string         `gorm:"type:varchar(280)"`
	VaultId     *uuid.UUID     `gorm:"type:uuid;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}
