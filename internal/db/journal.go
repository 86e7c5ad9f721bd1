package db

import "gorm.io/gorm"

// JournalEntry 记录一条情绪日记
// Sentiment 为模型识别出的主要情绪；Reply 为模型的回应原文，
// ReplyHTML 为渲染并消毒后的 HTML，供客户端直接展示
type JournalEntry struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Text      string `gorm:"type:text;not null"`
	Sentiment string `gorm:"size:50"`
	Reply     string `gorm:"type:text"`
	ReplyHTML string `gorm:"type:text"`
}

// TableName 返回自定义表名
func (JournalEntry) TableName() string {
	return "journal_entries"
}
