package model

import (
	"gorm.io/gorm"
)

type Post struct {
	gorm.Model
	Title       string `gorm:"column:title;not null"`
	Slug        string `gorm:"column:slug;index;not null"`
	Type        string `gorm:"column:type"`
	MainContent string `gorm:"column:main_content;type:text"`
	CoverURL    string `gorm:"column:cover_url"`
	CoverKey    string `gorm:"column:cover_key"`
	AuthorID    uint   `gorm:"column:author_id;not null"`

	Author     User          `gorm:"foreignKey:AuthorID"`
	Sections   []PostSection `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Categories []Category    `gorm:"many2many:post_categories;constraint:OnDelete:CASCADE"`
	Tags       []Tag         `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
}

type PostSection struct {
	gorm.Model
	PostID    uint   `gorm:"column:post_id;index;not null"`
	Content   string `gorm:"column:content;type:text"`
	ImageURL  string `gorm:"column:image_url"`
	ImageKey  string `gorm:"column:image_key"`
	SortOrder int    `gorm:"column:sort_order;not null"`
}

type Category struct {
	gorm.Model
	Name string `gorm:"column:name;unique;not null"`
}

type Tag struct {
	gorm.Model
	Name string `gorm:"column:name;unique;not null"`
	Slug string `gorm:"column:slug;not null"`
}
