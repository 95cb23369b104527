package models

import (
	"time"

	"gorm.io/gorm"
)

// Track is one recorded outing. The point sequence itself is not stored;
// Geom holds its LINESTRINGZ text encoding and is the source of truth the
// display path decodes and re-analyzes.
type Track struct {
	gorm.Model

	Name string `json:"name" binding:"required" gorm:"not null;uniqueIndex:idx_tracks_name_datetime"`

	// Sport category, e.g. Cross, Marche, Trail, VTT, Trottinette.
	Sport string `json:"sport" binding:"required"`

	// DateTime is when the outing took place, not when it was uploaded.
	DateTime time.Time `json:"date_time" gorm:"uniqueIndex:idx_tracks_name_datetime"`

	// Geom is the LINESTRINGZ(lon lat ele, ...) encoding of the track.
	Geom string `json:"-" gorm:"type:text;not null"`

	// FileURL points at the raw uploaded file in blob storage.
	FileURL string `json:"file_url"`
}
