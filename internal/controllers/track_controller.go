package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"trail_tracker/internal/config"
	"trail_tracker/internal/geo"
	"trail_tracker/internal/geocode"
	"trail_tracker/internal/gpx"
	"trail_tracker/internal/ingest"
	"trail_tracker/internal/models"
	"trail_tracker/internal/storage"
)

var (
	ingestor *ingest.Ingestor
	blobs    storage.BlobStore
	geocoder *geocode.Client
)

// Setup wires the collaborators the track handlers depend on. Called
// once from main before the router starts serving.
func Setup(ing *ingest.Ingestor, store storage.BlobStore, gc *geocode.Client) {
	ingestor = ing
	blobs = store
	geocoder = gc
}

// TrackSummary is the list-view shape: metadata only, no geometry decode.
type TrackSummary struct {
	ID        uint      `json:"ID"`
	CreatedAt time.Time `json:"CreatedAt"`
	Name      string    `json:"name"`
	Sport     string    `json:"sport"`
	DateTime  time.Time `json:"date_time"`
	FileURL   string    `json:"file_url"`
}

// TrackDetail adds the recomputed statistics, the decoded geometry as
// GeoJSON and the reverse-geocoded starting address.
type TrackDetail struct {
	TrackSummary
	Stats        geo.Stats `json:"stats"`
	Geometry     string    `json:"geometry"`
	StartAddress string    `json:"start_address"`
}

func toTrackSummary(t models.Track) TrackSummary {
	return TrackSummary{
		ID:        t.ID,
		CreatedAt: t.CreatedAt,
		Name:      t.Name,
		Sport:     t.Sport,
		DateTime:  t.DateTime,
		FileURL:   t.FileURL,
	}
}

// UploadTrack ingests a multipart GPX upload: file plus title, sport and
// date_time (RFC3339) form fields.
func UploadTrack(c *gin.Context) {
	up := ingest.Upload{
		Title: c.PostForm("title"),
		Sport: c.PostForm("sport"),
	}

	if raw := c.PostForm("date_time"); raw != "" {
		dt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_time must be RFC3339: " + err.Error()})
			return
		}
		up.DateTime = dt
	}

	fileHeader, err := c.FormFile("file")
	if err == nil {
		f, openErr := fileHeader.Open()
		if openErr != nil {
			logrus.WithError(openErr).Error("UploadTrack: cannot open multipart file")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read uploaded file"})
			return
		}
		defer f.Close()
		up.File = f
		up.Filename = fileHeader.Filename
	}

	id, err := ingestor.Ingest(c.Request.Context(), up)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"track_id": id})
}

func respondIngestError(c *gin.Context, err error) {
	var ingErr *ingest.Error
	if !errors.As(err, &ingErr) {
		logrus.WithError(err).Error("UploadTrack: unexpected ingest failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "track upload failed"})
		return
	}

	logrus.WithError(ingErr).WithField("step", ingErr.Step).Warn("UploadTrack: ingest failed")

	switch {
	case ingErr.Timeout():
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "upload timed out", "step": ingErr.Step})
	case ingErr.Step == ingest.StepValidating:
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields", "fields": ingErr.Fields})
	case errors.Is(ingErr, gpx.ErrMalformedDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a valid GPX document"})
	case errors.Is(ingErr, geo.ErrInsufficientGeometry):
		c.JSON(http.StatusBadRequest, gin.H{"error": "track needs at least 2 points"})
	case errors.Is(ingErr, ingest.ErrDuplicateTrack):
		c.JSON(http.StatusConflict, gin.H{"error": "a track with this name and date already exists"})
	case ingErr.Step == ingest.StepUploading || ingErr.Step == ingest.StepPersisting:
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable, try again later", "step": ingErr.Step})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "track upload failed", "step": ingErr.Step})
	}
}

// ListTracks returns all tracks, newest outing first, without decoding
// geometries.
func ListTracks(c *gin.Context) {
	var tracks []models.Track
	if err := config.DB.Order("date_time DESC").Find(&tracks).Error; err != nil {
		logrus.WithError(err).Error("ListTracks: query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summaries := make([]TrackSummary, 0, len(tracks))
	for _, t := range tracks {
		summaries = append(summaries, toTrackSummary(t))
	}
	c.JSON(http.StatusOK, gin.H{"tracks": summaries})
}

// GetTrack returns one track with statistics recomputed from the stored
// geometry and a best-effort starting address.
func GetTrack(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	var track models.Track
	if err := config.DB.First(&track, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		} else {
			logrus.WithError(err).Error("GetTrack: query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	points, err := geo.DecodeLineStringZ(track.Geom)
	if err != nil {
		logrus.WithError(err).WithField("track_id", track.ID).Error("GetTrack: stored geometry undecodable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored geometry is unreadable"})
		return
	}

	geometry, err := geo.GeoJSON(points)
	if err != nil {
		logrus.WithError(err).WithField("track_id", track.ID).Error("GetTrack: geometry conversion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stored geometry is unreadable"})
		return
	}

	detail := TrackDetail{
		TrackSummary: toTrackSummary(track),
		Stats:        geo.Analyze(points),
		Geometry:     geometry,
		StartAddress: geocoder.ReverseGeocode(c.Request.Context(), points[0].Lat, points[0].Lon),
	}
	c.JSON(http.StatusOK, gin.H{"track": detail})
}

// DeleteTrack removes the database row, then best-effort deletes the raw
// file from blob storage.
func DeleteTrack(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid track ID"})
		return
	}

	var track models.Track
	if err := config.DB.First(&track, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Track not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Hard delete: the blob goes too, so a soft-deleted row would only
	// hold the (name, date_time) slot against re-uploads.
	if err := config.DB.Unscoped().Delete(&track).Error; err != nil {
		logrus.WithError(err).Error("DeleteTrack: delete failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed: " + err.Error()})
		return
	}

	if key, ok := strings.CutPrefix(track.FileURL, "/files/"); ok {
		if err := blobs.Delete(c.Request.Context(), key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("DeleteTrack: blob delete failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Track deleted successfully"})
}
