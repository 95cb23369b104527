// Package ingest coordinates a track upload end to end: metadata
// validation, raw-file storage, GPX parsing, statistics, geometry
// encoding and the database insert. The steps run strictly in that
// order; the first failure is terminal for the attempt.
package ingest

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"trail_tracker/internal/geo"
	"trail_tracker/internal/gpx"
	"trail_tracker/internal/models"
	"trail_tracker/internal/storage"
)

const defaultStepTimeout = 30 * time.Second

// Upload is one user-initiated track submission.
type Upload struct {
	File     io.Reader
	Filename string
	Title    string
	Sport    string
	DateTime time.Time
}

type Ingestor struct {
	Repo  Repo
	Blobs storage.BlobStore

	// StepTimeout bounds each external call (blob upload, insert,
	// compensating delete). A hung collaborator fails the step with a
	// timeout instead of hanging the whole ingest.
	StepTimeout time.Duration
}

func New(repo Repo, blobs storage.BlobStore) *Ingestor {
	return &Ingestor{Repo: repo, Blobs: blobs, StepTimeout: defaultStepTimeout}
}

// Ingest runs the upload pipeline and returns the new track's id. All
// failures come back as *Error carrying the failed step. Validation
// happens before any network or storage call; once the raw file is
// stored, any later failure triggers a best-effort delete of the blob so
// failed attempts do not leave orphans behind.
func (g *Ingestor) Ingest(ctx context.Context, up Upload) (uint, error) {
	if missing := missingFields(up); len(missing) > 0 {
		return 0, &Error{Step: StepValidating, Fields: missing, Err: ErrValidation}
	}

	// The file is read once up front; the same bytes feed the blob
	// upload and the parser.
	data, err := io.ReadAll(up.File)
	if err != nil {
		return 0, stepErr(StepUploading, err)
	}

	key, err := g.uploadBlob(ctx, blobKey(up.Filename), data)
	if err != nil {
		return 0, stepErr(StepUploading, err)
	}

	points, err := gpx.Parse(data)
	if err != nil {
		g.cleanupBlob(key)
		return 0, stepErr(StepParsing, err)
	}

	stats := geo.Analyze(points)

	geomText, err := geo.EncodeLineStringZ(points)
	if err != nil {
		// Also covers zero- and single-point documents: they parse
		// fine but cannot become a line geometry, so they are
		// rejected here rather than persisted inconsistently.
		g.cleanupBlob(key)
		return 0, stepErr(StepEncoding, err)
	}

	track := models.Track{
		Name:     up.Title,
		Sport:    up.Sport,
		DateTime: up.DateTime,
		Geom:     geomText,
		FileURL:  g.Blobs.PublicURL(key),
	}
	if err := g.persist(ctx, &track); err != nil {
		g.cleanupBlob(key)
		return 0, stepErr(StepPersisting, err)
	}

	logrus.WithFields(logrus.Fields{
		"track_id":    track.ID,
		"name":        track.Name,
		"sport":       track.Sport,
		"points":      len(points),
		"distance_km": stats.DistanceKm,
		"gain_m":      stats.ElevationGainM,
	}).Info("track ingested")

	return track.ID, nil
}

func missingFields(up Upload) []string {
	var missing []string
	if up.Title == "" {
		missing = append(missing, "title")
	}
	if up.Sport == "" {
		missing = append(missing, "sport")
	}
	if up.DateTime.IsZero() {
		missing = append(missing, "date_time")
	}
	if up.File == nil {
		missing = append(missing, "file")
	}
	return missing
}

func (g *Ingestor) uploadBlob(ctx context.Context, key string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.stepTimeout())
	defer cancel()
	return g.Blobs.Upload(ctx, key, bytes.NewReader(data), false)
}

func (g *Ingestor) persist(ctx context.Context, track *models.Track) error {
	ctx, cancel := context.WithTimeout(ctx, g.stepTimeout())
	defer cancel()
	return g.Repo.Create(ctx, track)
}

// cleanupBlob compensates for a failed step after the raw file was
// already stored. It runs on a fresh context so a cancelled request
// cannot skip the cleanup; a failed delete is logged, never surfaced.
func (g *Ingestor) cleanupBlob(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), g.stepTimeout())
	defer cancel()
	if err := g.Blobs.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("orphaned blob: cleanup delete failed")
	}
}

func (g *Ingestor) stepTimeout() time.Duration {
	if g.StepTimeout > 0 {
		return g.StepTimeout
	}
	return defaultStepTimeout
}
