package ingest

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"trail_tracker/internal/geo"
	"trail_tracker/internal/gpx"
	"trail_tracker/internal/models"
	"trail_tracker/internal/storage"
)

const validGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="48.0" lon="2.0"><ele>100</ele></trkpt>
    <trkpt lat="48.001" lon="2.001"><ele>150</ele></trkpt>
    <trkpt lat="48.002" lon="2.002"><ele>120</ele></trkpt>
  </trkseg></trk>
</gpx>`

const singlePointGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><trkseg>
    <trkpt lat="48.0" lon="2.0"><ele>100</ele></trkpt>
  </trkseg></trk>
</gpx>`

type stubRepo struct {
	created []*models.Track
	err     error
}

func (r *stubRepo) Create(ctx context.Context, track *models.Track) error {
	if r.err != nil {
		return r.err
	}
	track.ID = uint(len(r.created) + 1)
	r.created = append(r.created, track)
	return nil
}

type stubBlobStore struct {
	uploads   int
	deletes   []string
	uploadErr error
	deleteErr error
}

func (s *stubBlobStore) Upload(ctx context.Context, key string, r io.Reader, overwrite bool) (string, error) {
	s.uploads++
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	io.Copy(io.Discard, r)
	return key, nil
}

func (s *stubBlobStore) PublicURL(key string) string { return "/files/" + key }

func (s *stubBlobStore) Delete(ctx context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return s.deleteErr
}

func validUpload() Upload {
	return Upload{
		File:     strings.NewReader(validGPX),
		Filename: "sortie-forêt.gpx",
		Title:    "Sortie forêt",
		Sport:    "Cross",
		DateTime: time.Date(2025, 3, 9, 9, 30, 0, 0, time.UTC),
	}
}

func TestIngest_HappyPath(t *testing.T) {
	repo := &stubRepo{}
	store := &stubBlobStore{}
	ing := New(repo, store)

	id, err := ing.Ingest(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: %d", id)
	}
	if store.uploads != 1 {
		t.Fatalf("uploads: %d", store.uploads)
	}
	if len(store.deletes) != 0 {
		t.Fatalf("no cleanup expected, got deletes %v", store.deletes)
	}

	track := repo.created[0]
	if !strings.HasPrefix(track.Geom, "LINESTRINGZ(") {
		t.Errorf("geometry text: %q", track.Geom)
	}
	if !strings.HasPrefix(track.FileURL, "/files/tracks/") {
		t.Errorf("file url: %q", track.FileURL)
	}
	// Diacritics never reach the storage key.
	if strings.Contains(track.FileURL, "ê") {
		t.Errorf("unsanitized key in %q", track.FileURL)
	}
	if track.Name != "Sortie forêt" || track.Sport != "Cross" {
		t.Errorf("metadata: %+v", track)
	}
}

func TestIngest_DottedFilenameUploadsToDiskStore(t *testing.T) {
	repo := &stubRepo{}
	store := storage.NewDiskStore(t.TempDir())
	ing := New(repo, store)

	up := validUpload()
	up.Filename = "sortie..gpx"

	id, err := ing.Ingest(context.Background(), up)
	if err != nil {
		t.Fatalf("dotted filename must not fail ingest: %v", err)
	}
	if id != 1 {
		t.Fatalf("id: %d", id)
	}
	if !strings.HasSuffix(repo.created[0].FileURL, "_sortie..gpx") {
		t.Fatalf("file url: %q", repo.created[0].FileURL)
	}
}

func TestIngest_ValidationRunsBeforeAnyCall(t *testing.T) {
	cases := map[string]func(*Upload){
		"title":     func(u *Upload) { u.Title = "" },
		"sport":     func(u *Upload) { u.Sport = "" },
		"date_time": func(u *Upload) { u.DateTime = time.Time{} },
		"file":      func(u *Upload) { u.File = nil },
	}
	for field, mutate := range cases {
		repo := &stubRepo{}
		store := &stubBlobStore{}
		ing := New(repo, store)

		up := validUpload()
		mutate(&up)

		_, err := ing.Ingest(context.Background(), up)
		var ingErr *Error
		if !errors.As(err, &ingErr) || ingErr.Step != StepValidating {
			t.Fatalf("%s: got %v, want validating error", field, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: not an ErrValidation: %v", field, err)
		}
		if !slices.Contains(ingErr.Fields, field) {
			t.Errorf("%s: fields %v do not name the missing field", field, ingErr.Fields)
		}
		if store.uploads != 0 || len(repo.created) != 0 {
			t.Errorf("%s: collaborators were called before validation passed", field)
		}
	}
}

func TestIngest_MalformedFileCleansUpBlob(t *testing.T) {
	repo := &stubRepo{}
	store := &stubBlobStore{}
	ing := New(repo, store)

	up := validUpload()
	up.File = strings.NewReader("not xml at all")

	_, err := ing.Ingest(context.Background(), up)
	var ingErr *Error
	if !errors.As(err, &ingErr) || ingErr.Step != StepParsing {
		t.Fatalf("got %v, want parsing error", err)
	}
	if !errors.Is(err, gpx.ErrMalformedDocument) {
		t.Fatalf("cause: %v", err)
	}
	if store.uploads != 1 || len(store.deletes) != 1 {
		t.Fatalf("expected upload then compensating delete, got uploads=%d deletes=%v", store.uploads, store.deletes)
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing may be persisted for a corrupt file")
	}
}

func TestIngest_SinglePointTrackRejected(t *testing.T) {
	repo := &stubRepo{}
	store := &stubBlobStore{}
	ing := New(repo, store)

	up := validUpload()
	up.File = strings.NewReader(singlePointGPX)

	_, err := ing.Ingest(context.Background(), up)
	var ingErr *Error
	if !errors.As(err, &ingErr) || ingErr.Step != StepEncoding {
		t.Fatalf("got %v, want encoding error", err)
	}
	if !errors.Is(err, geo.ErrInsufficientGeometry) {
		t.Fatalf("cause: %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("single-point upload must be compensated, deletes=%v", store.deletes)
	}
}

func TestIngest_PersistFailureCleansUpBlob(t *testing.T) {
	repo := &stubRepo{err: errors.New("connection refused")}
	store := &stubBlobStore{}
	ing := New(repo, store)

	_, err := ing.Ingest(context.Background(), validUpload())
	var ingErr *Error
	if !errors.As(err, &ingErr) || ingErr.Step != StepPersisting {
		t.Fatalf("got %v, want persisting error", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected compensating delete, got %v", store.deletes)
	}
}

func TestIngest_CleanupFailureDoesNotMaskCause(t *testing.T) {
	repo := &stubRepo{err: errors.New("insert failed")}
	store := &stubBlobStore{deleteErr: errors.New("delete also failed")}
	ing := New(repo, store)

	_, err := ing.Ingest(context.Background(), validUpload())
	var ingErr *Error
	if !errors.As(err, &ingErr) || ingErr.Step != StepPersisting {
		t.Fatalf("cleanup failure must not replace the original error, got %v", err)
	}
}

func TestIngest_DuplicateTrack(t *testing.T) {
	repo := &stubRepo{err: ErrDuplicateTrack}
	store := &stubBlobStore{}
	ing := New(repo, store)

	_, err := ing.Ingest(context.Background(), validUpload())
	if !errors.Is(err, ErrDuplicateTrack) {
		t.Fatalf("got %v, want ErrDuplicateTrack", err)
	}
}

func TestIngest_UploadFailureIsTerminal(t *testing.T) {
	repo := &stubRepo{}
	store := &stubBlobStore{uploadErr: errors.New("bucket unreachable")}
	ing := New(repo, store)

	_, err := ing.Ingest(context.Background(), validUpload())
	var ingErr *Error
	if !errors.As(err, &ingErr) || ingErr.Step != StepUploading {
		t.Fatalf("got %v, want uploading error", err)
	}
	if len(repo.created) != 0 || len(store.deletes) != 0 {
		t.Fatalf("no persistence or cleanup expected after a failed upload")
	}
}

func TestIngest_UploadTimeout(t *testing.T) {
	repo := &stubRepo{}
	store := &stubBlobStore{uploadErr: context.DeadlineExceeded}
	ing := New(repo, store)

	_, err := ing.Ingest(context.Background(), validUpload())
	var ingErr *Error
	if !errors.As(err, &ingErr) || !ingErr.Timeout() {
		t.Fatalf("got %v, want a timeout error", err)
	}
}
