package job

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	apperrors "github.com/gruporuiz/tripetl/internal/errors"
	"github.com/gruporuiz/tripetl/internal/etl"
	"github.com/gruporuiz/tripetl/pkg/event"
)

const rawExport = `[
  {
    "id_viaje": "V-1001",
    "fecha_viaje": "2024-03-15",
    "hora_salida_programada": "08:00",
    "hora_llegada_real": "09:10",
    "origen_ciudad": "madrid",
    "destino_ciudad": "sevilla",
    "pais_operacion": "ES",
    "numero_viajeros": "Cuarenta",
    "distancia_km": "530,5",
    "tiempo_viaje_minutos": 60,
    "tarifa_media_por_viajero_eur": 24.5,
    "marca_autocar": "mercedes-benz",
    "modelo_autocar": null,
    "matricula_autocar": "1234-ABC",
    "tipo_servicio": "regular nacional",
    "incidencia_averia": false,
    "descripcion_averia": null,
    "costo_averia_eur": null,
    "puntuacion_cliente": 7,
    "combustible_consumido_litros": 142.3,
    "id_conductor": "C-77",
    "edad_conductor": 45
  }
]`

type fakeStore struct {
	objects      map[string][]byte
	uploaded     map[string][]byte
	uploadedType map[string]string
	downloadErr  error
	uploadErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:      make(map[string][]byte),
		uploaded:     make(map[string][]byte),
		uploadedType: make(map[string]string),
	}
}

func (s *fakeStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	if s.downloadErr != nil {
		return nil, s.downloadErr
	}
	data, ok := s.objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, object)
	}
	return data, nil
}

func (s *fakeStore) Upload(ctx context.Context, bucket, object, contentType string, data []byte) (int64, error) {
	if s.uploadErr != nil {
		return 0, s.uploadErr
	}
	key := bucket + "/" + object
	s.uploaded[key] = data
	s.uploadedType[key] = contentType
	return int64(len(data)), nil
}

func (s *fakeStore) Close() error { return nil }

type fakeLoader struct {
	loadedURIs []string
	rows       int64
	err        error
}

func (l *fakeLoader) Load(ctx context.Context, sourceURI string) (int64, error) {
	if l.err != nil {
		return 0, l.err
	}
	l.loadedURIs = append(l.loadedURIs, sourceURI)
	return l.rows, nil
}

func (l *fakeLoader) Close() error { return nil }

func newTestJob(store *fakeStore, loader *fakeLoader) *ETLJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	j := NewETLJob(Config{
		RawBucket:       "raw-bucket",
		ProcessedBucket: "processed-bucket",
	}, store, loader, etl.NewPipeline(logger, nil), logger, nil)
	j.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return j
}

func TestETLJob_Run(t *testing.T) {
	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte(rawExport)
	loader := &fakeLoader{rows: 1}
	j := newTestJob(store, loader)

	result, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	wantObject := "transportation_data_transformed_20240315103000.csv"
	if result.ArchiveObject != wantObject {
		t.Errorf("ArchiveObject = %q, want %q", result.ArchiveObject, wantObject)
	}
	if result.ArchiveURI != "gs://processed-bucket/"+wantObject {
		t.Errorf("ArchiveURI = %q", result.ArchiveURI)
	}
	if result.RowsTransformed != 1 {
		t.Errorf("RowsTransformed = %d, want 1", result.RowsTransformed)
	}
	if result.RowsLoaded != 1 {
		t.Errorf("RowsLoaded = %d, want 1", result.RowsLoaded)
	}

	key := "processed-bucket/" + wantObject
	if store.uploadedType[key] != "text/csv" {
		t.Errorf("archive content type = %q, want text/csv", store.uploadedType[key])
	}

	rows, err := csv.NewReader(strings.NewReader(string(store.uploaded[key]))).ReadAll()
	if err != nil {
		t.Fatalf("archived CSV does not parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("archived CSV has %d rows, want header + 1", len(rows))
	}
	byCol := make(map[string]string)
	for i, col := range rows[0] {
		byCol[col] = rows[1][i]
	}
	if byCol["numero_viajeros"] != "40" {
		t.Errorf("numero_viajeros cell = %q, want \"40\" (Cuarenta mapped)", byCol["numero_viajeros"])
	}
	if byCol["pais_operacion"] != "España" {
		t.Errorf("pais_operacion cell = %q, want España", byCol["pais_operacion"])
	}
	if byCol["puntuacion_cliente"] != "5" {
		t.Errorf("puntuacion_cliente cell = %q, want \"5\" (clamped)", byCol["puntuacion_cliente"])
	}
	if byCol["retraso_minutos"] != "10" {
		t.Errorf("retraso_minutos cell = %q, want \"10\"", byCol["retraso_minutos"])
	}

	if len(loader.loadedURIs) != 1 || loader.loadedURIs[0] != result.ArchiveURI {
		t.Errorf("loader received %v, want [%s]", loader.loadedURIs, result.ArchiveURI)
	}
}

func TestETLJob_DownloadFailureIsExtractError(t *testing.T) {
	store := newFakeStore()
	store.downloadErr = errors.New("bucket unreachable")
	j := newTestJob(store, &fakeLoader{})

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var extractErr *apperrors.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Run() error = %T (%v), want *ExtractError", err, err)
	}
	if len(store.uploaded) != 0 {
		t.Error("nothing should be archived when extraction fails")
	}
}

func TestETLJob_UndecodableObjectIsExtractError(t *testing.T) {
	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte("not json at all")
	j := newTestJob(store, &fakeLoader{})

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var extractErr *apperrors.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Run() error = %T (%v), want *ExtractError", err, err)
	}
}

func TestETLJob_EmptyExportIsExtractError(t *testing.T) {
	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte(`[]`)
	loader := &fakeLoader{}
	j := newTestJob(store, loader)

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var extractErr *apperrors.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("Run() error = %T (%v), want *ExtractError", err, err)
	}
	if !errors.Is(err, apperrors.ErrEmptyRecordSet) {
		t.Errorf("Run() error = %v, want ErrEmptyRecordSet", err)
	}
	if len(store.uploaded) != 0 || len(loader.loadedURIs) != 0 {
		t.Error("nothing should be archived or loaded for an empty export")
	}
}

func TestETLJob_LogsSourceURI(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte(rawExport)
	j := NewETLJob(Config{
		RawBucket:       "raw-bucket",
		ProcessedBucket: "processed-bucket",
	}, store, &fakeLoader{rows: 1}, etl.NewPipeline(logger, nil), logger, nil)

	if _, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"}); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}
	if !strings.Contains(buf.String(), "gs://raw-bucket/export.json") {
		t.Error("processing log should carry the gs:// URI of the source object")
	}
}

func TestETLJob_TransformFailureAborts(t *testing.T) {
	store := newFakeStore()
	// edad_conductor is absent across the whole set
	store.objects["raw-bucket/export.json"] = []byte(`[{"id_viaje": "V-1"}]`)
	loader := &fakeLoader{}
	j := newTestJob(store, loader)

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var transformErr *apperrors.TransformError
	if !errors.As(err, &transformErr) {
		t.Fatalf("Run() error = %T (%v), want *TransformError", err, err)
	}
	if len(store.uploaded) != 0 {
		t.Error("nothing should be archived when the transform aborts")
	}
	if len(loader.loadedURIs) != 0 {
		t.Error("nothing should be loaded when the transform aborts")
	}
}

func TestETLJob_ArchiveFailureSkipsLoad(t *testing.T) {
	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte(rawExport)
	store.uploadErr = &apperrors.StorageError{Operation: "upload", Bucket: "processed-bucket", Err: errors.New("quota")}
	loader := &fakeLoader{}
	j := newTestJob(store, loader)

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var storageErr *apperrors.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("Run() error = %T (%v), want *StorageError", err, err)
	}
	if len(loader.loadedURIs) != 0 {
		t.Error("load must not run after a failed archive write")
	}
}

func TestETLJob_LoadFailureLeavesArchive(t *testing.T) {
	store := newFakeStore()
	store.objects["raw-bucket/export.json"] = []byte(rawExport)
	loader := &fakeLoader{err: &apperrors.LoadError{SourceURI: "gs://x", Table: "t", Err: errors.New("schema drift")}}
	j := newTestJob(store, loader)

	_, err := j.Run(context.Background(), &event.StorageEvent{Name: "export.json", Bucket: "raw-bucket"})
	var loadErr *apperrors.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Run() error = %T (%v), want *LoadError", err, err)
	}
	// Known inconsistency window: the archive object is not rolled back.
	if len(store.uploaded) != 1 {
		t.Errorf("archive objects after failed load = %d, want 1 (orphan left in place)", len(store.uploaded))
	}
}
