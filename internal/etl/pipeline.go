package etl

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gruporuiz/tripetl/internal/errors"
)

// MetricsCollector is the subset of metrics the pipeline reports.
type MetricsCollector interface {
	ObserveTransformDuration(stage string, seconds float64)
	IncDerivationNulls(column string)
}

// Pipeline applies the cleaning, normalization and derivation stages to a
// record set. Stages run in a fixed order over every record; a fatal error in
// any stage aborts the whole batch with no partial output.
type Pipeline struct {
	logger  *slog.Logger
	metrics MetricsCollector
}

// NewPipeline creates a transform pipeline. metrics may be nil.
func NewPipeline(logger *slog.Logger, metrics MetricsCollector) *Pipeline {
	return &Pipeline{logger: logger, metrics: metrics}
}

// Transform runs all stages over the record set and returns the same-length,
// schema-complete, schema-ordered set. Records are mutated in place.
func (p *Pipeline) Transform(records []Record) ([]Record, error) {
	stages := []struct {
		name string
		fn   func([]Record) error
	}{
		{"defaults", p.fillDefaults},
		{"coercion", p.coerceTypes},
		{"normalization", p.normalizeText},
		{"derivation", p.derive},
		{"projection", p.project},
	}

	for _, stage := range stages {
		start := time.Now()
		if err := stage.fn(records); err != nil {
			return nil, err
		}
		if p.metrics != nil {
			p.metrics.ObserveTransformDuration(stage.name, time.Since(start).Seconds())
		}
		p.logger.Debug("pipeline stage complete", "stage", stage.name, "rows", len(records))
	}

	return records, nil
}

// requireColumns checks set-level column presence before a stage touches them.
func requireColumns(stage string, cols map[string]struct{}, names ...string) error {
	for _, name := range names {
		if _, ok := cols[name]; !ok {
			return &errors.TransformError{
				Stage:  stage,
				Column: name,
				Row:    -1,
				Err:    fmt.Errorf("required column is missing"),
			}
		}
	}
	return nil
}

// fillDefaults substitutes sentinel values for missing data.
func (p *Pipeline) fillDefaults(records []Record) error {
	cols := columnSet(records)
	if err := requireColumns("defaults", cols,
		"pais_operacion", "modelo_autocar", "descripcion_averia",
		"numero_viajeros", "costo_averia_eur"); err != nil {
		return err
	}

	for _, rec := range records {
		fillString(rec, "pais_operacion", UnknownCountry)
		fillString(rec, "modelo_autocar", UnknownModel)
		fillString(rec, "descripcion_averia", NoIncident)
		if isNull(rec["numero_viajeros"]) {
			rec["numero_viajeros"] = int64(0)
		}
		if isNull(rec["costo_averia_eur"]) {
			rec["costo_averia_eur"] = float64(0)
		}
	}
	return nil
}

// coerceTypes parses every typed column into its target representation.
func (p *Pipeline) coerceTypes(records []Record) error {
	cols := columnSet(records)
	if err := requireColumns("coercion", cols,
		"numero_viajeros", "distancia_km", "tarifa_media_por_viajero_eur",
		"incidencia_averia", "puntuacion_cliente", "fecha_viaje",
		"tiempo_viaje_minutos", "combustible_consumido_litros",
		"edad_conductor"); err != nil {
		return err
	}

	for i, rec := range records {
		n, err := passengerCount(rec["numero_viajeros"])
		if err != nil {
			return coercionError("numero_viajeros", i, err)
		}
		rec["numero_viajeros"] = n

		for _, col := range []string{"distancia_km", "tarifa_media_por_viajero_eur", "combustible_consumido_litros"} {
			if isNull(rec[col]) {
				rec[col] = nil
				continue
			}
			f, err := asFloat(rec[col])
			if err != nil {
				return coercionError(col, i, err)
			}
			rec[col] = f
		}

		rec["incidencia_averia"] = truthy(rec["incidencia_averia"])
		rec["puntuacion_cliente"] = clampScore(rec["puntuacion_cliente"])

		if isNull(rec["fecha_viaje"]) {
			rec["fecha_viaje"] = nil
		} else {
			d, err := parseDate(asString(rec["fecha_viaje"]))
			if err != nil {
				return coercionError("fecha_viaje", i, err)
			}
			rec["fecha_viaje"] = d
		}

		for _, col := range []string{"tiempo_viaje_minutos", "edad_conductor"} {
			n, err := asInt(rec[col])
			if err != nil {
				return coercionError(col, i, err)
			}
			rec[col] = n
		}

		f, err := asFloat(rec["costo_averia_eur"])
		if err != nil {
			return coercionError("costo_averia_eur", i, err)
		}
		rec["costo_averia_eur"] = f
	}
	return nil
}

// normalizeText canonicalizes the country column and title-cases the
// free-text descriptors.
func (p *Pipeline) normalizeText(records []Record) error {
	cols := columnSet(records)
	titled := []string{"marca_autocar", "modelo_autocar", "origen_ciudad", "destino_ciudad", "tipo_servicio"}
	if err := requireColumns("normalization", cols, append([]string{"pais_operacion"}, titled...)...); err != nil {
		return err
	}

	for _, rec := range records {
		rec["pais_operacion"] = NormalizeCountry(asString(rec["pais_operacion"]))
		for _, col := range titled {
			rec[col] = titleCase(asString(rec[col]))
		}
	}
	return nil
}

// derive computes retraso_minutos and velocidad_media_kmh for every record.
// Unlike the coercion stage, failures here degrade to null instead of
// aborting the batch.
func (p *Pipeline) derive(records []Record) error {
	for i, rec := range records {
		travel, _ := rec["tiempo_viaje_minutos"].(int64)

		rec["retraso_minutos"] = nil
		scheduled, schedOK := rec["hora_salida_programada"].(string)
		actual, actOK := rec["hora_llegada_real"].(string)
		if schedOK && actOK {
			delay, err := Delay(scheduled, actual, travel)
			if err != nil {
				p.logger.Warn("could not compute delay",
					"row", i,
					"scheduled", scheduled,
					"actual", actual,
					"travel_minutes", travel,
					"error", err,
				)
			} else {
				rec["retraso_minutos"] = delay
			}
		}
		if rec["retraso_minutos"] == nil && p.metrics != nil {
			p.metrics.IncDerivationNulls("retraso_minutos")
		}

		rec["velocidad_media_kmh"] = nil
		if dist, ok := rec["distancia_km"].(float64); ok {
			if speed := AverageSpeed(dist, travel); speed != nil {
				rec["velocidad_media_kmh"] = *speed
			}
		}
		if rec["velocidad_media_kmh"] == nil && p.metrics != nil {
			p.metrics.IncDerivationNulls("velocidad_media_kmh")
		}
	}
	return nil
}

// project reorders every record onto the fixed table schema. Any schema
// column absent from the whole set aborts the batch.
func (p *Pipeline) project(records []Record) error {
	cols := columnSet(records)
	if err := requireColumns("projection", cols, Columns...); err != nil {
		return err
	}

	for i, rec := range records {
		projected := make(Record, len(Columns))
		for _, col := range Columns {
			projected[col] = rec[col]
		}
		records[i] = projected
	}
	return nil
}

func coercionError(column string, row int, err error) error {
	return &errors.TransformError{Stage: "coercion", Column: column, Row: row, Err: err}
}

// passengerCount coerces numero_viajeros: the one known spelled-out literal
// maps explicitly, absent means zero, and any other text must be numeric.
func passengerCount(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case string:
		if t == PassengersInWordsES {
			return 40, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a passenger count: %q", t)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("not a passenger count: %v (%T)", v, v)
	}
}

// clampScore parses puntuacion_cliente, treating anything unparseable as 0,
// then clips the result into the inclusive [1,5] range.
func clampScore(v any) int64 {
	var score int64
	switch t := v.(type) {
	case int64:
		score = t
	case float64:
		score = int64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			score = int64(f)
		}
	}
	if score < 1 {
		return 1
	}
	if score > 5 {
		return 5
	}
	return score
}

// isNull reports whether a raw value counts as missing.
func isNull(v any) bool {
	return v == nil
}

// fillString substitutes a default for a missing text value. Empty strings are
// present values and are kept as-is.
func fillString(rec Record, col, def string) {
	if isNull(rec[col]) {
		rec[col] = def
	}
}
