// Package etl implements the transform pipeline for bus trip exports.
//
// The pipeline takes the loosely-typed rows of a JSON export, applies the
// cleaning rules the analytical table expects (missing-value defaults, type
// coercion, text normalization), derives the delay and average-speed columns,
// and projects the result onto the fixed table schema.
package etl

// Columns is the exact column order of the analytical table. The archived
// CSV header and the projection both follow it; it is never mutated.
var Columns = []string{
	"id_viaje",
	"fecha_viaje",
	"hora_salida_programada",
	"hora_llegada_real",
	"origen_ciudad",
	"destino_ciudad",
	"pais_operacion",
	"numero_viajeros",
	"distancia_km",
	"tiempo_viaje_minutos",
	"tarifa_media_por_viajero_eur",
	"marca_autocar",
	"modelo_autocar",
	"matricula_autocar",
	"tipo_servicio",
	"incidencia_averia",
	"descripcion_averia",
	"costo_averia_eur",
	"puntuacion_cliente",
	"combustible_consumido_litros",
	"id_conductor",
	"edad_conductor",
	"retraso_minutos",
	"velocidad_media_kmh",
}

// Sentinel values substituted for missing data.
const (
	UnknownCountry      = "Desconocido"
	UnknownModel        = "N/A"
	NoIncident          = "Sin Avería"
	PassengersInWordsES = "Cuarenta" // one known non-numeric literal in the exports
)
