package etl

import (
	"encoding/csv"
	"strings"
	"testing"
)

func TestRenderCSV(t *testing.T) {
	records := []Record{
		{
			"id_viaje":                     "V-1",
			"fecha_viaje":                  "2024-03-15",
			"hora_salida_programada":       "08:00",
			"hora_llegada_real":            "09:10",
			"origen_ciudad":                "Madrid",
			"destino_ciudad":               "Sevilla",
			"pais_operacion":               "España",
			"numero_viajeros":              int64(38),
			"distancia_km":                 530.5,
			"tiempo_viaje_minutos":         int64(60),
			"tarifa_media_por_viajero_eur": 24.5,
			"marca_autocar":                "Mercedes-Benz",
			"modelo_autocar":               "Tourismo",
			"matricula_autocar":            "1234-ABC",
			"tipo_servicio":                "Regular Nacional",
			"incidencia_averia":            false,
			"descripcion_averia":           "Sin Avería",
			"costo_averia_eur":             0.0,
			"puntuacion_cliente":           int64(4),
			"combustible_consumido_litros": 142.3,
			"id_conductor":                 "C-77",
			"edad_conductor":               int64(45),
			"retraso_minutos":              int64(10),
			"velocidad_media_kmh":          nil,
		},
	}

	data, err := RenderCSV(records)
	if err != nil {
		t.Fatalf("RenderCSV() error = %v, want nil", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("rendered CSV does not parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rendered CSV has %d rows, want header + 1", len(rows))
	}

	header := rows[0]
	if len(header) != len(Columns) {
		t.Fatalf("header has %d columns, want %d", len(header), len(Columns))
	}
	for i, col := range Columns {
		if header[i] != col {
			t.Errorf("header[%d] = %q, want %q", i, header[i], col)
		}
	}

	row := rows[1]
	byCol := make(map[string]string, len(header))
	for i, col := range header {
		byCol[col] = row[i]
	}

	if byCol["numero_viajeros"] != "38" {
		t.Errorf("numero_viajeros cell = %q, want \"38\"", byCol["numero_viajeros"])
	}
	if byCol["distancia_km"] != "530.5" {
		t.Errorf("distancia_km cell = %q, want \"530.5\"", byCol["distancia_km"])
	}
	if byCol["incidencia_averia"] != "false" {
		t.Errorf("incidencia_averia cell = %q, want \"false\"", byCol["incidencia_averia"])
	}
	if byCol["velocidad_media_kmh"] != "" {
		t.Errorf("null cell rendered as %q, want empty string", byCol["velocidad_media_kmh"])
	}
}

func TestRenderCSV_EmptyRecordSet(t *testing.T) {
	data, err := RenderCSV(nil)
	if err != nil {
		t.Fatalf("RenderCSV() error = %v, want nil", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Errorf("empty record set rendered %d lines, want header only", len(lines))
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{name: "nil", input: nil, want: ""},
		{name: "string", input: "Madrid", want: "Madrid"},
		{name: "int", input: int64(42), want: "42"},
		{name: "float drops trailing zeros", input: 120.0, want: "120"},
		{name: "float keeps precision", input: 19.95, want: "19.95"},
		{name: "bool", input: true, want: "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.input); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
