package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ReportSchemaTextV1 = `{
	"type": "record",
	"namespace": "imgcheck",
	"name": "report",
	"fields" : [
		{"name": "run_id", "type": "string"},
		{"name": "started_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "finished_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "base_url", "type": "string"},
		{"name": "known_host", "type": "string"},
		{"name": "strict", "type": "boolean"},
		{"name": "ok", "type": "boolean"},
		{"name": "failure", "type": "string"},
		{"name": "failure_message", "type": "string"},
		{"name": "failure_status", "type": "int"},
		{"name": "summary", "type": {
			"type": "record",
			"name": "summary",
			"fields": [
				{"name": "total", "type": "int"},
				{"name": "populated", "type": "int"},
				{"name": "missing", "type": "int"},
				{"name": "missing_field", "type": "int"},
				{"name": "empty_field", "type": "int"},
				{"name": "known_storage", "type": "int"},
				{"name": "inconsistent", "type": "int"},
				{"name": "probed", "type": "int"},
				{"name": "accessible", "type": "int"},
				{"name": "inaccessible", "type": "int"},
				{"name": "probed_bytes", "type": "long"}
			]
		}},
		{"name": "target_product_id", "type": "int"},
		{"name": "target_fetched", "type": "boolean"},
		{"name": "target_known_storage", "type": "boolean"},
		{"name": "target_failure", "type": "string"}
	]
}`

const FindingSchemaTextV1 = `{
	"type": "record",
	"namespace": "imgcheck",
	"name": "finding",
	"fields" : [
		{"name": "run_id", "type": "string"},
		{"name": "product_id", "type": "int"},
		{"name": "name", "type": "string"},
		{"name": "image_url", "type": ["null", "string"], "default": null},
		{"name": "images", "type": {"type": "array", "items": "string"}},
		{"name": "classification", "type": {
			"type": "enum",
			"name": "classification",
			"symbols": ["MissingField", "EmptyField", "Populated"]
		}},
		{"name": "known_storage", "type": "boolean"},
		{"name": "consistent", "type": "boolean"},
		{"name": "probe_status", "type": ["null", "int"], "default": null},
		{"name": "probe_accessible", "type": ["null", "boolean"], "default": null}
	]
}`

type (
	ReportV1 struct {
		RunID              string    `avro:"run_id"`
		StartedAt          time.Time `avro:"started_at"`
		FinishedAt         time.Time `avro:"finished_at"`
		BaseURL            string    `avro:"base_url"`
		KnownHost          string    `avro:"known_host"`
		Strict             bool      `avro:"strict"`
		OK                 bool      `avro:"ok"`
		Failure            string    `avro:"failure"`
		FailureMessage     string    `avro:"failure_message"`
		FailureStatus      int       `avro:"failure_status"`
		Summary            SummaryV1 `avro:"summary"`
		TargetProductID    int       `avro:"target_product_id"`
		TargetFetched      bool      `avro:"target_fetched"`
		TargetKnownStorage bool      `avro:"target_known_storage"`
		TargetFailure      string    `avro:"target_failure"`
	}

	SummaryV1 struct {
		Total        int   `avro:"total"`
		Populated    int   `avro:"populated"`
		Missing      int   `avro:"missing"`
		MissingField int   `avro:"missing_field"`
		EmptyField   int   `avro:"empty_field"`
		KnownStorage int   `avro:"known_storage"`
		Inconsistent int   `avro:"inconsistent"`
		Probed       int   `avro:"probed"`
		Accessible   int   `avro:"accessible"`
		Inaccessible int   `avro:"inaccessible"`
		ProbedBytes  int64 `avro:"probed_bytes"`
	}

	FindingV1 struct {
		RunID           string   `avro:"run_id"`
		ProductID       int      `avro:"product_id"`
		Name            string   `avro:"name"`
		ImageURL        *string  `avro:"image_url"`
		Images          []string `avro:"images"`
		Classification  string   `avro:"classification"`
		KnownStorage    bool     `avro:"known_storage"`
		Consistent      bool     `avro:"consistent"`
		ProbeStatus     *int     `avro:"probe_status"`
		ProbeAccessible *bool    `avro:"probe_accessible"`
	}
)

func ReportV1Avro() avro.Schema {
	return avro.MustParse(ReportSchemaTextV1)
}

func FindingV1Avro() avro.Schema {
	return avro.MustParse(FindingSchemaTextV1)
}
