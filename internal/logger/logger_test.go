package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestProductionLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("production", &buf)
	log.Info().Str("contract_id", "c-1").Msg("contract created")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}
	if entry["message"] != "contract created" {
		t.Fatalf("message: got=%v", entry["message"])
	}
	if entry["service"] != "contracts" {
		t.Fatalf("service: got=%v", entry["service"])
	}
	if entry["contract_id"] != "c-1" {
		t.Fatalf("contract_id: got=%v", entry["contract_id"])
	}
}

func TestTestLoggerSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("test", &buf)
	log.Info().Msg("noise")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed, got %q", buf.String())
	}
}
