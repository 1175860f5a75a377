package model

import (
	"os"
	"path/filepath"
	"testing"
)

const artifact = `{
  "model_version": "1.0.0",
  "intercept": 1435.2,
  "numeric": {
    "temp": 3.1, "rain_1h": -45.0, "snow_1h": -60.0, "clouds_all": -0.8,
    "hour": 12.4, "day_of_week": -30.2, "month": 4.7, "is_rush_hour": 812.0
  },
  "holiday": {"None": 120.5, "Thanksgiving Day": -800.1, "_unknown": -350.0},
  "weather_main": {"Clouds": 10.2, "Clear": 33.0, "Rain": -95.4, "_unknown": 0}
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic_model.json")
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Version() != "1.0.0" {
		t.Fatalf("version = %q", p.Version())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadIncompleteArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "incomplete.json")
	if err := os.WriteFile(path, []byte(`{"model_version":"1.0.0"}`), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
