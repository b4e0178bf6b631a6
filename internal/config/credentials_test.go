package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Unexpected error writing credentials: %s", err)
	}
	return path
}

func TestLoadCredentials(t *testing.T) {
	t.Parallel()

	path := writeCredentials(t, `username: land_registry
password: hunter2
url: db.internal
port: 5433
name: property_prices
`)

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("Unexpected error from LoadCredentials: %s", err)
	}

	expected := Credentials{
		Username: "land_registry",
		Password: "hunter2",
		URL:      "db.internal",
		Port:     5433,
		Name:     "property_prices",
	}
	if *creds != expected {
		t.Errorf("Incorrect credentials; expected %+v, was %+v", expected, *creds)
	}

	dsn := "host=db.internal port=5433 user=land_registry password=hunter2 dbname=property_prices sslmode=disable"
	if creds.DSN() != dsn {
		t.Errorf("Incorrect DSN; expected %q, was %q", dsn, creds.DSN())
	}
}

func TestLoadCredentials_DefaultPort(t *testing.T) {
	t.Parallel()

	path := writeCredentials(t, `username: land_registry
password: hunter2
url: db.internal
name: property_prices
`)

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("Unexpected error from LoadCredentials: %s", err)
	}
	if creds.Port != 5432 {
		t.Errorf("Incorrect port; expected %d, was %d", 5432, creds.Port)
	}
}

func TestLoadCredentials_MissingFields(t *testing.T) {
	t.Parallel()

	path := writeCredentials(t, `username: land_registry
url: db.internal
name: property_prices
`)

	if _, err := LoadCredentials(path); err == nil {
		t.Error("Expected error, got nil error")
	}
}

func TestLoadCredentials_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadCredentials(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error, got nil error")
	}
}

func TestLoadCredentials_Malformed(t *testing.T) {
	t.Parallel()

	path := writeCredentials(t, "{{not yaml")

	if _, err := LoadCredentials(path); err == nil {
		t.Error("Expected error, got nil error")
	}
}
