package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Credentials hold the connection parameters of the transaction data source.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	URL      string `yaml:"url"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
}

// LoadCredentials reads and validates the YAML credentials resource.
func LoadCredentials(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read credentials %s", path)
	}

	var creds Credentials
	if err := yaml.Unmarshal(raw, &creds); err != nil {
		return nil, errors.Wrapf(err, "parse credentials %s", path)
	}

	if creds.Username == "" || creds.Password == "" || creds.URL == "" || creds.Name == "" {
		return nil, errors.Errorf("credentials %s: username, password, url and name are required", path)
	}
	if creds.Port == 0 {
		creds.Port = 5432
	}
	return &creds, nil
}

// DSN renders the libpq connection string.
func (c *Credentials) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.URL, c.Port, c.Username, c.Password, c.Name)
}
