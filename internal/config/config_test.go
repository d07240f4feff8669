package config_test

import (
	"testing"
	"time"

	"CareNotifier/internal/config"
	"github.com/stretchr/testify/assert"
)

func validConfig() config.Config {
	return config.Config{
		Storage:  config.StorageConfig{Driver: config.StoragePostgres},
		Database: config.DatabaseConfig{DSN: "postgres://localhost/notifier"},
		Mongo:    config.MongoConfig{URI: "mongodb://localhost:27017", Database: "carenotifier", Collection: "notifications"},
		Push:     config.PushConfig{Timeout: 10 * time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	firebase := config.FirebaseConfig{ProjectID: "care", CredentialsFile: "sa.json"}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr bool
	}{
		{name: "postgres default", mutate: func(c *config.Config) {}},
		{name: "postgres without dsn", mutate: func(c *config.Config) { c.Database.DSN = "" }, wantErr: true},
		{name: "mongo", mutate: func(c *config.Config) { c.Storage.Driver = config.StorageMongo }},
		{name: "mongo without uri", mutate: func(c *config.Config) {
			c.Storage.Driver = config.StorageMongo
			c.Mongo.URI = ""
		}, wantErr: true},
		{name: "firestore without credentials", mutate: func(c *config.Config) {
			c.Storage.Driver = config.StorageFirestore
		}, wantErr: true},
		{name: "firestore", mutate: func(c *config.Config) {
			c.Storage.Driver = config.StorageFirestore
			c.Firebase = firebase
		}},
		{name: "unknown driver", mutate: func(c *config.Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "push without credentials", mutate: func(c *config.Config) { c.Push.Enabled = true }, wantErr: true},
		{name: "push with base64 credentials", mutate: func(c *config.Config) {
			c.Push.Enabled = true
			c.Firebase = config.FirebaseConfig{ProjectID: "care", CredentialsBase64: "e30="}
		}},
		{name: "negative push timeout", mutate: func(c *config.Config) { c.Push.Timeout = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFirebaseConfig_Configured(t *testing.T) {
	assert.False(t, config.FirebaseConfig{}.Configured())
	assert.False(t, config.FirebaseConfig{ProjectID: "care"}.Configured())
	assert.False(t, config.FirebaseConfig{CredentialsFile: "sa.json"}.Configured())
	assert.True(t, config.FirebaseConfig{ProjectID: "care", CredentialsFile: "sa.json"}.Configured())
}

func TestHTTPConfig_GetConnectionString(t *testing.T) {
	c := config.HTTPConfig{Host: "0.0.0.0", Port: "8080"}
	assert.Equal(t, "0.0.0.0:8080", c.GetConnectionString())
}
