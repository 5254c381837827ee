// Package config loads typed application settings from the environment.
//
// Defaults that used to live as literals inside the import pipeline
// (exclusion lists, placeholder contact values, the local phone prefix)
// are surfaced here so tests and deployments can substitute them.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Import holds the tunables of the spreadsheet import pipeline.
type Import struct {
	// Rows whose full-name cell matches one of these values are
	// administrative placeholders, not registrants.
	ExcludedNames []string `envconfig:"IMPORT_EXCLUDED_NAMES" default:"Problème Affectation ANCV,AUTRES CAS,MEMBRES SANS LICENCE,LICENCES A FORMALISER"`

	// License-type value that marks a free (unlicensed) registrant.
	// Empty license-type cells classify the same way.
	FreeLicenseMarker string `envconfig:"IMPORT_FREE_LICENSE_MARKER" default:"libre"`

	// Domain used when synthesizing a placeholder email address.
	PlaceholderEmailDomain string `envconfig:"IMPORT_PLACEHOLDER_EMAIL_DOMAIN" default:"placeholder.com"`

	// International prefix rewritten to the local leading zero.
	PhoneCountryPrefix string `envconfig:"IMPORT_PHONE_COUNTRY_PREFIX" default:"33"`

	// Position label assigned to employees whose sub-category cell is empty.
	DefaultPosition string `envconfig:"IMPORT_DEFAULT_POSITION" default:"Poste non spécifié"`

	// Number of concurrent row workers per import batch.
	Workers int `envconfig:"IMPORT_WORKERS" default:"8"`
}

// Stripe holds payment gateway settings.
type Stripe struct {
	SecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	WebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL    string `envconfig:"STRIPE_SUCCESS_URL" default:"https://yourdomain.com/success"`
	CancelURL     string `envconfig:"STRIPE_CANCEL_URL" default:"https://yourdomain.com/cancel"`
}

// Config is the root application configuration.
type Config struct {
	Import Import
	Stripe Stripe
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if cfg.Import.Workers < 1 {
		cfg.Import.Workers = 1
	}
	return &cfg, nil
}
