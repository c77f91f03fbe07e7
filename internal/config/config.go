// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	carbondlog "github.com/carbond/carbond/internal/log"
)

// CheckpointConfig configures the reference drain target in
// internal/devpersister.
type CheckpointConfig struct {
	Enabled  bool   `json:"enabled"`
	Driver   string `json:"driver"`
	DSN      string `json:"dsn"`
	Interval string `json:"interval"`
}

// AlertRule is one threshold rule evaluated by internal/alerting.
type AlertRule struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Expr   string `json:"expr"`
}

type AlertingConfig struct {
	Rules []AlertRule `json:"rules"`
}

type ProgramConfig struct {
	LineTCPPort   int    `json:"lineTcpPort"`
	UDPPort       int    `json:"udpPort"`
	PickleTCPPort int    `json:"pickleTcpPort"`
	QueryTCPPort  int    `json:"queryTcpPort"`
	MaxCacheSize  int64  `json:"maxCacheSize"`
	Interface     string `json:"interface"`
	LogLevel      string `json:"logLevel"`
	LogDateTime   bool   `json:"logDateTime"`
	MetricsAddr   string `json:"metricsAddr"`

	Checkpoints CheckpointConfig `json:"checkpoints"`
	Alerting    AlertingConfig   `json:"alerting"`
}

var Keys = ProgramConfig{
	LineTCPPort:   2003,
	UDPPort:       2003,
	PickleTCPPort: 2004,
	QueryTCPPort:  2005,
	MaxCacheSize:  0,
	Interface:     "0.0.0.0",
	LogLevel:      "info",
	LogDateTime:   false,
	MetricsAddr:   ":9109",
}

// Init loads and validates a JSON config file, overlaying it onto the
// defaults in Keys. A missing file is not an error: the defaults apply.
func Init(flagConfigFile string) {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) {
			carbondlog.Fatal(err)
		}
		return
	}

	Validate(configSchema, raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		carbondlog.Fatal(err)
	}
}
