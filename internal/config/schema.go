// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

// configSchema validates the JSON config file before it is decoded into
// Keys.
var configSchema = `
	{
  "type": "object",
  "properties": {
    "lineTcpPort": {
      "description": "Port the line-protocol TCP listener binds to.",
      "type": "integer"
    },
    "udpPort": {
      "description": "Port the line-protocol UDP listener binds to.",
      "type": "integer"
    },
    "pickleTcpPort": {
      "description": "Port the Batched listener binds to.",
      "type": "integer"
    },
    "queryTcpPort": {
      "description": "Port the cache query listener binds to.",
      "type": "integer"
    },
    "maxCacheSize": {
      "description": "Soft datapoint-count watermark that triggers client pause/resume flow control. 0 disables the watermark.",
      "type": "integer"
    },
    "interface": {
      "description": "Address to bind all listeners to, e.g. '0.0.0.0' or '127.0.0.1'.",
      "type": "string"
    },
    "logLevel": {
      "description": "One of debug, info, warn, err, crit.",
      "type": "string"
    },
    "logDateTime": {
      "description": "Prefix log lines with a timestamp.",
      "type": "boolean"
    },
    "metricsAddr": {
      "description": "Address the Prometheus /metrics and /healthz endpoints bind to.",
      "type": "string"
    },
    "checkpoints": {
      "description": "Reference drain target for the cache, kept separate from production archival.",
      "type": "object",
      "properties": {
        "enabled": {
          "type": "boolean"
        },
        "driver": {
          "description": "Accepted but not read: the reference drain target always opens sqlite3.",
          "type": "string"
        },
        "dsn": {
          "type": "string"
        },
        "interval": {
          "description": "time.ParseDuration()-parsable drain period.",
          "type": "string"
        }
      }
    },
    "alerting": {
      "description": "Threshold rules evaluated periodically against cached series.",
      "type": "object",
      "properties": {
        "rules": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "name": {
                "type": "string"
              },
              "target": {
                "description": "Metric name the rule is evaluated against.",
                "type": "string"
              },
              "expr": {
                "description": "expr-lang boolean expression over last/max/min/mean/name.",
                "type": "string"
              }
            },
            "required": ["name", "target", "expr"]
          }
        }
      }
    }
  }
	}`
