// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package devpersister

import (
	"context"
	"time"

	carbondlog "github.com/carbond/carbond/internal/log"
)

type ctxKey string

const beginKey ctxKey = "begin"

// Hooks satisfies the sqlhooks.Hooks interface, logging every drain query
// at debug level.
type Hooks struct{}

func (h *Hooks) Before(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	carbondlog.Debug("SQL query ", query, " ", args)
	return context.WithValue(ctx, beginKey, time.Now()), nil
}

func (h *Hooks) After(ctx context.Context, query string, args ...interface{}) (context.Context, error) {
	begin := ctx.Value(beginKey).(time.Time)
	carbondlog.Debug("Took: ", time.Since(begin))
	return ctx, nil
}
