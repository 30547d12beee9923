/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package plugin

import (
	"context"
	"fmt"

	"github.com/srediag/arena-coder/internal/logging"
	"github.com/srediag/arena-coder/pkg/display"
)

// Reporter shows an unexpected error to the user.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, err error)

// Report calls f(ctx, err).
func (f ReporterFunc) Report(ctx context.Context, err error) { f(ctx, err) }

// areaReporter logs the error and writes it to the log area.
type areaReporter struct {
	area *display.LogArea
	log  *logging.Logger
}

func (r areaReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	r.log.Errorf("%v", err)
	if showErr := r.area.Show(ctx, fmt.Sprintf("An error occurred: %v", err)); showErr != nil {
		r.log.Warnf("could not show error: %v", showErr)
	}
}
