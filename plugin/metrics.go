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
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Notice reasons used as the "reason" label.
const (
	reasonUnsupportedLanguage = "unsupported_language"
	reasonSupportNotFound     = "support_not_found"
)

// Metrics counts what the plugin did with the problems it was given.
type Metrics struct {
	ProblemsOpened  *prometheus.CounterVec
	Notices         *prometheus.CounterVec
	ProjectsCreated *prometheus.CounterVec
	ProjectFailures *prometheus.CounterVec
	Errors          prometheus.Counter
	Pending         prometheus.GaugeFunc
}

// NewMetrics registers the plugin collectors on reg. Collectors already
// registered by another plugin instance are shared.
func NewMetrics(reg prometheus.Registerer, namespace string, pending func() float64) *Metrics {
	m := &Metrics{
		ProblemsOpened: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "problems_opened_total",
			Help:      "Problem statements received from the host.",
		}, []string{"language"})),
		Notices: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Problems for which only a notice was shown.",
		}, []string{"reason"})),
		ProjectsCreated: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projects_created_total",
			Help:      "Projects generated.",
		}, []string{"language"})),
		ProjectFailures: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "project_failures_total",
			Help:      "Projects that could not be generated.",
		}, []string{"language"})),
		Errors: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Errors reported to the user.",
		})),
	}
	if pending != nil {
		m.Pending = register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "display_pending_tasks",
			Help:      "Tasks waiting for the display loop.",
		}, pending))
	}
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
