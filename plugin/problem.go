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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/srediag/arena-coder/adapter"
	"github.com/srediag/arena-coder/api"
	"github.com/srediag/arena-coder/pkg/audit"
	"github.com/srediag/arena-coder/pkg/languages"
	"github.com/srediag/arena-coder/pkg/transform"
)

// Messages shown in the log area.
const (
	msgSending          = "Sending problem statement to the editor"
	msgUnsupported      = "arena-coder does not support the %s programming language.\nSwitch to C++, Java, C# or Python to have a project generated."
	msgSupportNotFound  = "No plugin support for the %s programming language found.\nAdd a definition for it to the languages file and reopen the problem."
	msgProjectAvailable = "The submission is available in the file %s"
	msgProjectFailed    = "The project could not be generated"
)

// SetProblemComponent generates a project for the problem the host opened.
// Unsupported languages only produce a notice.
func (b *Bridge) SetProblemComponent(component api.ProblemComponent, language api.Language, renderer api.Renderer) {
	ctx, span := b.otel.StartSpan(context.Background(), "SetProblemComponent",
		attribute.String("language", language.Name),
		attribute.String("class", component.ClassName()))
	err := b.openProblem(ctx, component, language, renderer)
	adapter.EndSpan(span, err)
}

func (b *Bridge) openProblem(ctx context.Context, component api.ProblemComponent, language api.Language, renderer api.Renderer) error {
	session := uuid.NewString()
	b.beat()
	b.metrics.ProblemsOpened.WithLabelValues(language.Name).Inc()
	b.event(audit.EventProblemOpened, map[string]interface{}{
		"session":  session,
		"class":    component.ClassName(),
		"language": language.Name,
	})

	if err := b.area.Reset(ctx); err != nil {
		return err
	}
	b.show(ctx, msgSending)

	name, ok := languages.NameFor(language)
	if !ok {
		b.setSupport(nil, "")
		b.notice(ctx, session, reasonUnsupportedLanguage, audit.EventLanguageUnsupported, fmt.Sprintf(msgUnsupported, language.Name))
		return nil
	}

	support, err := b.registry.Create(name)
	if err != nil {
		b.setSupport(nil, "")
		if errors.Is(err, languages.ErrSupportNotFound) {
			b.notice(ctx, session, reasonSupportNotFound, audit.EventPluginNotFound, fmt.Sprintf(msgSupportNotFound, language.Name))
			return nil
		}
		b.report(ctx, err)
		return err
	}
	b.setSupport(support, name)

	statement, err := transform.ToStatement(component, language, renderer)
	if err != nil {
		b.report(ctx, err)
		return err
	}

	return b.dispatcher.Run(ctx, func(ctx context.Context) {
		start := time.Now()
		project, err := support.CreateProject(ctx, statement)
		if err == nil && project == nil {
			err = languages.ErrNoProject
		}
		b.otel.RecordGeneration(ctx, name, time.Since(start), err)
		if err != nil {
			b.metrics.ProjectFailures.WithLabelValues(name).Inc()
			b.event(audit.EventProjectFailed, map[string]interface{}{
				"session":  session,
				"language": name,
				"error":    err.Error(),
			})
			b.log.Errorf("generate %s project: %v", name, err)
			b.show(ctx, msgProjectFailed)
			return
		}
		b.metrics.ProjectsCreated.WithLabelValues(name).Inc()
		b.event(audit.EventProjectCreated, map[string]interface{}{
			"session":  session,
			"language": name,
			"dir":      project.Dir,
		})
		b.show(ctx, fmt.Sprintf(msgProjectAvailable, project.Description))
	})
}

func (b *Bridge) notice(ctx context.Context, session, reason, event, message string) {
	b.metrics.Notices.WithLabelValues(reason).Inc()
	b.event(event, map[string]interface{}{"session": session})
	b.show(ctx, message)
}

func (b *Bridge) show(ctx context.Context, message string) {
	if err := b.area.Show(ctx, message); err != nil {
		b.log.Warnf("show %q: %v", message, err)
	}
}
