/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package cmd

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"dirpx.dev/dlog/apis/pipeline/pcontext"
)

// logAlarmSink is the composition root's pcontext.AlarmSink: it has no
// transport of its own (spec.md's Non-goals exclude alarm transport), so
// it just logs. Every Alarm is stamped with a fresh correlation id so an
// operator can grep one incident's Alarm out of an otherwise identical
// run's log stream.
type logAlarmSink struct {
	logger *zap.Logger
}

func newLogAlarmSink(logger *zap.Logger) *logAlarmSink {
	return &logAlarmSink{logger: logger}
}

func (s *logAlarmSink) Raise(a pcontext.Alarm) {
	s.logger.Warn("alarm",
		zap.String("correlation_id", uuid.New().String()),
		zap.String("pipeline", a.Pipeline),
		zap.String("component", a.Component),
		zap.String("level", a.Level),
		zap.String("message", a.Message),
		zap.Time("time", a.Time),
	)
}

// runID identifies one dlogctl invocation. Every pipeline built during
// this run logs it (see run.go), so the same pipeline name started twice
// in a row never collides in a correlation-minded log query.
func runID() string {
	return uuid.New().String()
}
