// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package sched

import "time"

// Stats receives scheduling events. A Core is built with a Stats
// implementation, the same way the original worker pool was built with a
// *metrics.ConcurrentStatistics: callers that don't care pass NoopStats{}.
type Stats interface {
	WorkerStarted()
	WorkerStopped()
	TaskSubmitted()
	TaskStolen()
	TaskRejected()
	TaskPanicked()
	WaitDuration(d time.Duration)
	RunDuration(d time.Duration)
}

// NoopStats discards every event.
type NoopStats struct{}

func (NoopStats) WorkerStarted()          {}
func (NoopStats) WorkerStopped()          {}
func (NoopStats) TaskSubmitted()          {}
func (NoopStats) TaskStolen()             {}
func (NoopStats) TaskRejected()           {}
func (NoopStats) TaskPanicked()           {}
func (NoopStats) WaitDuration(time.Duration) {}
func (NoopStats) RunDuration(time.Duration)  {}
