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

// Hooks are optional callbacks invoked around a worker's lifecycle and
// around each task it runs. A zero Hooks runs every callback as a no-op.
// The builder-level taskpool.Hooks has the identical shape and is
// converted into this type when a Core is built.
type Hooks struct {
	Name       func(workerID int) string
	OnStart    func(workerID int)
	OnStop     func(workerID int)
	OnPark     func(workerID int)
	OnUnpark   func(workerID int)
	BeforeWork func(workerID int)
	AfterWork  func(workerID int)
}

func (h Hooks) name(id int) string {
	if h.Name == nil {
		return ""
	}
	return h.Name(id)
}

func (h Hooks) onStart(id int) {
	if h.OnStart != nil {
		h.OnStart(id)
	}
}

func (h Hooks) onStop(id int) {
	if h.OnStop != nil {
		h.OnStop(id)
	}
}

func (h Hooks) onPark(id int) {
	if h.OnPark != nil {
		h.OnPark(id)
	}
}

func (h Hooks) onUnpark(id int) {
	if h.OnUnpark != nil {
		h.OnUnpark(id)
	}
}

func (h Hooks) beforeWork(id int) {
	if h.BeforeWork != nil {
		h.BeforeWork(id)
	}
}

func (h Hooks) afterWork(id int) {
	if h.AfterWork != nil {
		h.AfterWork(id)
	}
}
