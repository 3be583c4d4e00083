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

package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/lindb/common/pkg/ltoml"
)

// Pool mirrors the knobs exposed by taskpool.Builder, loadable from a TOML
// file via github.com/BurntSushi/toml.
type Pool struct {
	Name          string         `env:"NAME" toml:"name"`
	MaxWorkers    int            `env:"MAX_WORKERS" toml:"max-workers"`
	IdleTimeout   ltoml.Duration `env:"IDLE_TIMEOUT" toml:"idle-timeout"`
	LaunchOnBuild bool           `env:"LAUNCH_ON_BUILD" toml:"launch-on-build"`
}

// TOML returns Pool's toml config, in the same documented-default style
// the rest of the config package uses.
func (p *Pool) TOML() string {
	return fmt.Sprintf(`
## Config for the task pool
[pool]
## name identifies this pool in logs and metrics
## Default: %s
## Env: TASKPOOL_POOL_NAME
name = "%s"
## maximum number of concurrently running workers
## Default: %d (runtime.NumCPU())
## Env: TASKPOOL_POOL_MAX_WORKERS
max-workers = %d
## how long an idle worker waits for new work before it terminates
## Default: %s
## Env: TASKPOOL_POOL_IDLE_TIMEOUT
idle-timeout = "%s"
## start every worker immediately instead of lazily on first spawn
## Default: %t
## Env: TASKPOOL_POOL_LAUNCH_ON_BUILD
launch-on-build = %t`,
		p.Name, p.Name,
		p.MaxWorkers, p.MaxWorkers,
		p.IdleTimeout.String(), p.IdleTimeout.String(),
		p.LaunchOnBuild, p.LaunchOnBuild,
	)
}

// NewDefaultPool returns a new default pool config.
func NewDefaultPool() *Pool {
	return &Pool{
		Name:          "default",
		MaxWorkers:    runtime.NumCPU(),
		IdleTimeout:   ltoml.Duration(15 * time.Second),
		LaunchOnBuild: false,
	}
}
