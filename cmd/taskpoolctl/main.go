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

// Command taskpoolctl runs a task pool as a standalone process: useful
// to smoke-test a pool config, watch live scheduling stats, and exercise
// the /metrics endpoint before wiring a pool into a real service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/lindb/common/pkg/ltoml"

	"github.com/lindb/taskpool/config"
)

const defaultCfgFile = "./taskpool.toml"

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskpoolctl",
		Short: "Run and inspect a taskpool work-stealing goroutine pool",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("pool config file path, default is %s", defaultCfgFile))

	root.AddCommand(newRunCmd(), newInitConfigCmd())
	return root
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "write a new default pool config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = defaultCfgFile
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			return ltoml.WriteConfig(path, config.NewDefaultPool())
		},
	}
}
