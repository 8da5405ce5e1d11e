// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"

	"github.com/ghodss/yaml"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/spf13/cobra"
)

var showconfCmd = &cobra.Command{
	Use:     "showconf",
	Aliases: []string{"showconfig"},
	Short:   "List out the configuration options",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cancelCtx, err := readConfig()
		if err != nil {
			return err
		}
		defer cancelCtx()

		// Registers the plugin keys, so their defaults are included
		_ = getOrchestrator()

		b, err := yaml.Marshal(config.GetConfig())
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showconfCmd)
}
