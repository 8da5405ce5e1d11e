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

package dcfactory

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/discovery/httpdiscovery"
	"github.com/kaleido-io/firefly-tokenclaims/internal/discovery/sqldiscovery"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/discovery"
)

var pluginsByName = map[string]func() discovery.Plugin{
	(*sqldiscovery.SQLDiscovery)(nil).Name():   func() discovery.Plugin { return &sqldiscovery.SQLDiscovery{} },
	(*httpdiscovery.HTTPDiscovery)(nil).Name(): func() discovery.Plugin { return &httpdiscovery.HTTPDiscovery{} },
}

// InitPrefix registers the configuration of every plugin, each under a section named for the plugin
func InitPrefix(prefix config.Prefix) {
	for name, plugin := range pluginsByName {
		plugin().InitPrefix(prefix.SubPrefix(name))
	}
}

func GetPlugin(ctx context.Context, pluginType string) (discovery.Plugin, error) {
	plugin, ok := pluginsByName[pluginType]
	if !ok {
		return nil, i18n.NewError(ctx, i18n.MsgUnknownDiscoveryPlugin, pluginType)
	}
	return plugin(), nil
}
