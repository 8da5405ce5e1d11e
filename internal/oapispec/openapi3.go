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

package oapispec

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
)

// SwaggerGen builds the OpenAPI 3 document for the supplied routes, served under the base URL
func SwaggerGen(ctx context.Context, routes []*Route, url string) *openapi3.T {

	doc := &openapi3.T{
		OpenAPI: "3.0.2",
		Servers: openapi3.Servers{
			{URL: url + "/api/v1"},
		},
		Info: &openapi3.Info{
			Title:   "FireFly Token Claims",
			Version: "1.0",
		},
		Paths: openapi3.Paths{},
	}
	opIds := make(map[string]bool)
	for _, route := range routes {
		if route.Name == "" || opIds[route.Name] {
			panic(fmt.Sprintf("Duplicate/invalid name (used as operation ID in swagger): %s", route.Name))
		}
		addRoute(ctx, doc, route)
		opIds[route.Name] = true
	}
	return doc
}

func getPathItem(doc *openapi3.T, path string) *openapi3.PathItem {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	pi, ok := doc.Paths[path]
	if ok {
		return pi
	}
	pi = &openapi3.PathItem{}
	doc.Paths[path] = pi
	return pi
}

func schemaForValue(value interface{}) *openapi3.SchemaRef {
	if value == nil {
		return nil
	}
	schemaRef, _, err := openapi3gen.NewSchemaRefForValue(value)
	if err != nil {
		panic(fmt.Sprintf("invalid schema: %s", err))
	}
	return schemaRef
}

func addInput(op *openapi3.Operation, route *Route) {
	if route.JSONInputValue == nil {
		return
	}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: schemaForValue(route.JSONInputValue()),
				},
			},
		},
	}
}

func addOutput(ctx context.Context, op *openapi3.Operation, route *Route) {
	s := i18n.Expand(ctx, i18n.MsgAPISuccessResponse)
	var schemaRef *openapi3.SchemaRef
	if route.JSONOutputValue != nil {
		schemaRef = schemaForValue(route.JSONOutputValue())
	}
	code := route.JSONOutputCode
	if code == 0 {
		code = http.StatusOK
	}
	response := &openapi3.Response{
		Description: &s,
	}
	if schemaRef != nil {
		response.Content = openapi3.Content{
			"application/json": &openapi3.MediaType{
				Schema: schemaRef,
			},
		}
	}
	op.Responses[strconv.Itoa(code)] = &openapi3.ResponseRef{Value: response}
}

func addParam(ctx context.Context, op *openapi3.Operation, in, name, def, example string, description i18n.MessageKey) {
	var defValue interface{}
	if def != "" {
		defValue = def
	}
	var exampleValue interface{}
	if example != "" {
		exampleValue = example
	}
	op.Parameters = append(op.Parameters, &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			In:          in,
			Name:        name,
			Required:    in == "path",
			Description: i18n.Expand(ctx, description),
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type:    "string",
					Default: defValue,
					Example: exampleValue,
				},
			},
		},
	})
}

func addRoute(ctx context.Context, doc *openapi3.T, route *Route) {
	pi := getPathItem(doc, route.Path)
	op := &openapi3.Operation{
		Description: i18n.Expand(ctx, route.Description),
		OperationID: route.Name,
		Responses:   openapi3.NewResponses(),
	}
	if route.Method != http.MethodGet && route.Method != http.MethodDelete {
		addInput(op, route)
	}
	addOutput(ctx, op, route)
	for _, p := range route.PathParams {
		addParam(ctx, op, "path", p.Name, "", p.Example, p.Description)
	}
	for _, q := range route.QueryParams {
		addParam(ctx, op, "query", q.Name, q.Default, q.Example, q.Description)
	}
	addParam(ctx, op, "header", "Request-Timeout", config.GetString(config.APIRequestTimeout), "", i18n.MsgAPIRequestTimeout)
	switch route.Method {
	case http.MethodGet:
		pi.Get = op
	case http.MethodPut:
		pi.Put = op
	case http.MethodPost:
		pi.Post = op
	case http.MethodDelete:
		pi.Delete = op
	}
}
