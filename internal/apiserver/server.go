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

package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"time"

	"github.com/docker/go-units"
	"github.com/ghodss/yaml"
	"github.com/gorilla/mux"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/metrics"
	"github.com/kaleido-io/firefly-tokenclaims/internal/oapispec"
	"github.com/kaleido-io/firefly-tokenclaims/internal/orchestrator"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ffcodeExtractor = regexp.MustCompile(`^(FF\d+):`)

var (
	apiConfigPrefix     = config.NewPluginConfig("http")
	metricsConfigPrefix = config.NewPluginConfig("metrics")
)

// Server is the external interface for the API Server
type Server interface {
	Serve(ctx context.Context, o orchestrator.Orchestrator) error
}

type apiServer struct {
	apiTimeout     time.Duration
	maxRequestSize int64
	metricsEnabled bool
}

// InitConfig registers the listener options of the API and metrics servers. Call after the config is read.
func InitConfig() {
	initHTTPConfPrefix(apiConfigPrefix, 5000)
	initHTTPConfPrefix(metricsConfigPrefix, 6000)
}

func NewAPIServer(ctx context.Context) (Server, error) {
	sizeStr := config.GetString(config.APIMaxRequestSize)
	maxRequestSize, err := units.RAMInBytes(sizeStr)
	if err != nil || maxRequestSize <= 0 {
		return nil, i18n.NewError(ctx, i18n.MsgInvalidRequestSizeLimit, sizeStr)
	}
	return &apiServer{
		apiTimeout:     config.GetDuration(config.APIRequestTimeout),
		maxRequestSize: maxRequestSize,
		metricsEnabled: config.GetBool(config.MetricsEnabled),
	}, nil
}

// Serve is the main entry point for the API Server
func (as *apiServer) Serve(ctx context.Context, o orchestrator.Orchestrator) (err error) {
	httpErrChan := make(chan error, 1)
	metricsErrChan := make(chan error, 1)

	apiHTTPServer, err := newHTTPServer(ctx, "api", wrapCorsIfEnabled(ctx, as.createMuxRouter(o)), httpErrChan, apiConfigPrefix)
	if err != nil {
		return err
	}
	go apiHTTPServer.serveHTTP(ctx)

	if as.metricsEnabled {
		metricsHTTPServer, err := newHTTPServer(ctx, "metrics", as.createMetricsMuxRouter(), metricsErrChan, metricsConfigPrefix)
		if err != nil {
			return err
		}
		go metricsHTTPServer.serveHTTP(ctx)
	}

	return as.waitForServerStop(httpErrChan, metricsErrChan)
}

func (as *apiServer) waitForServerStop(httpErrChan, metricsErrChan chan error) error {
	select {
	case err := <-httpErrChan:
		return err
	case err := <-metricsErrChan:
		return err
	}
}

func (as *apiServer) readInput(req *http.Request, input interface{}) (int, error) {
	ctx := req.Context()
	if req.ContentLength > as.maxRequestSize {
		return http.StatusRequestEntityTooLarge, i18n.NewError(ctx, i18n.MsgRequestTooLarge, as.maxRequestSize)
	}
	// The limit also applies to chunked bodies, where the length is not known up front
	b, err := ioutil.ReadAll(io.LimitReader(req.Body, as.maxRequestSize+1))
	if err != nil {
		return http.StatusBadRequest, i18n.WrapError(ctx, err, i18n.MsgJSONDecodeFailed)
	}
	if int64(len(b)) > as.maxRequestSize {
		return http.StatusRequestEntityTooLarge, i18n.NewError(ctx, i18n.MsgRequestTooLarge, as.maxRequestSize)
	}
	if err := json.Unmarshal(b, input); err != nil {
		return http.StatusBadRequest, i18n.WrapError(ctx, err, i18n.MsgJSONDecodeFailed)
	}
	return 0, nil
}

func (as *apiServer) getParams(req *http.Request, route *oapispec.Route) (queryParams, pathParams map[string]string) {
	queryParams = make(map[string]string)
	pathParams = make(map[string]string)
	if len(route.PathParams) > 0 {
		v := mux.Vars(req)
		for _, pp := range route.PathParams {
			pathParams[pp.Name] = v[pp.Name]
		}
	}
	for _, qp := range route.QueryParams {
		if val := req.URL.Query().Get(qp.Name); val != "" {
			queryParams[qp.Name] = val
		}
	}
	return queryParams, pathParams
}

func (as *apiServer) routeHandler(o orchestrator.Orchestrator, route *oapispec.Route) http.HandlerFunc {
	return as.apiWrapper(func(res http.ResponseWriter, req *http.Request) (int, error) {

		var jsonInput interface{}
		if route.JSONInputValue != nil {
			jsonInput = route.JSONInputValue()
		}
		if jsonInput != nil && req.Method != http.MethodGet && req.Method != http.MethodDelete {
			if status, err := as.readInput(req, jsonInput); err != nil {
				return status, err
			}
		}

		queryParams, pathParams := as.getParams(req, route)
		r := &oapispec.APIRequest{
			Ctx:           req.Context(),
			Or:            o,
			Req:           req,
			PP:            pathParams,
			QP:            queryParams,
			Input:         jsonInput,
			SuccessStatus: http.StatusOK,
		}
		if route.JSONOutputCode != 0 {
			r.SuccessStatus = route.JSONOutputCode
		}
		output, err := route.JSONHandler(r)
		if err != nil {
			return 500, err // replaced by the status hint of the error, where it has one
		}
		return as.handleOutput(req.Context(), res, r.SuccessStatus, output)
	})
}

func (as *apiServer) handleOutput(ctx context.Context, res http.ResponseWriter, status int, output interface{}) (int, error) {
	vOutput := reflect.ValueOf(output)
	outputKind := vOutput.Kind()
	isNil := output == nil || outputKind == reflect.Invalid || (outputKind == reflect.Ptr && vOutput.IsNil())
	if isNil {
		if status != http.StatusNoContent {
			return 404, i18n.NewError(ctx, i18n.Msg404NoResult)
		}
		res.WriteHeader(http.StatusNoContent)
		return status, nil
	}
	b, err := json.Marshal(output)
	if err != nil {
		err = i18n.WrapError(ctx, err, i18n.MsgResponseMarshalError)
		log.L(ctx).Errorf(err.Error())
		return 500, err
	}
	res.Header().Add("Content-Type", "application/json")
	res.WriteHeader(status)
	_, _ = res.Write(b)
	return status, nil
}

// getTimeout applies a server-side timeout to each request, so processing stops once the caller has given up.
// A Request-Timeout header can shorten it, as a number of seconds or a duration string.
func (as *apiServer) getTimeout(req *http.Request) time.Duration {
	reqTimeout := as.apiTimeout
	reqTimeoutHeader := req.Header.Get("Request-Timeout")
	if reqTimeoutHeader != "" {
		customTimeout, err := time.ParseDuration(reqTimeoutHeader)
		if err != nil {
			var secs int64
			secs, err = strconv.ParseInt(reqTimeoutHeader, 10, 64)
			customTimeout = time.Duration(secs) * time.Second
		}
		switch {
		case err != nil || customTimeout <= 0:
			log.L(req.Context()).Warnf("Invalid Request-Timeout header '%s'", reqTimeoutHeader)
		case customTimeout < reqTimeout:
			reqTimeout = customTimeout
		}
	}
	return reqTimeout
}

func (as *apiServer) apiWrapper(handler func(res http.ResponseWriter, req *http.Request) (status int, err error)) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {

		reqTimeout := as.getTimeout(req)
		ctx, cancel := context.WithTimeout(req.Context(), reqTimeout)
		httpReqID := fftypes.ShortID()
		ctx = log.WithLogField(ctx, "httpreq", httpReqID)
		req = req.WithContext(ctx)
		defer cancel()

		l := log.L(ctx)
		l.Infof("--> %s %s", req.Method, req.URL.Path)
		startTime := time.Now()
		status, err := handler(res, req)
		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		if err != nil {

			// The FF code of the error maps to a status hint where one is registered
			ffcodeExtract := ffcodeExtractor.FindStringSubmatch(err.Error())
			if len(ffcodeExtract) >= 2 {
				if statusHint, ok := i18n.GetStatusHint(ffcodeExtract[1]); ok {
					status = statusHint
				}
			}

			if status != http.StatusRequestTimeout {
				select {
				case <-ctx.Done():
					l.Errorf("Request failed and context is closed. Returning %d (overriding %d): %s", http.StatusRequestTimeout, status, err)
					status = http.StatusRequestTimeout
					err = i18n.WrapError(ctx, err, i18n.MsgRequestTimeout, httpReqID, durationMS)
				default:
				}
			}

			if status < 300 {
				status = 500
			}
			l.Infof("<-- %s %s [%d] (%.2fms): %s", req.Method, req.URL.Path, status, durationMS, err)
			res.Header().Add("Content-Type", "application/json")
			res.WriteHeader(status)
			_ = json.NewEncoder(res).Encode(&fftypes.RESTError{
				Error: err.Error(),
			})
		} else {
			l.Infof("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, status, durationMS)
		}
	}
}

func (as *apiServer) notFoundHandler(res http.ResponseWriter, req *http.Request) (status int, err error) {
	return 404, i18n.NewError(req.Context(), i18n.Msg404NotFound)
}

func (as *apiServer) getPublicURL(conf config.Prefix) string {
	publicURL := conf.GetString(HTTPConfPublicURL)
	if publicURL == "" {
		proto := "https"
		if !conf.GetBool(HTTPConfTLSEnabled) {
			proto = "http"
		}
		publicURL = fmt.Sprintf("%s://%s:%s", proto, conf.GetString(HTTPConfAddress), conf.GetString(HTTPConfPort))
	}
	return publicURL
}

func (as *apiServer) swaggerHandler(url string) func(res http.ResponseWriter, req *http.Request) (status int, err error) {
	return func(res http.ResponseWriter, req *http.Request) (status int, err error) {
		doc := oapispec.SwaggerGen(req.Context(), routes, url)
		var b []byte
		if mux.Vars(req)["ext"] == ".json" {
			res.Header().Add("Content-Type", "application/json")
			b, err = json.Marshal(doc)
		} else {
			res.Header().Add("Content-Type", "application/x-yaml")
			b, err = yaml.Marshal(doc)
		}
		if err != nil {
			return 500, i18n.WrapError(req.Context(), err, i18n.MsgResponseMarshalError)
		}
		_, _ = res.Write(b)
		return 200, nil
	}
}

func (as *apiServer) createMuxRouter(o orchestrator.Orchestrator) *mux.Router {
	r := mux.NewRouter()
	for _, route := range routes {
		if route.JSONHandler != nil {
			r.HandleFunc(fmt.Sprintf("/api/v1/%s", route.Path), as.routeHandler(o, route)).
				Methods(route.Method)
		}
	}
	r.HandleFunc(`/api/swagger{ext:\.yaml|\.json}`, as.apiWrapper(as.swaggerHandler(as.getPublicURL(apiConfigPrefix))))
	r.NotFoundHandler = as.apiWrapper(as.notFoundHandler)
	return r
}

func (as *apiServer) createMetricsMuxRouter() *mux.Router {
	r := mux.NewRouter()
	r.Path(config.GetString(config.MetricsPath)).Handler(promhttp.InstrumentMetricHandler(metrics.Registry(),
		promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
	return r
}
