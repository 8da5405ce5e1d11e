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
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/kaleido-io/firefly-tokenclaims/internal/apiserver"
	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/kaleido-io/firefly-tokenclaims/internal/orchestrator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var sigs = make(chan os.Signal, 1)

var rootCmd = &cobra.Command{
	Use:   "ffclaims",
	Short: "FireFly token claims engine",
	Long: `Reserves unspent tokens against claims, so concurrent transactions
never select the same token, and follows the ledger to keep the token cache current.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var cfgFile string

// Set in unit tests
var _utOrchestrator orchestrator.Orchestrator

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "config file")
}

// Execute is called by the main method of the package
func Execute() error {
	return rootCmd.Execute()
}

func getOrchestrator() orchestrator.Orchestrator {
	if _utOrchestrator != nil {
		return _utOrchestrator
	}
	return orchestrator.NewOrchestrator()
}

func readConfig() (context.Context, context.CancelFunc, error) {
	err := config.ReadConfig(cfgFile)

	// Setup logging after reading config (even if failed), to output header correctly
	ctx, cancelCtx := context.WithCancel(context.Background())
	ctx = log.WithLogger(ctx, logrus.WithField("pid", fmt.Sprintf("%d", os.Getpid())))
	config.SetupLogging(ctx)
	log.L(ctx).Infof("FireFly Token Claims")

	// Deferred error return from reading config
	if err != nil {
		cancelCtx()
		return nil, nil, i18n.WrapError(ctx, err, i18n.MsgConfigFailed)
	}
	apiserver.InitConfig()
	return ctx, cancelCtx, nil
}

func run() error {
	ctx, cancelCtx, err := readConfig()
	if err != nil {
		return err
	}
	defer cancelCtx()

	// Setup signal handling to cancel the context, which shuts down the API Server
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	or := getOrchestrator()
	as, err := apiserver.NewAPIServer(ctx)
	if err != nil {
		return err
	}
	errChan := make(chan error, 1)
	go startClaims(ctx, or, as, errChan)
	select {
	case sig := <-sigs:
		log.L(ctx).Infof("Shutting down due to %s", sig.String())
		cancelCtx()
		or.WaitStop()
		return nil
	case err := <-errChan:
		cancelCtx()
		or.WaitStop()
		return err
	}
}

func startDebugServer(ctx context.Context) *http.Server {
	debugPort := config.GetInt(config.DebugPort)
	if debugPort < 0 {
		return nil
	}
	r := mux.NewRouter()
	r.PathPrefix("/debug/pprof/cmdline").HandlerFunc(pprof.Cmdline)
	r.PathPrefix("/debug/pprof/profile").HandlerFunc(pprof.Profile)
	r.PathPrefix("/debug/pprof/symbol").HandlerFunc(pprof.Symbol)
	r.PathPrefix("/debug/pprof/trace").HandlerFunc(pprof.Trace)
	r.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	debugServer := &http.Server{Addr: fmt.Sprintf("localhost:%d", debugPort), Handler: r}
	go func() {
		_ = debugServer.ListenAndServe()
	}()
	log.L(ctx).Debugf("Debug HTTP endpoint listening on localhost:%d", debugPort)
	return debugServer
}

func startClaims(ctx context.Context, or orchestrator.Orchestrator, as apiserver.Server, errChan chan error) {
	debugServer := startDebugServer(ctx)
	defer func() {
		if debugServer != nil {
			_ = debugServer.Close()
		}
	}()

	if err := or.Init(ctx); err != nil {
		errChan <- err
		return
	}
	if err := or.Start(); err != nil {
		errChan <- err
		return
	}
	if err := as.Serve(ctx, or); err != nil {
		errChan <- err
	}
}
