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

package database

import (
	"context"

	"github.com/kaleido-io/firefly-tokenclaims/internal/config"
	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/pkg/fftypes"
)

var (
	// DeleteRecordNotFound sentinel error
	DeleteRecordNotFound = i18n.NewError(context.Background(), i18n.Msg404NotFound)
)

// Plugin is the interface implemented by each plugin
type Plugin interface {
	PersistenceInterface // Split out to aid pluggability the next level down (SQL provider etc.)

	// InitPrefix initializes the set of configuration options that are valid, with defaults. Called on all plugins.
	InitPrefix(prefix config.Prefix)

	// Init initializes the plugin, with configuration
	Init(ctx context.Context, prefix config.Prefix) error

	// Capabilities returns capabilities - not called until after Init
	Capabilities() *Capabilities
}

type iTokenCollection interface {
	// UpsertTokens - Record tokens produced on the ledger. Tokens that are already recorded are left untouched.
	UpsertTokens(ctx context.Context, tokens []*fftypes.CachedToken) (err error)

	// DeleteTokens - Remove tokens consumed on the ledger. Refs that are not recorded are ignored.
	DeleteTokens(ctx context.Context, pool fftypes.PoolKey, refs []fftypes.TokenRef) (err error)

	// GetPoolTokens - Get every recorded token in a pool, in the order they were recorded
	GetPoolTokens(ctx context.Context, pool fftypes.PoolKey) (tokens []*fftypes.CachedToken, err error)

	// FindTokens - Get the recorded tokens in a pool for an owner, or for all owners if ownerHash is empty
	FindTokens(ctx context.Context, pool fftypes.PoolKey, ownerHash string) (tokens []*fftypes.CachedToken, err error)
}

type iClaimCollection interface {
	// InsertClaim - Insert a claim, with each of the tokens it holds
	InsertClaim(ctx context.Context, claim *fftypes.Claim) (err error)

	// DeleteClaim - Delete a claim, and the tokens it holds
	DeleteClaim(ctx context.Context, pool fftypes.PoolKey, claimID string) (err error)

	// DeleteClaimTokens - Drop tokens from whichever claims hold them
	DeleteClaimTokens(ctx context.Context, pool fftypes.PoolKey, refs []fftypes.TokenRef) (err error)

	// GetClaims - Get all the active claims in a pool
	GetClaims(ctx context.Context, pool fftypes.PoolKey) (claims []*fftypes.Claim, err error)
}

type iRecordCollection interface {
	// InsertRecord - Insert an outbound record
	InsertRecord(ctx context.Context, record *fftypes.Record) (err error)

	// DeleteRecordByRequestID - Delete the record committed for a request, when its outcome no longer holds
	DeleteRecordByRequestID(ctx context.Context, pool fftypes.PoolKey, eventType fftypes.EventType, requestID string) (err error)

	// GetRecordByID - Get a record by ID
	GetRecordByID(ctx context.Context, id *fftypes.UUID) (record *fftypes.Record, err error)

	// GetRecordByRequestID - Get the record previously committed for a request, if there is one
	GetRecordByRequestID(ctx context.Context, pool fftypes.PoolKey, eventType fftypes.EventType, requestID string) (record *fftypes.Record, err error)

	// GetRecords - List records, most recent first
	GetRecords(ctx context.Context, filter *fftypes.RecordFilter) (records []*fftypes.Record, err error)
}

// PersistenceInterface are the operations that must be implemented by a database interface plugin.
type PersistenceInterface interface {
	Name() string

	// RunAsGroup instructs the database plugin that all database operations performed within the context
	// function should be grouped into a single transaction.
	// Requirements:
	// - The database implementation must support nested RunAsGroup calls (ie by reusing a transaction if one exists)
	// - The caller is responsible for passing the supplied context to all database operations within the callback function
	RunAsGroup(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases the underlying connections
	Close()

	iTokenCollection
	iClaimCollection
	iRecordCollection
}

// Capabilities defines the capabilities a plugin can report as implementing or not
type Capabilities struct {
	// ConcurrentWriters is false when the database serializes all writes on a single connection
	ConcurrentWriters bool
}
