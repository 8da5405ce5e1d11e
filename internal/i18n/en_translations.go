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

package i18n

import "net/http"

//revive:disable
var (
	MsgConfigFailed              = ffm("FF10101", "Failed to read config")
	MsgJSONDecodeFailed          = ffm("FF10102", "Failed to decode input JSON", http.StatusBadRequest)
	MsgAPIServerStartFailed      = ffm("FF10103", "Unable to start listener on %s: %s")
	MsgTLSConfigFailed           = ffm("FF10104", "Failed to initialize TLS configuration")
	MsgInvalidCAFile             = ffm("FF10105", "Invalid CA certificates file")
	MsgResponseMarshalError      = ffm("FF10107", "Failed to serialize response data", http.StatusBadRequest)
	Msg404NotFound               = ffm("FF10109", "Not found", http.StatusNotFound)
	Msg404NoResult               = ffm("FF10110", "No result found", http.StatusNotFound)
	MsgRequestTimeout            = ffm("FF10111", "The request with id '%s' timed out after %.2fms", http.StatusRequestTimeout)
	MsgRequestTooLarge           = ffm("FF10113", "Request body exceeds the maximum size of %d bytes", http.StatusRequestEntityTooLarge)
	MsgInvalidRequestSizeLimit   = ffm("FF10114", "Invalid API request size limit '%s'")
	MsgDBBeginFailed             = ffm("FF10115", "Database begin transaction failed")
	MsgDBQueryBuildFailed        = ffm("FF10116", "Database query builder failed")
	MsgDBQueryFailed             = ffm("FF10117", "Database query failed")
	MsgDBInsertFailed            = ffm("FF10118", "Database insert failed")
	MsgDBDeleteFailed            = ffm("FF10120", "Database delete failed")
	MsgDBCommitFailed            = ffm("FF10121", "Database commit failed")
	MsgUnknownDatabasePlugin     = ffm("FF10122", "Unknown database plugin '%s'")
	MsgDBReadErr                 = ffm("FF10123", "Database resultset read error from table '%s'")
	MsgDBInitFailed              = ffm("FF10124", "Database initialization failed")
	MsgDBMigrationFailed         = ffm("FF10125", "Database migration failed")
	MsgMissingPluginConfig       = ffm("FF10126", "Missing configuration '%s' for %s")
	MsgUnknownDiscoveryPlugin    = ffm("FF10127", "Unknown token discovery plugin '%s'")
	MsgInitializationNilDepError = ffm("FF10128", "Initialization error due to unmet dependency")
	MsgDiscoveryRESTErr          = ffm("FF10129", "Error from token discovery service: %s")
	MsgScanFailed                = ffm("FF10130", "Failed to restore type '%T' into '%T'")
	MsgDecimalParseFailed        = ffm("FF10131", "Failed to parse decimal amount '%s'", http.StatusBadRequest)
	MsgTimeParseFail             = ffm("FF10132", "Cannot parse time '%s' as RFC3339", http.StatusBadRequest)
	MsgInvalidUUID               = ffm("FF10133", "Invalid UUID supplied", http.StatusBadRequest)
	MsgInvalidTokenRef           = ffm("FF10134", "Invalid token reference '%s'", http.StatusBadRequest)
	MsgInvalidPoolKey            = ffm("FF10135", "A pool must include a token type and a symbol", http.StatusBadRequest)
	MsgInvalidOutputOption       = ffm("FF10136", "Invalid output option '%s'")
	MsgInvalidQueryParam         = ffm("FF10137", "Invalid value '%s' for query parameter '%s'", http.StatusBadRequest)
	MsgContextCanceled           = ffm("FF10158", "Context cancelled")
	MsgWSClosing                 = ffm("FF10160", "Websocket closing")
	MsgWSConnectFailed           = ffm("FF10161", "Websocket connect failed")
	MsgWSSendTimedOut            = ffm("FF10162", "Websocket send timed out")
	MsgLedgerMessageInvalid      = ffm("FF10163", "Invalid ledger message: %s")
	MsgLedgerSchemaFailed        = ffm("FF10164", "Failed to load ledger message schema")

	MsgClaimExists              = ffm("FF10201", "Claim '%s' already exists in pool %s", http.StatusConflict)
	MsgTokenAlreadyClaimed      = ffm("FF10202", "Token %s is already reserved by claim '%s'", http.StatusConflict)
	MsgInsufficientFunds        = ffm("FF10203", "Insufficient funds: selected %s of the %s requested")
	MsgInvalidClaimAmount       = ffm("FF10204", "Claim amount must be greater than zero: %s", http.StatusBadRequest)
	MsgMissingClaimID           = ffm("FF10205", "A claim id is required", http.StatusBadRequest)
	MsgInvalidTagRegex          = ffm("FF10210", "Invalid tag regular expression '%s': %s", http.StatusBadRequest)
	MsgUnknownSelectionStrategy = ffm("FF10211", "Unknown selection strategy '%s'")
	MsgUnknownEventType         = ffm("FF10220", "Unknown event type %T")
	MsgDispatcherClosed         = ffm("FF10221", "Dispatcher is closed", http.StatusServiceUnavailable)
	MsgRecordNotFound           = ffm("FF10223", "Record '%s' not found", http.StatusNotFound)
	MsgDispatchFailed           = ffm("FF10224", "Failed to process event '%s' after %d attempts")
)

// API descriptions, used in the generated OpenAPI document
var (
	MsgAPIClaimTokens       = ffm("FF10301", "Reserve tokens from a pool to cover a target amount")
	MsgAPIReleaseClaim      = ffm("FF10302", "Release a claim, marking the used tokens as spent")
	MsgAPIForceReleaseClaim = ffm("FF10303", "Abandon a claim, returning its tokens to the pool")
	MsgAPIGetPoolClaims     = ffm("FF10304", "List the active claims for a pool")
	MsgAPILedgerChanges     = ffm("FF10305", "Submit tokens produced and consumed on the ledger")
	MsgAPIGetBalance        = ffm("FF10306", "Query the unclaimed balance of matching tokens in a pool")
	MsgAPIGetRecordByID     = ffm("FF10307", "Get an outbound record by id")
	MsgAPIGetRecords        = ffm("FF10308", "List outbound records")
	MsgAPIParamClaimID      = ffm("FF10309", "The claim id supplied when the claim was created")
	MsgAPIParamRecordID     = ffm("FF10311", "The record id")
	MsgAPIParamFilterPool   = ffm("FF10312", "Only return records for this pool hash")
	MsgAPIParamFilterType   = ffm("FF10313", "Only return records of this type")
	MsgAPIParamSkip         = ffm("FF10314", "Number of records to skip")
	MsgAPIParamLimit        = ffm("FF10315", "Maximum number of records to return")
	MsgAPIParamTokenType    = ffm("FF10316", "The token type of the pool")
	MsgAPIParamIssuerHash   = ffm("FF10317", "The hash of the pool issuer")
	MsgAPIParamNotary       = ffm("FF10318", "The notary of the pool")
	MsgAPIParamSymbol       = ffm("FF10319", "The currency symbol of the pool")
	MsgAPISuccessResponse   = ffm("FF10320", "Success")
	MsgAPIRequestTimeout    = ffm("FF10321", "Server-side request timeout (seconds, or a duration string)")
)
