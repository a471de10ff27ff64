// Package core provides the business logic for importing and managing shows.
//
// The package holds all domain logic independent of any UI or transport
// layer. Web handlers, the command-line tool and tests use it unchanged.
// Shows are stored by an external show API reached through [ShowAPI]; this
// package keeps only short-lived import sessions in memory.
//
// # Columns
//
// Every CSV column is a [FieldSpec] in one fixed table, in template order.
// The table drives header mapping, row validation, diffing, filtering and
// export, so a column is added in one place:
//
//	{Header: "Cadence", Key: "cadence", Type: FieldEnum,
//	    EnumValues: []string{"Daily", "Weekly", "Biweekly", "Monthly", "Ad Hoc"}},
//
// # Import Pipeline
//
//  1. [Service.AnalyzeImport] reads the file, maps headers and validates
//     every row. Any row error rejects the whole file with [ValidationErrors].
//  2. The valid records go to the show API in one duplicate check. The
//     answers are index-aligned with the records.
//  3. The preview is stored as an [ImportSession]. Matched rows default to
//     update and new rows to create; [Service.SetAction] changes either.
//  4. [Service.CommitImport] sends all records and actions in one batch.
//     Partial failure is reported in [CommitResult], not as an error.
//
// A session discarded while its duplicate check is in flight stays
// discarded; the late answer is dropped.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each category has a code prefix for support reference:
//
//   - VAL: row values, actions and request input
//   - FILE: size, format and empty files
//   - IMP: import sessions
//   - DUP: duplicate checks
//   - API: the show API
//   - REQ, RATE: cancellation, timeouts and throttling
package core
