// Package todo defines the persisted task list: task records, the versioned
// envelope that wraps them, input sanitization, id generation, and envelope
// validation.
//
// The envelope is stored as a single JSON blob:
//
//	{
//	  "schemaVersion": 1,
//	  "items": [
//	    {
//	      "id": "0b7f3c1e-6c52-4d55-9e0e-2f1f0a8c7d11",
//	      "text": "Buy milk",
//	      "completed": false,
//	      "priority": "medium",
//	      "createdAt": 1700000000000,
//	      "updatedAt": 1700000000000
//	    }
//	  ]
//	}
//
// # Validation
//
// Every load runs the same predicate (Validator.Validate):
//
// 1. JSON Schema validation against the embedded envelope.schema.json
//   - schemaVersion must equal SchemaVersion
//   - items must be an array of objects with a non-empty id and text
//
// 2. Minimal fallback validation when the schema cannot be compiled:
//   - the same structural checks written in Go
//
// A blob that fails either check is treated as "no prior data" by callers.
//
// # Priority Values
//
//   - "low"
//   - "medium" (default)
//   - "high"
//
// # File Format
//
// Encode writes 2-space indented JSON with a trailing newline.
package todo
