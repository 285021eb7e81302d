// Package field provides fluent builders for defining model fields.
//
// Field names are the client-facing names (camelCase); column names are
// derived from them by the schema package:
//
//	field.Int("roleId")          // column: role_id
//	field.String("serialNumber") // column: serial_number
//
// # Field Types
//
//	field.String("name")   // VARCHAR(255)
//	field.Text("note")     // TEXT
//	field.Int("quantity")
//	field.Float("price")
//	field.Bool("active")
//	field.Time("shippedAt")
//
// # Field Options
//
//	field.String("email").
//	    Unique().            // Unique constraint
//	    Optional().          // Nullable column
//	    Immutable().         // Cannot be updated
//	    Default("unknown").  // Default value on create
//	    Comment("User email")
//
// Time fields can declare an ordering invariant that the engine checks on
// every create and update:
//
//	field.Time("updatedAt").UpdateDefault(time.Now).NotBefore("createdAt")
package field
