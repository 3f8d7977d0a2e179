package entity

import (
	"github.com/chanuka/bound/registry"
	"github.com/chanuka/bound/schema"
)

// Wire-shape schemas for the entity inputs. The same definitions run on both
// sides of the boundary: clients use them for advisory feedback, the server
// run is the authoritative one.

// SchemaUser is the registered name of the user input schema.
const SchemaUser = "User"

// SchemaBill is the registered name of the bill input schema.
const SchemaBill = "Bill"

// SchemaComment is the registered name of the comment input schema.
const SchemaComment = "Comment"

// UserSchema describes the user signup/profile input.
func UserSchema() *schema.Schema {
	return schema.New(SchemaUser, "1.0.0").
		Field(schema.String("email").Required().Format(schema.FormatEmail).MaxLength(254)).
		Field(schema.String("displayName").Required().MinLength(1).MaxLength(80)).
		Field(schema.Bool("newsletter").Default(false)).
		MustBuild()
}

// BillSchema describes the bill submission input.
func BillSchema() *schema.Schema {
	return schema.New(SchemaBill, "1.0.0").
		Field(schema.String("billNumber").Required().Pattern(`^[A-Z]{1,4}-\d{1,6}$`)).
		Field(schema.String("title").Required().MinLength(1).MaxLength(200)).
		Field(schema.String("summary").MaxLength(2000).Default("")).
		Field(schema.String("status").
			Enum(string(BillDraft), string(BillIntroduced), string(BillPassed), string(BillRejected)).
			Default(string(BillDraft))).
		Field(schema.Array("sponsorIds", schema.String("sponsorId").Format(schema.FormatUUID)).
			MaxItems(10)).
		MustBuild()
}

// CommentSchema describes the comment submission input.
func CommentSchema() *schema.Schema {
	return schema.New(SchemaComment, "1.0.0").
		Field(schema.String("billId").Required().Format(schema.FormatUUID)).
		Field(schema.String("authorId").Required().Format(schema.FormatUUID)).
		Field(schema.String("content").Required().MinLength(1).MaxLength(4000)).
		MustBuild()
}

// RegisterSchemas loads every entity schema into reg.
func RegisterSchemas(reg *registry.Registry) {
	for _, s := range []*schema.Schema{UserSchema(), BillSchema(), CommentSchema()} {
		reg.Register(s)
	}
}
