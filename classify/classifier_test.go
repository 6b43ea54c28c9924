package classify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/seedkit/seedkit/classify"
	"github.com/seedkit/seedkit/schema"
	"github.com/stretchr/testify/require"
)

func intType() schema.LogicalType { return schema.LogicalType{Kind: schema.LogicalInteger, Width: 32, Signed: true} }
func textType() schema.LogicalType { return schema.LogicalType{Kind: schema.LogicalText} }

func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "email", Type: textType()},
			{Name: "first_name", Type: textType()},
			{Name: "last_name", Type: textType()},
			{Name: "created_at", Type: schema.LogicalType{Kind: schema.LogicalTimestamp}},
			{Name: "is_active", Type: schema.LogicalType{Kind: schema.LogicalBool}},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
	}
}

func TestClassify_StructuralOverridesName(t *testing.T) {
	s := schema.NewSchema()
	orders := &schema.Table{
		Name: "orders",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "user_id", Type: intType()},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "orders_user_fk", Columns: []string{"user_id"}, ReferencedTable: "users", ReferencedColumns: []string{"id"}},
		},
	}
	s.AddTable(orders)

	decisions := classify.Classify(s, nil)
	require.Equal(t, schema.KindPK, decisions["orders.id"].Kind)
	require.Equal(t, schema.KindFK, decisions["orders.user_id"].Kind)
}

func TestClassify_IdentityAndBoolean(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(usersTable())

	decisions := classify.Classify(s, nil)
	require.Equal(t, schema.KindEmail, decisions["users.email"].Kind)
	require.Equal(t, schema.KindFirstName, decisions["users.first_name"].Kind)
	require.Equal(t, schema.KindLastName, decisions["users.last_name"].Kind)
	require.Equal(t, schema.KindCreatedAt, decisions["users.created_at"].Kind)
	require.Equal(t, schema.KindBoolean, decisions["users.is_active"].Kind)
}

func TestClassify_EnumRef(t *testing.T) {
	s := schema.NewSchema()
	s.Enums["order_status"] = &schema.EnumType{Name: "order_status", Labels: []string{"pending", "shipped"}}
	s.AddTable(&schema.Table{
		Name: "orders",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "status", Type: schema.ParseEnumRef("order_status")},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
	})

	decisions := classify.Classify(s, nil)
	require.Equal(t, schema.EnumOf("order_status"), decisions["orders.status"].Kind)
}

func TestClassify_Idempotent(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(usersTable())

	first := classify.Classify(s, nil)
	second := classify.Classify(s, nil)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("classification not idempotent (-first +second):\n%s", diff)
	}
}
