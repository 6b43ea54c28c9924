package graph_test

import (
	"testing"

	"github.com/seedkit/seedkit/graph"
	"github.com/seedkit/seedkit/schema"
	"github.com/stretchr/testify/require"
)

func intType() schema.LogicalType { return schema.LogicalType{Kind: schema.LogicalInteger, Width: 32, Signed: true} }

func tableWithFK(name, col, refTable, refCol string, nullable bool) *schema.Table {
	return &schema.Table{
		Name: name,
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: col, Type: intType(), Nullable: nullable},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: name + "_" + col + "_fk", Columns: []string{col}, ReferencedTable: refTable, ReferencedColumns: []string{refCol}},
		},
	}
}

func TestPlan_Ecommerce(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(&schema.Table{Name: "users", Columns: []*schema.Column{{Name: "id", Type: intType()}}, PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}}})
	s.AddTable(&schema.Table{Name: "categories", Columns: []*schema.Column{
		{Name: "id", Type: intType()},
		{Name: "parent_id", Type: intType(), Nullable: true},
	}, PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{{Name: "categories_parent_fk", Columns: []string{"parent_id"}, ReferencedTable: "categories", ReferencedColumns: []string{"id"}}}})
	s.AddTable(tableWithFK("products", "category_id", "categories", "id", false))
	s.AddTable(tableWithFK("orders", "user_id", "users", "id", false))
	oi := &schema.Table{
		Name: "order_items",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "order_id", Type: intType()},
			{Name: "product_id", Type: intType()},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		Uniques:    []*schema.UniqueConstraint{{Name: "order_items_order_product_uq", Columns: []string{"order_id", "product_id"}}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "order_items_order_fk", Columns: []string{"order_id"}, ReferencedTable: "orders", ReferencedColumns: []string{"id"}},
			{Name: "order_items_product_fk", Columns: []string{"product_id"}, ReferencedTable: "products", ReferencedColumns: []string{"id"}},
		},
	}
	s.AddTable(oi)

	plan, err := graph.Plan(s, graph.BreakCycleConfig{})
	require.NoError(t, err)

	order := plan.EmitOrder()
	pos := map[string]int{}
	for i, t := range order {
		pos[t] = i
	}
	require.Less(t, pos["users"], pos["orders"])
	require.Less(t, pos["categories"], pos["products"])
	require.Less(t, pos["orders"], pos["order_items"])
	require.Less(t, pos["products"], pos["order_items"])

	// The only cycle is the categories.parent_id self-reference, which is
	// broken into the plan's single deferred update.
	var deferred []graph.Step
	for _, step := range plan.Steps {
		if step.Kind == graph.StepDeferredUpdate {
			deferred = append(deferred, step)
		}
	}
	require.Len(t, deferred, 1)
	require.Equal(t, "categories", deferred[0].Table)
	require.Equal(t, []string{"parent_id"}, deferred[0].Columns)
}

func TestPlan_CircularEmployeesDepartments(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(&schema.Table{
		Name: "departments",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "head_id", Type: intType(), Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "departments_head_fk", Columns: []string{"head_id"}, ReferencedTable: "employees", ReferencedColumns: []string{"id"}},
		},
	})
	s.AddTable(&schema.Table{
		Name: "employees",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "department_id", Type: intType()},
			{Name: "manager_id", Type: intType(), Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "employees_department_fk", Columns: []string{"department_id"}, ReferencedTable: "departments", ReferencedColumns: []string{"id"}},
			{Name: "employees_manager_fk", Columns: []string{"manager_id"}, ReferencedTable: "employees", ReferencedColumns: []string{"id"}},
		},
	})

	plan, err := graph.Plan(s, graph.BreakCycleConfig{})
	require.NoError(t, err)

	var deferred []graph.Step
	for _, step := range plan.Steps {
		if step.Kind == graph.StepDeferredUpdate {
			deferred = append(deferred, step)
		}
	}
	// departments.head_id breaks the two-table cycle; the
	// employees.manager_id self-reference is a cycle of its own and is
	// broken too.
	require.Len(t, deferred, 2)
	require.Equal(t, "departments", deferred[0].Table)
	require.Equal(t, []string{"head_id"}, deferred[0].Columns)
	require.Equal(t, "employees", deferred[1].Table)
	require.Equal(t, []string{"manager_id"}, deferred[1].Columns)

	order := plan.EmitOrder()
	pos := map[string]int{}
	for i, t := range order {
		pos[t] = i
	}
	require.Less(t, pos["departments"], len(order))
	require.Less(t, pos["employees"], len(order))
}

func TestPlan_SelfReferentialComments(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(&schema.Table{
		Name: "comments",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "parent_id", Type: intType(), Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "comments_parent_fk", Columns: []string{"parent_id"}, ReferencedTable: "comments", ReferencedColumns: []string{"id"}},
		},
	})

	plan, err := graph.Plan(s, graph.BreakCycleConfig{})
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	require.Equal(t, graph.StepEmit, plan.Steps[0].Kind)
	require.Equal(t, "comments", plan.Steps[0].Table)
	require.Equal(t, graph.StepDeferredUpdate, plan.Steps[1].Kind)
	require.Equal(t, "comments", plan.Steps[1].Table)
	require.Equal(t, "comments", plan.Steps[1].Parent)
	require.Equal(t, []string{"parent_id"}, plan.Steps[1].Columns)
	require.True(t, plan.Steps[1].Nullable)
}

func TestPlan_NonNullableCycleUnbreakable(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(&schema.Table{
		Name: "a",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "b_id", Type: intType(), Nullable: false},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "a_b_fk", Columns: []string{"b_id"}, ReferencedTable: "b", ReferencedColumns: []string{"id"}},
		},
	})
	s.AddTable(&schema.Table{
		Name: "b",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "a_id", Type: intType(), Nullable: false},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "b_a_fk", Columns: []string{"a_id"}, ReferencedTable: "a", ReferencedColumns: []string{"id"}},
		},
	})

	_, err := graph.Plan(s, graph.BreakCycleConfig{})
	require.Error(t, err)
}

func TestPlan_EmptySchema(t *testing.T) {
	plan, err := graph.Plan(schema.NewSchema(), graph.BreakCycleConfig{})
	require.NoError(t, err)
	require.Empty(t, plan.Steps)
}

func TestPlan_ExplicitBreakCycleAt(t *testing.T) {
	s := schema.NewSchema()
	s.AddTable(&schema.Table{
		Name: "a",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "b_id", Type: intType(), Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "a_b_fk", Columns: []string{"b_id"}, ReferencedTable: "b", ReferencedColumns: []string{"id"}},
		},
	})
	s.AddTable(&schema.Table{
		Name: "b",
		Columns: []*schema.Column{
			{Name: "id", Type: intType()},
			{Name: "a_id", Type: intType(), Nullable: true},
		},
		PrimaryKey: &schema.PrimaryKey{Columns: []string{"id"}},
		ForeignKeys: []*schema.ForeignKey{
			{Name: "b_a_fk", Columns: []string{"a_id"}, ReferencedTable: "a", ReferencedColumns: []string{"id"}},
		},
	})

	plan, err := graph.Plan(s, graph.BreakCycleConfig{BreakCycleAt: map[string]bool{"b.a_id": true}})
	require.NoError(t, err)

	var deferred []graph.Step
	for _, step := range plan.Steps {
		if step.Kind == graph.StepDeferredUpdate {
			deferred = append(deferred, step)
		}
	}
	require.Len(t, deferred, 1)
	require.Equal(t, "b", deferred[0].Table)
}
