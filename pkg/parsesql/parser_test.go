package parsesql

import (
	"testing"

	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
)

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM users WHERE id = 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Select == nil {
		t.Fatal("expected a Select statement")
	}
	sel := stmt.Select
	if len(sel.Relations) != 1 || sel.Relations[0].Name != "users" {
		t.Errorf("Relations = %+v, want [users]", sel.Relations)
	}
	if len(sel.Attributes) != 2 || sel.Attributes[0].AttributeName != "id" || sel.Attributes[1].AttributeName != "name" {
		t.Errorf("Attributes = %+v", sel.Attributes)
	}
	if len(sel.Conditions) != 1 {
		t.Fatalf("Conditions = %+v, want 1 entry", sel.Conditions)
	}
	cond := sel.Conditions[0]
	if !cond.LeftIsAttr || cond.LeftAttr.AttributeName != "id" || cond.Comp != ast.CompEq {
		t.Errorf("condition = %+v, want id = 1", cond)
	}
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := Parse("SELECT * FROM users")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(stmt.Select.Attributes) != 1 || stmt.Select.Attributes[0].AttributeName != "*" {
		t.Errorf("Attributes = %+v, want [*]", stmt.Select.Attributes)
	}
}

func TestParseAggregateAndGroupBy(t *testing.T) {
	stmt, err := Parse("SELECT dept, COUNT(*) FROM emps GROUP BY dept HAVING COUNT(*) > 1")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sel := stmt.Select
	if len(sel.Attributes) != 2 || sel.Attributes[1].AggrFuncType != ast.AggrCount {
		t.Errorf("Attributes = %+v, want second entry COUNT(*)", sel.Attributes)
	}
	if len(sel.GroupByAttributes) != 1 || sel.GroupByAttributes[0].AttributeName != "dept" {
		t.Errorf("GroupByAttributes = %+v, want [dept]", sel.GroupByAttributes)
	}
	if len(sel.HavingConditions) != 1 {
		t.Errorf("HavingConditions = %+v, want 1 entry", sel.HavingConditions)
	}
}

func TestParseOrderBy(t *testing.T) {
	stmt, err := Parse("SELECT id FROM t ORDER BY id DESC")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	ob := stmt.Select.OrderBySqlNodes
	if len(ob) != 1 || ob[0].Attr.AttributeName != "id" || !ob[0].Desc {
		t.Errorf("OrderBySqlNodes = %+v, want [id DESC]", ob)
	}
}

func TestParseInnerJoin(t *testing.T) {
	stmt, err := Parse("SELECT a.id FROM a INNER JOIN b ON a.id = b.id")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	rel := stmt.Select.Relations[0]
	if rel.Join == nil {
		t.Fatal("expected an INNER JOIN sub-tree")
	}
	if rel.Join.Left.Name != "a" || rel.Join.Right.Name != "b" {
		t.Errorf("Join = %+v, want a join b", rel.Join)
	}
	if len(rel.Join.On) != 1 {
		t.Errorf("Join.On = %+v, want 1 condition", rel.Join.On)
	}
}

func TestParseInList(t *testing.T) {
	stmt, err := Parse("SELECT id FROM t WHERE id IN (1, 2, 3)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cond := stmt.Select.Conditions[0]
	if cond.Comp != ast.CompIn {
		t.Errorf("Comp = %v, want CompIn", cond.Comp)
	}
	if cond.RightExpr == nil || len(cond.RightExpr.List) != 3 {
		t.Errorf("RightExpr = %+v, want a 3-element list", cond.RightExpr)
	}
}

func TestParseInSubquery(t *testing.T) {
	stmt, err := Parse("SELECT id FROM t WHERE id IN (SELECT id FROM u)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cond := stmt.Select.Conditions[0]
	if cond.RightExpr == nil || cond.RightExpr.Sub == nil {
		t.Fatalf("RightExpr = %+v, want a nested SELECT", cond.RightExpr)
	}
	if len(cond.RightExpr.Sub.Relations) != 1 || cond.RightExpr.Sub.Relations[0].Name != "u" {
		t.Errorf("Sub.Relations = %+v, want [u]", cond.RightExpr.Sub.Relations)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	stmt, err := Parse("CALC 1 + 2 * 3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Calc == nil || len(stmt.Calc.Expressions) != 1 {
		t.Fatalf("expected a single CALC expression, got %+v", stmt.Calc)
	}
	top := stmt.Calc.Expressions[0]
	if top.ArithOp != "+" {
		t.Fatalf("top-level op = %q, want + (lower precedence at the root)", top.ArithOp)
	}
	if top.Right.ArithOp != "*" {
		t.Errorf("right operand op = %q, want * to bind tighter", top.Right.ArithOp)
	}
}

func TestParseInsert(t *testing.T) {
	stmt, err := Parse("INSERT INTO t VALUES (1, 'hello', 2.5)")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Insert == nil || stmt.Insert.RelationName != "t" {
		t.Fatalf("Insert = %+v, want RelationName t", stmt.Insert)
	}
	if len(stmt.Insert.Values) != 1 || len(stmt.Insert.Values[0].List) != 3 {
		t.Fatalf("Values = %+v, want a single row of 3 columns", stmt.Insert.Values)
	}
	row := stmt.Insert.Values[0].List
	if row[1].Value == nil || row[1].Value.Chars != "hello" {
		t.Errorf("row[1] = %+v, want CHARS 'hello'", row[1].Value)
	}
}

func TestParseUpdate(t *testing.T) {
	stmt, err := Parse("UPDATE t SET a = 1, b = 2 WHERE id = 5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Update == nil || len(stmt.Update.SetClauses) != 2 {
		t.Fatalf("Update = %+v, want 2 SET clauses", stmt.Update)
	}
	if len(stmt.Update.Conditions) != 1 {
		t.Errorf("Conditions = %+v, want 1 entry", stmt.Update.Conditions)
	}
}

func TestParseDelete(t *testing.T) {
	stmt, err := Parse("DELETE FROM t WHERE id = 5")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Delete == nil || stmt.Delete.RelationName != "t" {
		t.Fatalf("Delete = %+v, want RelationName t", stmt.Delete)
	}
}

func TestParseExplain(t *testing.T) {
	stmt, err := Parse("EXPLAIN SELECT id FROM t")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stmt.Explain == nil || stmt.Explain.Select == nil {
		t.Fatalf("Explain = %+v, want a wrapped SELECT", stmt.Explain)
	}
}

func TestParseTrailingSemicolonOptional(t *testing.T) {
	if _, err := Parse("SELECT id FROM t;"); err != nil {
		t.Errorf("trailing semicolon should be accepted: %v", err)
	}
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	if _, err := Parse("SELECT id FROM t WHERE id = 1 GARBAGE"); err == nil {
		t.Error("trailing garbage after a statement should be rejected")
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("SELECT FROM"); err == nil {
		t.Error("malformed SELECT should return a parse error")
	}
}
