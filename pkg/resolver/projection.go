package resolver

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
)

// resolveProjection expands wildcards and binds every SELECT-list entry.
func (r *Resolver) resolveProjection(attrs []ast.RelAttrSqlNode, local *Scope) ([]*field.Field, error) {
	out := make([]*field.Field, 0, len(attrs))
	for i := range attrs {
		a := &attrs[i]
		if a.AttributeName == "*" && a.AggrFuncType == ast.AggrNone {
			if a.RelationName != "" {
				t, ok := local.lookup(a.RelationName)
				if !ok {
					return nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "unknown relation or alias: "+a.RelationName)
				}
				usedAlias := a.RelationName != t.Name
				for _, c := range t.VisibleColumns() {
					col := c
					out = append(out, &field.Field{Table: t, Column: &col, UsedAlias: usedAlias})
				}
				continue
			}
			for _, t := range local.tables {
				for _, c := range t.VisibleColumns() {
					col := c
					out = append(out, &field.Field{Table: t, Column: &col})
				}
			}
			continue
		}

		f, err := r.resolveAttr(a, local, nil, true)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := validateProjectionAliasesUnique(out); err != nil {
		return nil, err
	}
	return out, nil
}

// validateProjectionAliasesUnique rejects two projection items sharing one
// explicit AS alias within the same SELECT list (spec section 3: "alias is
// unique within the enclosing select list"; section 4.3: a conflicting
// explicit alias is SQL_SYNTAX). Fields with no explicit alias are exempt
// — only AS collisions are checked here.
func validateProjectionAliasesUnique(fields []*field.Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Alias == "" {
			continue
		}
		if seen[f.Alias] {
			return rc.New(rc.SQL_SYNTAX, "duplicate projection alias: "+f.Alias)
		}
		seen[f.Alias] = true
	}
	return nil
}

// resolveAttrList resolves a plain attribute list (GROUP BY / ORDER BY),
// where wildcards and aggregates are never allowed.
func (r *Resolver) resolveAttrList(attrs []ast.RelAttrSqlNode, local, outer *Scope) ([]*field.Field, error) {
	out := make([]*field.Field, 0, len(attrs))
	for i := range attrs {
		a := &attrs[i]
		if a.AttributeName == "*" {
			return nil, rc.New(rc.SQL_SYNTAX, "* is not allowed here")
		}
		f, err := r.resolveAttr(a, local, outer, false)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// validateAggregateMixing enforces the aggregate/non-aggregate mixing rule
// exactly as spec section 4.3/8.2 states it: let A be the count of
// aggregate-wrapped projections and G the number of GROUP BY columns. If
// A > 0 then A + G must equal the total projection count.
func validateAggregateMixing(projection, groupBy []*field.Field) error {
	a := 0
	for _, f := range projection {
		if f.Aggr != field.AggrNone {
			a++
		}
	}
	if a == 0 {
		return nil
	}
	if a+len(groupBy) != len(projection) {
		return rc.New(rc.AGGR_FUNC_NOT_VALID, "aggregate and non-aggregate columns cannot be mixed without a matching GROUP BY")
	}
	return nil
}

// splitAggregates separates the aggregate-tagged fields out of projection
// and builds the index mapping the Aggregate operator needs (spec section
// 4.4).
func splitAggregates(projection []*field.Field) ([]*field.Field, map[int]int) {
	var aggregates []*field.Field
	mapping := make(map[int]int)
	for i, f := range projection {
		if f.Aggr != field.AggrNone {
			mapping[len(aggregates)] = i
			aggregates = append(aggregates, f)
		}
	}
	return aggregates, mapping
}
