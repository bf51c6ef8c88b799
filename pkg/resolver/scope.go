package resolver

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
)

// Scope is the FROM-list binding environment: every base table is reachable
// by its real name and, when aliased, by its alias too (spec section 4.3).
type Scope struct {
	byName map[string]*catalog.Table
	tables []*catalog.Table // FROM order, de-duplicated, for unqualified lookup and wildcard expansion
}

func newScope() *Scope {
	return &Scope{byName: make(map[string]*catalog.Table)}
}

// bind registers name (a real table name when isAlias is false, an AS-alias
// when true) against t. Real names and aliases share one lookup namespace,
// but only an alias collision is an error (spec section 4.3: "two relations
// sharing an alias in the same scope ⇒ SQL_SYNTAX"). Re-binding a real name
// to the same table it already maps to is the expected shape of a self-join
// such as "orders AS o1 JOIN orders AS o2" and is silently accepted.
func (s *Scope) bind(name string, t *catalog.Table, isAlias bool) error {
	if existing, exists := s.byName[name]; exists {
		if !isAlias && existing == t {
			return nil
		}
		return rc.New(rc.SQL_SYNTAX, "duplicate relation name or alias: "+name)
	}
	s.byName[name] = t
	return nil
}

// lookup resolves a qualifier (table name or alias) to a table.
func (s *Scope) lookup(qualifier string) (*catalog.Table, bool) {
	t, ok := s.byName[qualifier]
	return t, ok
}

// findColumn searches every table in this scope's FROM order for an
// unqualified column name, returning rc.SQL_SYNTAX on ambiguity. If outer
// is non-nil and s has no match, the search falls through to outer — the
// way a correlated sub-select's unqualified column reference is resolved
// against its enclosing query once its own FROM list comes up empty. A
// match found in s always wins outright: the inner scope shadows the
// outer one, so a name that exists in both is not ambiguous.
func (s *Scope) findColumn(name string, outer *Scope) (*catalog.Table, *catalog.Column, error) {
	table, col, err := s.findLocal(name)
	if err == nil {
		return table, col, nil
	}
	if outer == nil || rc.Of(err) == rc.SQL_SYNTAX {
		return nil, nil, err
	}
	return outer.findLocal(name)
}

// findLocal searches only this scope's own tables, ignoring any outer one.
func (s *Scope) findLocal(name string) (*catalog.Table, *catalog.Column, error) {
	var foundTable *catalog.Table
	var foundCol *catalog.Column
	for _, t := range s.tables {
		if col, _ := t.ColumnByName(name); col != nil {
			if foundTable != nil {
				return nil, nil, rc.New(rc.SQL_SYNTAX, "ambiguous column reference: "+name)
			}
			foundTable, foundCol = t, col
		}
	}
	if foundTable == nil {
		return nil, nil, rc.New(rc.SCHEMA_FIELD_MISSING, "no such column: "+name)
	}
	return foundTable, foundCol, nil
}

// flatBase is one base-table leaf of a FROM-list relation tree.
type flatBase struct {
	name  string
	alias string
}

// flattenRelations walks the comma-list of (possibly INNER JOIN) relation
// trees, returning every base table leaf in left-to-right order and every
// ON condition in the textual order it must be appended to WHERE (spec
// section 4.3: "merging ON into WHERE").
func flattenRelations(rels []ast.RelationSqlNode) ([]flatBase, []ast.ConditionSqlNode) {
	var bases []flatBase
	var ons []ast.ConditionSqlNode
	var walk func(r ast.RelationSqlNode)
	walk = func(r ast.RelationSqlNode) {
		if r.Join != nil {
			walk(r.Join.Left)
			walk(r.Join.Right)
			ons = append(ons, r.Join.On...)
			return
		}
		bases = append(bases, flatBase{name: r.Name, alias: r.Alias})
	}
	for _, r := range rels {
		walk(r)
	}
	return bases, ons
}

// resolveFrom builds a Scope from a FROM list, binding each base table under
// its real name and, if present, its alias, and returns the ON conditions
// collected from any nested INNER JOINs for the caller to merge into WHERE.
func (r *Resolver) resolveFrom(rels []ast.RelationSqlNode) (*Scope, []ast.ConditionSqlNode, error) {
	bases, ons := flattenRelations(rels)
	scope := newScope()
	for _, b := range bases {
		t, err := r.Catalog.GetTable(b.name)
		if err != nil {
			return nil, nil, rc.New(rc.SCHEMA_TABLE_NOT_EXIST, "no such table: "+b.name)
		}
		if err := scope.bind(b.name, t, false); err != nil {
			return nil, nil, err
		}
		if b.alias != "" {
			if err := scope.bind(b.alias, t, true); err != nil {
				return nil, nil, err
			}
		}
		scope.tables = append(scope.tables, t)
	}
	return scope, ons, nil
}
