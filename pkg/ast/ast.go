// Package ast defines the parsed-statement node shapes the resolver
// consumes (spec section 6). Producing these nodes from SQL text is an
// external parser's job in the real system; pkg/parsesql supplies a small
// one so this module is runnable end to end.
package ast

// CompOp is the parser-level comparator tag, named exactly as spec
// section 6 lists them.
type CompOp int

const (
	CompEq CompOp = iota
	CompNe
	CompLt
	CompLe
	CompGt
	CompGe
	CompIs
	CompIsNot
	CompLike
	CompNotLike
	CompIn
	CompNotIn
)

// AggrFuncType is the parser-level aggregate-function tag.
type AggrFuncType int

const (
	AggrNone AggrFuncType = iota
	AggrCount
	AggrSum
	AggrAvg
	AggrMin
	AggrMax
)

// ValueType tags a parsed literal's kind before catalog-aware resolution.
type ValueType int

const (
	ValInt ValueType = iota
	ValFloat
	ValBool
	ValChars
	ValDate
	ValNull
)

// Value is a parsed literal.
type Value struct {
	Type  ValueType
	Int   int64
	Float float64
	Bool  bool
	Chars string
}

// RelAttrSqlNode names one attribute reference in a SELECT list, a GROUP
// BY/ORDER BY list, or a condition operand.
type RelAttrSqlNode struct {
	RelationName     string // qualifier before the dot, "" if unqualified
	AttributeName    string // "*" for wildcards
	AggrFuncType     AggrFuncType
	FunctionType     string // scalar-function tag, rewriting only
	IsConstantValue  bool
	ConstantValue    Value
	Alias            string // explicit AS alias, "" if none
}

// ExprSqlNode is a general scalar expression operand — used on either
// side of a condition, or as a SET value, when the operand isn't a bare
// attribute/literal (arithmetic, CASE-free nested expressions, a list of
// values for IN (...) literal-list form, or a nested SELECT).
type ExprSqlNode struct {
	Attr      *RelAttrSqlNode
	Value     *Value
	List      []ExprSqlNode
	Sub       *SelectSqlNode
	ArithOp   string // "+","-","*","/","NEG" when this node is arithmetic
	Left      *ExprSqlNode
	Right     *ExprSqlNode
}

// ConditionSqlNode is a single WHERE/HAVING/ON predicate unit.
type ConditionSqlNode struct {
	LeftIsAttr  bool
	LeftAttr    RelAttrSqlNode
	LeftExpr    *ExprSqlNode
	Comp        CompOp
	RightIsAttr bool
	RightAttr   RelAttrSqlNode
	RightExpr   *ExprSqlNode
}

// RelationSqlNode is one FROM-list entry: a base table or a nested INNER
// JOIN, each with an optional alias.
type RelationSqlNode struct {
	Name  string // base table name; "" when this is a join sub-tree
	Alias string

	// Join, when non-nil, makes this entry an INNER JOIN of Join.Left and
	// Join.Right with Join.On merged into the WHERE list in textual order
	// (spec section 4.3).
	Join *JoinSqlNode
}

// JoinSqlNode is an INNER JOIN of two relation entries.
type JoinSqlNode struct {
	Left, Right RelationSqlNode
	On          []ConditionSqlNode
}

// OrderBySqlNode is one ORDER BY column with its direction.
type OrderBySqlNode struct {
	Attr RelAttrSqlNode
	Desc bool
}

// SelectSqlNode is a parsed SELECT statement (spec section 6).
type SelectSqlNode struct {
	Relations           []RelationSqlNode
	Attributes          []RelAttrSqlNode
	Conditions          []ConditionSqlNode
	GroupByAttributes   []RelAttrSqlNode
	HavingConditions     []ConditionSqlNode
	OrderBySqlNodes      []OrderBySqlNode
}

// InsertSqlNode is a parsed INSERT statement.
type InsertSqlNode struct {
	RelationName string
	Values       []ExprSqlNode
}

// SetClauseSqlNode is one SET column = value assignment.
type SetClauseSqlNode struct {
	Attribute string
	Value     ExprSqlNode
}

// UpdateSqlNode is a parsed UPDATE statement.
type UpdateSqlNode struct {
	RelationName string
	SetClauses   []SetClauseSqlNode
	Conditions   []ConditionSqlNode
}

// DeleteSqlNode is a parsed DELETE statement.
type DeleteSqlNode struct {
	RelationName string
	Conditions   []ConditionSqlNode
}

// CalcSqlNode is a parsed CALC statement: a list of expressions with no
// FROM clause.
type CalcSqlNode struct {
	Expressions []ExprSqlNode
}

// ExplainSqlNode wraps another statement for EXPLAIN.
type ExplainSqlNode struct {
	Select *SelectSqlNode
	Insert *InsertSqlNode
	Update *UpdateSqlNode
	Delete *DeleteSqlNode
}

// StmtSqlNode is the parser's top-level sum type: exactly one field is
// non-nil.
type StmtSqlNode struct {
	Select  *SelectSqlNode
	Insert  *InsertSqlNode
	Update  *UpdateSqlNode
	Delete  *DeleteSqlNode
	Calc    *CalcSqlNode
	Explain *ExplainSqlNode
}
