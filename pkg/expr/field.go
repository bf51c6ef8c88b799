package expr

import (
	"github.com/JayabrataBasu/VeridicalDB/pkg/catalog"
	"github.com/JayabrataBasu/VeridicalDB/pkg/field"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
	"github.com/JayabrataBasu/VeridicalDB/pkg/sqlvalue"
	"github.com/JayabrataBasu/VeridicalDB/pkg/tuple"
)

// FieldExpr is the leaf expression that evaluates by tuple lookup.
type FieldExpr struct {
	Field *field.Field
}

// NewField wraps f as a leaf expression.
func NewField(f *field.Field) *FieldExpr { return &FieldExpr{Field: f} }

func (e *FieldExpr) ValueType() AttrType {
	if e.Field.IsConstant() {
		return e.Field.Const.Type()
	}
	if e.Field.Column == nil {
		return sqlvalue.NULL
	}
	return catalogTypeToValueType(e.Field.Column.Type)
}

// GetValue looks the field's cell up in the current tuple. Aggregate
// fields are evaluated by the Aggregate physical/logical operator, not
// here: the source's equivalent left this branch an empty fallthrough to
// plain lookup (spec section 9 open question); this implementation keeps
// that division of labor explicit rather than guessing at in-place
// aggregation, and fails loudly if asked to evaluate an aggregate field
// directly against a raw tuple.
func (e *FieldExpr) GetValue(t tuple.Tuple) (sqlvalue.Value, error) {
	if e.Field.IsConstant() {
		return *e.Field.Const, nil
	}
	if e.Field.Aggr != field.AggrNone {
		return sqlvalue.Value{}, rc.New(rc.INTERNAL, "aggregate field evaluated outside the Aggregate operator: "+e.Field.CanonicalAlias())
	}
	tableName := ""
	if e.Field.Table != nil {
		tableName = e.Field.Table.Name
	}
	colName := ""
	if e.Field.Column != nil {
		colName = e.Field.Column.Name
	}
	return t.Find(tuple.CellSpec{Table: tableName, Column: colName})
}

func (e *FieldExpr) TryGetValue() (sqlvalue.Value, bool) {
	if e.Field.IsConstant() {
		return *e.Field.Const, true
	}
	return sqlvalue.Value{}, false
}

func (e *FieldExpr) String() string { return e.Field.QualifiedName() }

func catalogTypeToValueType(t catalog.DataType) AttrType {
	switch t {
	case catalog.TypeInt:
		return sqlvalue.INT
	case catalog.TypeFloat:
		return sqlvalue.FLOAT
	case catalog.TypeBool:
		return sqlvalue.BOOL
	case catalog.TypeDate:
		return sqlvalue.DATES
	case catalog.TypeText:
		return sqlvalue.CHARS
	default:
		return sqlvalue.NULL
	}
}
