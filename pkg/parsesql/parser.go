package parsesql

import (
	"strconv"

	"github.com/JayabrataBasu/VeridicalDB/pkg/ast"
	"github.com/JayabrataBasu/VeridicalDB/pkg/rc"
)

// Parser turns a token stream into a pkg/ast statement tree via recursive
// descent. It supports the SELECT/INSERT/UPDATE/DELETE/EXPLAIN/CALC
// grammar the resolver expects, including INNER JOIN, aggregate functions,
// arithmetic, and IN over a literal list or a nested SELECT.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse lexes and parses a single SQL statement, with or without a
// trailing semicolon.
func Parse(sql string) (*ast.StmtSqlNode, error) {
	p := newParser(sql)
	stmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == TokenSemicolon {
		p.next()
	}
	if p.peek().Type != TokenEOF {
		return nil, p.errorf("unexpected trailing input")
	}
	return stmt, nil
}

func newParser(sql string) *Parser {
	lex := NewLexer(sql)
	var toks []Token
	for {
		t := lex.Next()
		toks = append(toks, t)
		if t.Type == TokenEOF {
			break
		}
	}
	return &Parser{tokens: toks}
}

func (p *Parser) peek() Token { return p.tokens[p.pos] }

func (p *Parser) next() Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(msg string) error {
	return rc.New(rc.SQL_SYNTAX, msg+" near position "+strconv.Itoa(p.peek().Pos))
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.errorf("expected " + what)
	}
	return p.next(), nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.peek().Type != TokenIdent {
		return "", p.errorf("expected identifier")
	}
	return p.next().Literal, nil
}

func (p *Parser) parseStmt() (*ast.StmtSqlNode, error) {
	switch p.peek().Type {
	case TokenSelect:
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Select: sel}, nil
	case TokenInsert:
		ins, err := p.parseInsert()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Insert: ins}, nil
	case TokenUpdate:
		upd, err := p.parseUpdate()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Update: upd}, nil
	case TokenDelete:
		del, err := p.parseDelete()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Delete: del}, nil
	case TokenCalc:
		calc, err := p.parseCalc()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Calc: calc}, nil
	case TokenExplain:
		exp, err := p.parseExplain()
		if err != nil {
			return nil, err
		}
		return &ast.StmtSqlNode{Explain: exp}, nil
	default:
		return nil, p.errorf("expected a statement")
	}
}

// ---- SELECT ----

func (p *Parser) parseSelect() (*ast.SelectSqlNode, error) {
	if _, err := p.expect(TokenSelect, "SELECT"); err != nil {
		return nil, err
	}
	attrs, err := p.parseAttrList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFrom, "FROM"); err != nil {
		return nil, err
	}
	relations, err := p.parseRelationList()
	if err != nil {
		return nil, err
	}

	sel := &ast.SelectSqlNode{Relations: relations, Attributes: attrs}

	if p.peek().Type == TokenWhere {
		p.next()
		conds, err := p.parseCondList()
		if err != nil {
			return nil, err
		}
		sel.Conditions = conds
	}

	if p.peek().Type == TokenGroup {
		p.next()
		if _, err := p.expect(TokenBy, "BY"); err != nil {
			return nil, err
		}
		gb, err := p.parsePlainAttrList()
		if err != nil {
			return nil, err
		}
		sel.GroupByAttributes = gb
	}

	if p.peek().Type == TokenHaving {
		p.next()
		conds, err := p.parseCondList()
		if err != nil {
			return nil, err
		}
		sel.HavingConditions = conds
	}

	if p.peek().Type == TokenOrder {
		p.next()
		if _, err := p.expect(TokenBy, "BY"); err != nil {
			return nil, err
		}
		ob, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		sel.OrderBySqlNodes = ob
	}

	return sel, nil
}

func aggrTokenType(tt TokenType) (ast.AggrFuncType, bool) {
	switch tt {
	case TokenCount:
		return ast.AggrCount, true
	case TokenSum:
		return ast.AggrSum, true
	case TokenAvg:
		return ast.AggrAvg, true
	case TokenMin:
		return ast.AggrMin, true
	case TokenMax:
		return ast.AggrMax, true
	default:
		return ast.AggrNone, false
	}
}

func (p *Parser) parseAttrList() ([]ast.RelAttrSqlNode, error) {
	var out []ast.RelAttrSqlNode
	a, err := p.parseAttr()
	if err != nil {
		return nil, err
	}
	out = append(out, a)
	for p.peek().Type == TokenComma {
		p.next()
		a, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *Parser) parseAttr() (ast.RelAttrSqlNode, error) {
	if aggr, ok := aggrTokenType(p.peek().Type); ok {
		p.next()
		if _, err := p.expect(TokenLParen, "("); err != nil {
			return ast.RelAttrSqlNode{}, err
		}
		var attr ast.RelAttrSqlNode
		if p.peek().Type == TokenStar {
			p.next()
			attr = ast.RelAttrSqlNode{AttributeName: "*"}
		} else {
			var err error
			attr, err = p.parseBareRelAttr()
			if err != nil {
				return ast.RelAttrSqlNode{}, err
			}
		}
		if _, err := p.expect(TokenRParen, ")"); err != nil {
			return ast.RelAttrSqlNode{}, err
		}
		attr.AggrFuncType = aggr
		if p.peek().Type == TokenAs {
			p.next()
			alias, err := p.expectIdent()
			if err != nil {
				return ast.RelAttrSqlNode{}, err
			}
			attr.Alias = alias
		}
		return attr, nil
	}

	if p.peek().Type == TokenStar {
		p.next()
		return ast.RelAttrSqlNode{AttributeName: "*"}, nil
	}

	attr, err := p.parseBareRelAttr()
	if err != nil {
		return ast.RelAttrSqlNode{}, err
	}
	if p.peek().Type == TokenAs {
		p.next()
		alias, err := p.expectIdent()
		if err != nil {
			return ast.RelAttrSqlNode{}, err
		}
		attr.Alias = alias
	}
	return attr, nil
}

func (p *Parser) parseBareRelAttr() (ast.RelAttrSqlNode, error) {
	ident, err := p.expectIdent()
	if err != nil {
		return ast.RelAttrSqlNode{}, err
	}
	if p.peek().Type == TokenDot {
		p.next()
		if p.peek().Type == TokenStar {
			p.next()
			return ast.RelAttrSqlNode{RelationName: ident, AttributeName: "*"}, nil
		}
		col, err := p.expectIdent()
		if err != nil {
			return ast.RelAttrSqlNode{}, err
		}
		return ast.RelAttrSqlNode{RelationName: ident, AttributeName: col}, nil
	}
	return ast.RelAttrSqlNode{AttributeName: ident}, nil
}

// parsePlainAttrList parses a GROUP BY/ORDER BY attribute list: no
// wildcards, no aggregates, no alias.
func (p *Parser) parsePlainAttrList() ([]ast.RelAttrSqlNode, error) {
	var out []ast.RelAttrSqlNode
	a, err := p.parseBareRelAttr()
	if err != nil {
		return nil, err
	}
	out = append(out, a)
	for p.peek().Type == TokenComma {
		p.next()
		a, err := p.parseBareRelAttr()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *Parser) parseOrderByList() ([]ast.OrderBySqlNode, error) {
	var out []ast.OrderBySqlNode
	ob, err := p.parseOrderByItem()
	if err != nil {
		return nil, err
	}
	out = append(out, ob)
	for p.peek().Type == TokenComma {
		p.next()
		ob, err := p.parseOrderByItem()
		if err != nil {
			return nil, err
		}
		out = append(out, ob)
	}
	return out, nil
}

func (p *Parser) parseOrderByItem() (ast.OrderBySqlNode, error) {
	attr, err := p.parseBareRelAttr()
	if err != nil {
		return ast.OrderBySqlNode{}, err
	}
	desc := false
	switch p.peek().Type {
	case TokenAsc:
		p.next()
	case TokenDesc:
		p.next()
		desc = true
	}
	return ast.OrderBySqlNode{Attr: attr, Desc: desc}, nil
}

// ---- FROM / JOIN ----

func (p *Parser) maybeAlias() (string, error) {
	if p.peek().Type == TokenAs {
		p.next()
		return p.expectIdent()
	}
	// bare-word alias shorthand: "FROM t x" — only when the next token is
	// a plain identifier, not a keyword that would start a clause.
	if p.peek().Type == TokenIdent {
		return p.next().Literal, nil
	}
	return "", nil
}

func (p *Parser) parseRelationList() ([]ast.RelationSqlNode, error) {
	var out []ast.RelationSqlNode
	r, err := p.parseRelationItem()
	if err != nil {
		return nil, err
	}
	out = append(out, r)
	for p.peek().Type == TokenComma {
		p.next()
		r, err := p.parseRelationItem()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *Parser) parseRelationItem() (ast.RelationSqlNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ast.RelationSqlNode{}, err
	}
	alias, err := p.maybeAlias()
	if err != nil {
		return ast.RelationSqlNode{}, err
	}
	current := ast.RelationSqlNode{Name: name, Alias: alias}

	for p.peek().Type == TokenInner || p.peek().Type == TokenJoin {
		if p.peek().Type == TokenInner {
			p.next()
			if _, err := p.expect(TokenJoin, "JOIN"); err != nil {
				return ast.RelationSqlNode{}, err
			}
		} else {
			p.next()
		}
		rName, err := p.expectIdent()
		if err != nil {
			return ast.RelationSqlNode{}, err
		}
		rAlias, err := p.maybeAlias()
		if err != nil {
			return ast.RelationSqlNode{}, err
		}
		right := ast.RelationSqlNode{Name: rName, Alias: rAlias}

		if _, err := p.expect(TokenOn, "ON"); err != nil {
			return ast.RelationSqlNode{}, err
		}
		on, err := p.parseCondList()
		if err != nil {
			return ast.RelationSqlNode{}, err
		}
		current = ast.RelationSqlNode{Join: &ast.JoinSqlNode{Left: current, Right: right, On: on}}
	}

	return current, nil
}

// ---- conditions ----

func (p *Parser) parseCondList() ([]ast.ConditionSqlNode, error) {
	var out []ast.ConditionSqlNode
	c, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	out = append(out, c)
	for p.peek().Type == TokenAnd {
		p.next()
		c, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func isPureAttr(n *ast.ExprSqlNode) bool {
	return n.Attr != nil && n.Value == nil && n.List == nil && n.Sub == nil && n.ArithOp == ""
}

func buildCondition(left *ast.ExprSqlNode, comp ast.CompOp, right *ast.ExprSqlNode) ast.ConditionSqlNode {
	cond := ast.ConditionSqlNode{Comp: comp}
	if isPureAttr(left) {
		cond.LeftIsAttr = true
		cond.LeftAttr = *left.Attr
	} else {
		cond.LeftExpr = left
	}
	if isPureAttr(right) {
		cond.RightIsAttr = true
		cond.RightAttr = *right.Attr
	} else {
		cond.RightExpr = right
	}
	return cond
}

func (p *Parser) compOpToken() (ast.CompOp, bool) {
	switch p.peek().Type {
	case TokenEq:
		return ast.CompEq, true
	case TokenNe:
		return ast.CompNe, true
	case TokenLt:
		return ast.CompLt, true
	case TokenLe:
		return ast.CompLe, true
	case TokenGt:
		return ast.CompGt, true
	case TokenGe:
		return ast.CompGe, true
	default:
		return 0, false
	}
}

func (p *Parser) parseCondition() (ast.ConditionSqlNode, error) {
	left, err := p.parseExprNode()
	if err != nil {
		return ast.ConditionSqlNode{}, err
	}

	negate := false
	if p.peek().Type == TokenNot {
		p.next()
		negate = true
	}

	switch p.peek().Type {
	case TokenIn:
		p.next()
		if _, err := p.expect(TokenLParen, "("); err != nil {
			return ast.ConditionSqlNode{}, err
		}
		var right *ast.ExprSqlNode
		if p.peek().Type == TokenSelect {
			sub, err := p.parseSelect()
			if err != nil {
				return ast.ConditionSqlNode{}, err
			}
			right = &ast.ExprSqlNode{Sub: sub}
		} else {
			vals, err := p.parseExprCommaList()
			if err != nil {
				return ast.ConditionSqlNode{}, err
			}
			right = &ast.ExprSqlNode{List: vals}
		}
		if _, err := p.expect(TokenRParen, ")"); err != nil {
			return ast.ConditionSqlNode{}, err
		}
		comp := ast.CompIn
		if negate {
			comp = ast.CompNotIn
		}
		return buildCondition(left, comp, right), nil

	case TokenLike:
		p.next()
		right, err := p.parseExprNode()
		if err != nil {
			return ast.ConditionSqlNode{}, err
		}
		comp := ast.CompLike
		if negate {
			comp = ast.CompNotLike
		}
		return buildCondition(left, comp, right), nil

	case TokenIs:
		p.next()
		isNot := false
		if p.peek().Type == TokenNot {
			p.next()
			isNot = true
		}
		if _, err := p.expect(TokenNull, "NULL"); err != nil {
			return ast.ConditionSqlNode{}, err
		}
		right := &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValNull}}
		comp := ast.CompIs
		if isNot {
			comp = ast.CompIsNot
		}
		return buildCondition(left, comp, right), nil

	default:
		if negate {
			return ast.ConditionSqlNode{}, p.errorf("unexpected NOT")
		}
		op, ok := p.compOpToken()
		if !ok {
			return ast.ConditionSqlNode{}, p.errorf("expected a comparison operator")
		}
		p.next()
		right, err := p.parseExprNode()
		if err != nil {
			return ast.ConditionSqlNode{}, err
		}
		return buildCondition(left, op, right), nil
	}
}

func (p *Parser) parseExprCommaList() ([]ast.ExprSqlNode, error) {
	var out []ast.ExprSqlNode
	e, err := p.parseExprNode()
	if err != nil {
		return nil, err
	}
	out = append(out, *e)
	for p.peek().Type == TokenComma {
		p.next()
		e, err := p.parseExprNode()
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// ---- scalar expressions ----

func (p *Parser) parseExprNode() (*ast.ExprSqlNode, error) {
	return p.parseAddSub()
}

func (p *Parser) parseAddSub() (*ast.ExprSqlNode, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenPlus || p.peek().Type == TokenMinus {
		op := "+"
		if p.peek().Type == TokenMinus {
			op = "-"
		}
		p.next()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &ast.ExprSqlNode{ArithOp: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMulDiv() (*ast.ExprSqlNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenStar || p.peek().Type == TokenSlash || p.peek().Type == TokenPercent {
		op := map[TokenType]string{TokenStar: "*", TokenSlash: "/", TokenPercent: "%"}[p.peek().Type]
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.ExprSqlNode{ArithOp: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (*ast.ExprSqlNode, error) {
	if p.peek().Type == TokenMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.ExprSqlNode{ArithOp: "NEG", Left: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*ast.ExprSqlNode, error) {
	switch p.peek().Type {
	case TokenLParen:
		p.next()
		if p.peek().Type == TokenSelect {
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRParen, ")"); err != nil {
				return nil, err
			}
			return &ast.ExprSqlNode{Sub: sub}, nil
		}
		inner, err := p.parseExprNode()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil

	case TokenInt:
		tok := p.next()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.errorf("malformed integer literal")
		}
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValInt, Int: n}}, nil

	case TokenFloat:
		tok := p.next()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf("malformed float literal")
		}
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValFloat, Float: f}}, nil

	case TokenString:
		tok := p.next()
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValChars, Chars: tok.Literal}}, nil

	case TokenTrue:
		p.next()
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValBool, Bool: true}}, nil

	case TokenFalse:
		p.next()
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValBool, Bool: false}}, nil

	case TokenNull:
		p.next()
		return &ast.ExprSqlNode{Value: &ast.Value{Type: ast.ValNull}}, nil

	case TokenIdent:
		attr, err := p.parseBareRelAttr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprSqlNode{Attr: &attr}, nil

	case TokenCount, TokenSum, TokenAvg, TokenMin, TokenMax:
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		return &ast.ExprSqlNode{Attr: &attr}, nil

	default:
		return nil, p.errorf("expected an expression")
	}
}

// ---- INSERT / UPDATE / DELETE / CALC / EXPLAIN ----

func (p *Parser) parseInsert() (*ast.InsertSqlNode, error) {
	if _, err := p.expect(TokenInsert, "INSERT"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenInto, "INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenValues, "VALUES"); err != nil {
		return nil, err
	}
	row, err := p.parseValueRow()
	if err != nil {
		return nil, err
	}
	rows := []ast.ExprSqlNode{row}
	for p.peek().Type == TokenComma {
		p.next()
		row, err := p.parseValueRow()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return &ast.InsertSqlNode{RelationName: table, Values: rows}, nil
}

func (p *Parser) parseValueRow() (ast.ExprSqlNode, error) {
	if _, err := p.expect(TokenLParen, "("); err != nil {
		return ast.ExprSqlNode{}, err
	}
	vals, err := p.parseExprCommaList()
	if err != nil {
		return ast.ExprSqlNode{}, err
	}
	if _, err := p.expect(TokenRParen, ")"); err != nil {
		return ast.ExprSqlNode{}, err
	}
	return ast.ExprSqlNode{List: vals}, nil
}

func (p *Parser) parseUpdate() (*ast.UpdateSqlNode, error) {
	if _, err := p.expect(TokenUpdate, "UPDATE"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSet, "SET"); err != nil {
		return nil, err
	}
	sc, err := p.parseSetClause()
	if err != nil {
		return nil, err
	}
	clauses := []ast.SetClauseSqlNode{sc}
	for p.peek().Type == TokenComma {
		p.next()
		sc, err := p.parseSetClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, sc)
	}

	var conds []ast.ConditionSqlNode
	if p.peek().Type == TokenWhere {
		p.next()
		conds, err = p.parseCondList()
		if err != nil {
			return nil, err
		}
	}

	return &ast.UpdateSqlNode{RelationName: table, SetClauses: clauses, Conditions: conds}, nil
}

func (p *Parser) parseSetClause() (ast.SetClauseSqlNode, error) {
	col, err := p.expectIdent()
	if err != nil {
		return ast.SetClauseSqlNode{}, err
	}
	if _, err := p.expect(TokenEq, "="); err != nil {
		return ast.SetClauseSqlNode{}, err
	}
	val, err := p.parseExprNode()
	if err != nil {
		return ast.SetClauseSqlNode{}, err
	}
	return ast.SetClauseSqlNode{Attribute: col, Value: *val}, nil
}

func (p *Parser) parseDelete() (*ast.DeleteSqlNode, error) {
	if _, err := p.expect(TokenDelete, "DELETE"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenFrom, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var conds []ast.ConditionSqlNode
	if p.peek().Type == TokenWhere {
		p.next()
		conds, err = p.parseCondList()
		if err != nil {
			return nil, err
		}
	}
	return &ast.DeleteSqlNode{RelationName: table, Conditions: conds}, nil
}

func (p *Parser) parseCalc() (*ast.CalcSqlNode, error) {
	if _, err := p.expect(TokenCalc, "CALC"); err != nil {
		return nil, err
	}
	exprs, err := p.parseExprCommaList()
	if err != nil {
		return nil, err
	}
	return &ast.CalcSqlNode{Expressions: exprs}, nil
}

func (p *Parser) parseExplain() (*ast.ExplainSqlNode, error) {
	if _, err := p.expect(TokenExplain, "EXPLAIN"); err != nil {
		return nil, err
	}
	switch p.peek().Type {
	case TokenSelect:
		sel, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainSqlNode{Select: sel}, nil
	case TokenInsert:
		ins, err := p.parseInsert()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainSqlNode{Insert: ins}, nil
	case TokenUpdate:
		upd, err := p.parseUpdate()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainSqlNode{Update: upd}, nil
	case TokenDelete:
		del, err := p.parseDelete()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainSqlNode{Delete: del}, nil
	default:
		return nil, p.errorf("EXPLAIN requires a SELECT/INSERT/UPDATE/DELETE statement")
	}
}
