package ir

import "slices"

// Clone returns a deep copy of the module. Rewriting passes work on clones so
// the caller's module is never mutated.
func (m *Module) Clone() *Module {
	out := &Module{
		Stage:             m.Stage,
		EntryPoint:        m.EntryPoint,
		DefaultPrecisions: slices.Clone(m.DefaultPrecisions),
		Pragma:            m.Pragma,
		Layout:            cloneLayout(m.Layout),
	}

	// slices.Clone keeps nil slices nil, so a clone compares equal to its source.
	out.Types = slices.Clone(m.Types)
	for i, t := range out.Types {
		if st, ok := t.Inner.(StructType); ok {
			out.Types[i].Inner = StructType{Members: slices.Clone(st.Members)}
		}
	}

	out.Constants = slices.Clone(m.Constants)
	for i, c := range out.Constants {
		if comp, ok := c.Value.(CompositeValue); ok {
			out.Constants[i].Value = CompositeValue{Components: slices.Clone(comp.Components)}
		}
	}

	out.GlobalVariables = slices.Clone(m.GlobalVariables)
	for i := range out.GlobalVariables {
		gv := &out.GlobalVariables[i]
		gv.Location = clonePtr(gv.Location)
		gv.Binding = clonePtr(gv.Binding)
		gv.Init = clonePtr(gv.Init)
	}

	out.Functions = slices.Clone(m.Functions)
	for i := range m.Functions {
		out.Functions[i] = m.Functions[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the function.
func (f *Function) Clone() Function {
	out := Function{
		Symbol:    f.Symbol,
		Arguments: slices.Clone(f.Arguments),
		Result:    clonePtr(f.Result),
		Body:      CloneBlock(f.Body),
	}
	out.LocalVars = slices.Clone(f.LocalVars)
	for i := range out.LocalVars {
		out.LocalVars[i].Init = clonePtr(out.LocalVars[i].Init)
	}
	out.Expressions = slices.Clone(f.Expressions)
	for i, e := range out.Expressions {
		out.Expressions[i] = Expression{Kind: cloneExpressionKind(e.Kind)}
	}
	return out
}

func cloneExpressionKind(kind ExpressionKind) ExpressionKind {
	switch k := kind.(type) {
	case ExprCompose:
		k.Components = slices.Clone(k.Components)
		return k
	case ExprMath:
		k.Arg1 = clonePtr(k.Arg1)
		k.Arg2 = clonePtr(k.Arg2)
		return k
	case ExprCall:
		k.Arguments = slices.Clone(k.Arguments)
		return k
	case ExprBuiltinCall:
		k.Arguments = slices.Clone(k.Arguments)
		return k
	default:
		return kind
	}
}

// CloneBlock returns a deep copy of a statement block.
func CloneBlock(block Block) Block {
	if block == nil {
		return nil
	}
	out := make(Block, len(block))
	for i, stmt := range block {
		out[i] = Statement{Kind: cloneStatementKind(stmt.Kind)}
	}
	return out
}

func cloneStatementKind(kind StatementKind) StatementKind {
	switch k := kind.(type) {
	case StmtBlock:
		return StmtBlock{Block: CloneBlock(k.Block)}
	case StmtIf:
		return StmtIf{Condition: k.Condition, Accept: CloneBlock(k.Accept), Reject: CloneBlock(k.Reject)}
	case StmtSwitch:
		cases := slices.Clone(k.Cases)
		for i := range cases {
			cases[i].Body = CloneBlock(cases[i].Body)
		}
		return StmtSwitch{Selector: k.Selector, Cases: cases}
	case StmtLoop:
		return StmtLoop{Body: CloneBlock(k.Body), Continuing: CloneBlock(k.Continuing), BreakIf: clonePtr(k.BreakIf)}
	case StmtReturn:
		return StmtReturn{Value: clonePtr(k.Value)}
	case StmtCall:
		k.Arguments = slices.Clone(k.Arguments)
		return k
	default:
		return kind
	}
}

func cloneLayout(l Layout) Layout {
	l.LocalSize = clonePtr(l.LocalSize)
	l.Geometry.MaxVertices = clonePtr(l.Geometry.MaxVertices)
	return l
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
