package lower

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/diag"
)

// fieldIndex resolves a struct field reference by name to its GEP index and
// IR type, using the declaration recorded when the struct's IR type was
// built (spec.md §4.6 "member access").
func (c *Context) fieldIndex(st *types.StructType, name string) (int, types.Type, error) {
	decl, ok := c.structDecls[st.TypeName]
	if !ok {
		return 0, nil, diag.TypeNotFound(st.TypeName)
	}
	for i, f := range decl.Fields {
		if f.Name == name {
			return i, st.Fields[i], nil
		}
	}
	return 0, nil, diag.SymbolNotFound(st.TypeName + "." + name)
}

// constZero returns the canonical zero value for t, used to synthesize a
// fallback return when a function falls off its last statement without an
// explicit return (spec.md §4.7 "falls through").
func constZero(t types.Type) constant.Constant {
	switch t := t.(type) {
	case *types.IntType:
		return constant.NewInt(t, 0)
	case *types.FloatType:
		return constant.NewFloat(t, 0)
	case *types.PointerType:
		return constant.NewNull(t)
	case *types.StructType:
		fields := make([]constant.Constant, len(t.Fields))
		for i, ft := range t.Fields {
			fields[i] = constZero(ft)
		}
		return constant.NewStruct(t, fields...)
	case *types.ArrayType:
		elems := make([]constant.Constant, t.Len)
		for i := range elems {
			elems[i] = constZero(t.ElemType)
		}
		return constant.NewArray(t, elems...)
	default:
		return constant.NewNull(types.NewPointer(types.I8))
	}
}
