package constraint

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// listFunctions declares the aggregate member functions that are available on lists:
//
//	nodes.map(n, n.hardware.cores).sum()
//	nodes.map(n, n.location.country).isUnique()
//	nodes.map(n, n.cloud.id).countDistinct()
func listFunctions() []cel.EnvOption {
	listType := cel.ListType(cel.DynType)

	return []cel.EnvOption{
		cel.Function("sum",
			cel.MemberOverload("list_sum", []*cel.Type{listType}, cel.DynType,
				cel.UnaryBinding(sumList))),
		cel.Function("isUnique",
			cel.MemberOverload("list_is_unique", []*cel.Type{listType}, cel.BoolType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					distinct, total, err := countDistinct(arg)
					if err != nil {
						return err
					}
					return types.Bool(distinct == total)
				}))),
		cel.Function("countDistinct",
			cel.MemberOverload("list_count_distinct", []*cel.Type{listType}, cel.IntType,
				cel.UnaryBinding(func(arg ref.Val) ref.Val {
					distinct, _, err := countDistinct(arg)
					if err != nil {
						return err
					}
					return distinct
				}))),
	}
}

// sumList returns an int if every element of the list is an int, and a double otherwise.
func sumList(arg ref.Val) ref.Val {
	list, ok := arg.(traits.Lister)
	if !ok {
		return types.MaybeNoSuchOverloadErr(arg)
	}

	var (
		intSum    int64
		doubleSum float64
		isDouble  bool
	)

	for it := list.Iterator(); it.HasNext() == types.True; {
		switch v := it.Next().(type) {
		case types.Int:
			intSum += int64(v)
		case types.Uint:
			intSum += int64(v)
		case types.Double:
			isDouble = true
			doubleSum += float64(v)
		default:
			return types.NewErr("sum() cannot be applied to elements of type %s", v.Type().TypeName())
		}
	}

	if isDouble {
		return types.Double(doubleSum + float64(intSum))
	}

	return types.Int(intSum)
}

// countDistinct returns the number of distinct elements and the total number of elements of a list.
func countDistinct(arg ref.Val) (types.Int, types.Int, ref.Val) {
	list, ok := arg.(traits.Lister)
	if !ok {
		return 0, 0, types.MaybeNoSuchOverloadErr(arg)
	}

	var total types.Int
	distinct := make([]ref.Val, 0)
	for it := list.Iterator(); it.HasNext() == types.True; {
		elem := it.Next()
		total++

		seen := false
		for _, other := range distinct {
			if elem.Equal(other) == types.True {
				seen = true
				break
			}
		}

		if !seen {
			distinct = append(distinct, elem)
		}
	}

	return types.Int(len(distinct)), total, nil
}
