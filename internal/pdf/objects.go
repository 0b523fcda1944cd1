package pdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// resolver dereferences indirect objects; *model.Context satisfies it.
type resolver interface {
	Dereference(o types.Object) (types.Object, error)
}

func deref(r resolver, o types.Object) types.Object {
	switch v := o.(type) {
	case *types.IndirectRef:
		if v == nil {
			return nil
		}
		o = *v
	case types.IndirectRef:
	default:
		return o
	}
	res, err := r.Dereference(o)
	if err != nil {
		return nil
	}
	return res
}

func dictOf(r resolver, o types.Object) types.Dict {
	switch v := deref(r, o).(type) {
	case types.Dict:
		return v
	case types.StreamDict:
		return v.Dict
	case *types.StreamDict:
		return v.Dict
	}
	return nil
}

func entry(r resolver, d types.Dict, key string) types.Object {
	return deref(r, d[key])
}

func dictEntry(r resolver, d types.Dict, key string) types.Dict {
	return dictOf(r, entry(r, d, key))
}

func nameEntry(r resolver, d types.Dict, key string) string {
	if n, ok := entry(r, d, key).(types.Name); ok {
		return string(n)
	}
	return ""
}

func arrayEntry(r resolver, d types.Dict, key string) types.Array {
	if a, ok := entry(r, d, key).(types.Array); ok {
		return a
	}
	return nil
}

func numberEntry(r resolver, d types.Dict, key string) (float64, bool) {
	return toNumber(entry(r, d, key))
}

func toNumber(o types.Object) (float64, bool) {
	switch v := o.(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

// streamBytes returns the decoded content of the stream o refers to.
func streamBytes(r resolver, o types.Object) ([]byte, bool) {
	var sd *types.StreamDict
	switch v := deref(r, o).(type) {
	case types.StreamDict:
		sd = &v
	case *types.StreamDict:
		sd = v
	default:
		return nil, false
	}
	if err := sd.Decode(); err != nil {
		return nil, false
	}
	return sd.Content, true
}
