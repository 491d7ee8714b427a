package wire

import (
	"github.com/proto3reflect/dynproto/desc"
	"github.com/proto3reflect/dynproto/dynamic"
)

// mergeInto merges src's present fields into dst in place, following
// proto3 merge semantics for a singular message field that appears more
// than once on the wire: scalars and enums are last-wins (src overwrites
// dst), repeated fields concatenate, maps merge per-key last-wins, and
// nested message fields merge recursively.
func mergeInto(dst, src *dynamic.Message) error {
	md := src.Descriptor()
	for _, f := range md.Fields() {
		has, err := src.Has(f.Number())
		if err != nil {
			return err
		}
		if !has {
			continue
		}
		sv, err := src.Get(f.Number())
		if err != nil {
			return err
		}
		switch {
		case f.IsMap():
			srcMap := sv.(*dynamic.Map)
			var target *dynamic.Map
			if dh, _ := dst.Has(f.Number()); dh {
				dv, _ := dst.Get(f.Number())
				target = dv.(*dynamic.Map)
			} else {
				target = dynamic.NewMap()
			}
			for _, k := range srcMap.Keys() {
				v, _ := srcMap.Get(k)
				target.Set(k, v)
			}
			if err := dst.Set(f.Number(), target); err != nil {
				return err
			}
		case f.IsRepeated():
			srcList := sv.(*dynamic.List)
			var target *dynamic.List
			if dh, _ := dst.Has(f.Number()); dh {
				dv, _ := dst.Get(f.Number())
				target = dv.(*dynamic.List)
			} else {
				target = dynamic.NewList()
			}
			for i := 0; i < srcList.Len(); i++ {
				target.Append(srcList.Get(i))
			}
			if err := dst.Set(f.Number(), target); err != nil {
				return err
			}
		case f.Kind() == desc.MessageKind:
			srcSub := sv.(*dynamic.Message)
			if dh, _ := dst.Has(f.Number()); dh {
				dv, _ := dst.Get(f.Number())
				existing := dv.(*dynamic.Message)
				if err := mergeInto(existing, srcSub); err != nil {
					return err
				}
				if err := dst.Set(f.Number(), existing); err != nil {
					return err
				}
			} else {
				if err := dst.Set(f.Number(), srcSub); err != nil {
					return err
				}
			}
		default:
			if err := dst.Set(f.Number(), sv); err != nil {
				return err
			}
		}
	}
	return nil
}
